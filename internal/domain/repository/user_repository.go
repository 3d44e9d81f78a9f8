package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ExistsAll(ctx context.Context, ids []string) (bool, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, name, email, hashed_password, user_type,
	is_adhd, is_asd, is_dyslexia, is_social_anxiety,
	prefers_segmented_sessions, prefers_extra_time, prefers_text_communication,
	prefers_visual_aids, prefers_literal_language, prefers_dyslexia_formatting,
	custom_preferences, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.HashedPassword, &user.UserType,
		&user.IsADHD, &user.IsASD, &user.IsDyslexia, &user.IsSocialAnxiety,
		&user.PrefersSegmentedSessions, &user.PrefersExtraTime, &user.PrefersTextCommunication,
		&user.PrefersVisualAids, &user.PrefersLiteralLanguage, &user.PrefersDyslexiaFormatting,
		&user.CustomPreferences, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, name, email, hashed_password, user_type,
	            is_adhd, is_asd, is_dyslexia, is_social_anxiety,
	            prefers_segmented_sessions, prefers_extra_time, prefers_text_communication,
	            prefers_visual_aids, prefers_literal_language, prefers_dyslexia_formatting,
	            custom_preferences)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Name, user.Email, user.HashedPassword, user.UserType,
		user.IsADHD, user.IsASD, user.IsDyslexia, user.IsSocialAnxiety,
		user.PrefersSegmentedSessions, user.PrefersExtraTime, user.PrefersTextCommunication,
		user.PrefersVisualAids, user.PrefersLiteralLanguage, user.PrefersDyslexiaFormatting,
		user.CustomPreferences,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET
	            username = $1, name = $2, email = $3, user_type = $4,
	            is_adhd = $5, is_asd = $6, is_dyslexia = $7, is_social_anxiety = $8,
	            prefers_segmented_sessions = $9, prefers_extra_time = $10,
	            prefers_text_communication = $11, prefers_visual_aids = $12,
	            prefers_literal_language = $13, prefers_dyslexia_formatting = $14,
	            custom_preferences = $15, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $16`
	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.Name, user.Email, user.UserType,
		user.IsADHD, user.IsASD, user.IsDyslexia, user.IsSocialAnxiety,
		user.PrefersSegmentedSessions, user.PrefersExtraTime,
		user.PrefersTextCommunication, user.PrefersVisualAids,
		user.PrefersLiteralLanguage, user.PrefersDyslexiaFormatting,
		user.CustomPreferences, user.ID,
	)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ExistsAll reports whether every id references a user row. Used to validate
// candidate id lists before assignment.
func (r *pgUserRepository) ExistsAll(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	query := `SELECT COUNT(*) FROM users WHERE id = ANY($1)`
	var count int
	if err := r.db.QueryRowContext(ctx, query, ids).Scan(&count); err != nil {
		return false, fmt.Errorf("pgUserRepository.ExistsAll: %w", err)
	}
	return count == len(ids), nil
}
