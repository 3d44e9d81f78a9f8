package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

// In-memory repository fakes. They mirror the semantics the postgres
// implementations guarantee: compare-and-swap transitions, idempotent
// get-or-create, and conflict on duplicate identity fields.

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ExistsAll(ctx context.Context, ids []string) (bool, error) {
	for _, id := range ids {
		if _, ok := r.users[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

type fakeCompanyRepo struct {
	companies map[string]*model.Company
	admins    map[string][]string // companyID -> userIDs
	positions map[string]*model.CompanyJobPosition
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		companies: map[string]*model.Company{},
		admins:    map[string][]string{},
		positions: map[string]*model.CompanyJobPosition{},
	}
}

func (r *fakeCompanyRepo) Create(ctx context.Context, tx *sql.Tx, c *model.Company) error {
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, c *model.Company) error {
	if _, ok := r.companies[c.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.companies[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id string) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	out := []model.Company{}
	for _, c := range r.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompanyRepo) AddAdmin(ctx context.Context, tx *sql.Tx, companyID, userID string) error {
	for _, id := range r.admins[companyID] {
		if id == userID {
			return nil
		}
	}
	r.admins[companyID] = append(r.admins[companyID], userID)
	return nil
}

func (r *fakeCompanyRepo) GetAdminIDs(ctx context.Context, companyID string) ([]string, error) {
	return append([]string{}, r.admins[companyID]...), nil
}

func (r *fakeCompanyRepo) GetAdministeredCompanyIDs(ctx context.Context, userID string) ([]string, error) {
	out := []string{}
	for companyID, userIDs := range r.admins {
		for _, id := range userIDs {
			if id == userID {
				out = append(out, companyID)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeCompanyRepo) CreateJobPosition(ctx context.Context, p *model.CompanyJobPosition) error {
	cp := *p
	r.positions[p.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) UpdateJobPosition(ctx context.Context, p *model.CompanyJobPosition) error {
	if _, ok := r.positions[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	r.positions[p.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) DeleteJobPosition(ctx context.Context, id string) error {
	if _, ok := r.positions[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.positions, id)
	return nil
}

func (r *fakeCompanyRepo) FindJobPositionByID(ctx context.Context, id string) (*model.CompanyJobPosition, error) {
	p, ok := r.positions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeCompanyRepo) ListJobPositions(ctx context.Context, companyID string) ([]model.CompanyJobPosition, error) {
	out := []model.CompanyJobPosition{}
	for _, p := range r.positions {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeProblemRepo struct {
	problems map[string]*model.Problem
}

func newFakeProblemRepo() *fakeProblemRepo {
	return &fakeProblemRepo{problems: map[string]*model.Problem{}}
}

func (r *fakeProblemRepo) Create(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *fakeProblemRepo) Update(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	if _, ok := r.problems[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *fakeProblemRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.problems[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.problems, id)
	return nil
}

func (r *fakeProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProblemRepo) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	for _, p := range r.problems {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) ListVisible(ctx context.Context, companyIDs []string, problemType model.ProblemType, difficulty model.ProblemDifficulty, limit, offset int) ([]model.Problem, int, error) {
	administered := map[string]bool{}
	for _, id := range companyIDs {
		administered[id] = true
	}
	out := []model.Problem{}
	for _, p := range r.problems {
		visible := p.IsPublic || (p.CompanyID != nil && administered[*p.CompanyID])
		if !visible {
			continue
		}
		if problemType != "" && p.ProblemType != problemType {
			continue
		}
		if difficulty != "" && p.Difficulty != difficulty {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeAssessmentRepo struct {
	assessments map[string]*model.Assessment
	problems    map[string][]string // assessmentID -> problemIDs
	attempts    *fakeAttemptRepo    // for candidate-scoped listing
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		assessments: map[string]*model.Assessment{},
		problems:    map[string][]string{},
	}
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, tx *sql.Tx, a *model.Assessment) error {
	cp := *a
	r.assessments[a.ID] = &cp
	return nil
}

func (r *fakeAssessmentRepo) Update(ctx context.Context, tx *sql.Tx, a *model.Assessment) error {
	if _, ok := r.assessments[a.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *a
	r.assessments[a.ID] = &cp
	return nil
}

func (r *fakeAssessmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.assessments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.assessments, id)
	return nil
}

func (r *fakeAssessmentRepo) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	a, ok := r.assessments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	cp.ProblemIDs = append([]string{}, r.problems[id]...)
	return &cp, nil
}

func (r *fakeAssessmentRepo) SetProblems(ctx context.Context, tx *sql.Tx, assessmentID string, problemIDs []string) error {
	r.problems[assessmentID] = append([]string{}, problemIDs...)
	return nil
}

func (r *fakeAssessmentRepo) GetProblemIDs(ctx context.Context, assessmentID string) ([]string, error) {
	return append([]string{}, r.problems[assessmentID]...), nil
}

func (r *fakeAssessmentRepo) HasProblem(ctx context.Context, assessmentID, problemID string) (bool, error) {
	for _, id := range r.problems[assessmentID] {
		if id == problemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAssessmentRepo) ListForCompanies(ctx context.Context, companyIDs []string) ([]model.Assessment, error) {
	administered := map[string]bool{}
	for _, id := range companyIDs {
		administered[id] = true
	}
	out := []model.Assessment{}
	for _, a := range r.assessments {
		if administered[a.CompanyID] {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssessmentRepo) ListForCandidate(ctx context.Context, candidateID string) ([]model.Assessment, error) {
	out := []model.Assessment{}
	if r.attempts == nil {
		return out, nil
	}
	for _, ca := range r.attempts.attempts {
		if ca.CandidateID != candidateID {
			continue
		}
		if a, ok := r.assessments[ca.AssessmentID]; ok {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAttemptRepo struct {
	attempts   map[string]*model.CandidateAssessment
	extensions map[string]*model.ExtensionRequest
	repo       *fakeAssessmentRepo // for deadline computation in ExpireOverdue
	nextID     int
}

func newFakeAttemptRepo(assessments *fakeAssessmentRepo) *fakeAttemptRepo {
	r := &fakeAttemptRepo{
		attempts:   map[string]*model.CandidateAssessment{},
		extensions: map[string]*model.ExtensionRequest{},
		repo:       assessments,
	}
	if assessments != nil {
		assessments.attempts = r
	}
	return r
}

func (r *fakeAttemptRepo) GetOrCreate(ctx context.Context, assessmentID, candidateID string) (bool, error) {
	for _, ca := range r.attempts {
		if ca.AssessmentID == assessmentID && ca.CandidateID == candidateID {
			return false, nil
		}
	}
	r.nextID++
	id := fmt.Sprintf("attempt-%d", r.nextID)
	r.attempts[id] = &model.CandidateAssessment{
		ID:           id,
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Status:       model.CandidateInvited,
	}
	return true, nil
}

func (r *fakeAttemptRepo) FindByID(ctx context.Context, id string) (*model.CandidateAssessment, error) {
	ca, ok := r.attempts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *ca
	return &cp, nil
}

func (r *fakeAttemptRepo) ListForCompanies(ctx context.Context, companyIDs []string) ([]model.CandidateAssessment, error) {
	administered := map[string]bool{}
	for _, id := range companyIDs {
		administered[id] = true
	}
	out := []model.CandidateAssessment{}
	for _, ca := range r.attempts {
		a, ok := r.repo.assessments[ca.AssessmentID]
		if ok && administered[a.CompanyID] {
			out = append(out, *ca)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) ListForCandidate(ctx context.Context, candidateID string) ([]model.CandidateAssessment, error) {
	out := []model.CandidateAssessment{}
	for _, ca := range r.attempts {
		if ca.CandidateID == candidateID {
			out = append(out, *ca)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) TransitionStatus(ctx context.Context, id string, from, to model.CandidateStatus, now time.Time) (bool, error) {
	ca, ok := r.attempts[id]
	if !ok {
		return false, common.ErrNotFound
	}
	if ca.Status != from {
		return false, nil
	}
	ca.Status = to
	switch to {
	case model.CandidateStarted:
		ca.StartedAt = &now
	case model.CandidateCompleted:
		ca.CompletedAt = &now
	}
	return true, nil
}

func (r *fakeAttemptRepo) AppendBreak(ctx context.Context, id string, at time.Time) (bool, error) {
	ca, ok := r.attempts[id]
	if !ok {
		return false, common.ErrNotFound
	}
	if ca.Status != model.CandidateStarted {
		return false, nil
	}
	ca.BreaksTaken = append(ca.BreaksTaken, at)
	return true, nil
}

func (r *fakeAttemptRepo) SetUsedAccommodation(ctx context.Context, id, name, value string) error {
	ca, ok := r.attempts[id]
	if !ok {
		return common.ErrNotFound
	}
	if ca.UsedAccommodations == nil {
		ca.UsedAccommodations = map[string]string{}
	}
	ca.UsedAccommodations[name] = value
	return nil
}

func (r *fakeAttemptRepo) SetEvaluation(ctx context.Context, id string, score float64, feedback string) error {
	ca, ok := r.attempts[id]
	if !ok {
		return common.ErrNotFound
	}
	ca.Score = &score
	ca.Feedback = feedback
	return nil
}

func (r *fakeAttemptRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, ca := range r.attempts {
		if ca.Status.Terminal() {
			continue
		}
		a, ok := r.repo.assessments[ca.AssessmentID]
		if !ok {
			continue
		}
		if deadline := ca.Deadline(a); deadline != nil && !now.Before(*deadline) {
			ca.Status = model.CandidateExpired
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) CreateExtensionRequest(ctx context.Context, req *model.ExtensionRequest) error {
	cp := *req
	r.extensions[req.ID] = &cp
	return nil
}

func (r *fakeAttemptRepo) FindExtensionRequestByID(ctx context.Context, id string) (*model.ExtensionRequest, error) {
	req, ok := r.extensions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeAttemptRepo) ListExtensionRequests(ctx context.Context, candidateAssessmentID string) ([]model.ExtensionRequest, error) {
	out := []model.ExtensionRequest{}
	for _, req := range r.extensions {
		if req.CandidateAssessmentID == candidateAssessmentID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) ResolveExtensionRequest(ctx context.Context, requestID string, status model.ExtensionRequestStatus, resolverID string, now time.Time) (bool, error) {
	req, ok := r.extensions[requestID]
	if !ok {
		return false, common.ErrNotFound
	}
	if req.Status != model.ExtensionPending {
		return false, nil
	}
	req.Status = status
	req.ResolvedByID = &resolverID
	req.ResolvedAt = &now
	if status == model.ExtensionGranted {
		if ca, ok := r.attempts[req.CandidateAssessmentID]; ok {
			ca.TimeExtended += req.Minutes
		}
	}
	return true, nil
}

type fakeSubmissionRepo struct {
	subs []model.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	s.CreatedAt = time.Now()
	r.subs = append(r.subs, *s)
	return nil
}

func (r *fakeSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	for i := range r.subs {
		if r.subs[i].ID == id {
			cp := r.subs[i]
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubmissionRepo) ListByCandidateAssessment(ctx context.Context, candidateAssessmentID string) ([]model.Submission, error) {
	out := []model.Submission{}
	for _, s := range r.subs {
		if s.CandidateAssessmentID == candidateAssessmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) SetEvaluation(ctx context.Context, sub *model.Submission) error {
	for i := range r.subs {
		if r.subs[i].ID == sub.ID {
			r.subs[i] = *sub
			return nil
		}
	}
	return common.ErrNotFound
}
