package model

import "time"

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	AdminIDs []string `json:"admin_ids,omitempty"` // Users who administer this company
}

type CompanyJobPosition struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	SkillsRequired []string  `json:"skills_required"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
