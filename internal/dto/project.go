package dto

import (
	"strings"
	"time"

	"github.com/ayush/portfolio-site/internal/models"
)

// ProjectRequest is the body for creating or replacing a project.
// Technologies are Skill ids.
type ProjectRequest struct {
	Title        string   `json:"title"`
	CompanyName  string   `json:"companyName"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	StartDate    *Date    `json:"startDate"`
	EndDate      *Date    `json:"endDate"`
	IsCurrent    bool     `json:"isCurrent"`
	IsFeatured   bool     `json:"isFeatured"`
}

// Normalize trims free-text fields and drops an end date on ongoing projects.
func (r *ProjectRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	if r.IsCurrent {
		r.EndDate = nil
	}
	if r.EndDate != nil && r.EndDate.IsZero() {
		r.EndDate = nil
	}
}

// FeaturedRequest is the optional body of PATCH /projects/{id}/toggle-featured.
type FeaturedRequest struct {
	IsFeatured *bool `json:"isFeatured"`
}

// ViewsResponse answers POST /projects/{id}/views.
type ViewsResponse struct {
	Views int64 `json:"views"`
}

// Project is the external shape of a project with technologies expanded.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CompanyName  string    `json:"companyName"`
	Description  string    `json:"description"`
	Technologies []Skill   `json:"technologies"`
	StartDate    Date      `json:"startDate"`
	EndDate      *Date     `json:"endDate"`
	IsCurrent    bool      `json:"isCurrent"`
	IsFeatured   bool      `json:"isFeatured"`
	Views        int64     `json:"views"`
	HasImage     bool      `json:"hasImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectFromModel maps a stored project. skills resolves technology ids;
// ids missing from it are left out of the expanded list.
func ProjectFromModel(p *models.Project, skills map[string]models.Skill) Project {
	out := Project{
		ID:           p.ID.Hex(),
		Title:        p.Title,
		CompanyName:  p.CompanyName,
		Description:  p.Description,
		Technologies: make([]Skill, 0, len(p.Technologies)),
		StartDate:    NewDate(p.StartDate),
		IsCurrent:    p.IsCurrent,
		IsFeatured:   p.IsFeatured,
		Views:        p.Views,
		HasImage:     p.ImageKey != "",
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
	if !p.IsCurrent && p.EndDate != nil {
		d := NewDate(*p.EndDate)
		out.EndDate = &d
	}
	for _, id := range p.Technologies {
		if s, ok := skills[id.Hex()]; ok {
			out.Technologies = append(out.Technologies, SkillFromModel(&s))
		}
	}
	return out
}
