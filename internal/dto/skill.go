package dto

import (
	"strings"
	"time"

	"github.com/ayush/portfolio-site/internal/models"
)

// SkillRequest is the body for creating or replacing a skill.
type SkillRequest struct {
	Name  string       `json:"name"`
	Level models.Level `json:"level"`
	Type  string       `json:"type"`
}

// Normalize trims free-text fields in place.
func (r *SkillRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
}

// Skill is the external shape of a skill.
type Skill struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Level     models.Level `json:"level"`
	Type      string       `json:"type"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// SkillFromModel maps a stored skill to its external shape.
func SkillFromModel(s *models.Skill) Skill {
	out := Skill{
		ID:    s.ID.Hex(),
		Name:  s.Name,
		Level: s.Level,
		Type:  s.Type,
	}
	if !s.CreatedAt.IsZero() {
		t := s.CreatedAt.UTC()
		out.CreatedAt = &t
	}
	return out
}

// SkillsFromModels maps a list, never returning nil.
func SkillsFromModels(in []models.Skill) []Skill {
	out := make([]Skill, 0, len(in))
	for i := range in {
		out = append(out, SkillFromModel(&in[i]))
	}
	return out
}
