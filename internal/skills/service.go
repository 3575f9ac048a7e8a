// Package skills manages the skill catalogue projects reference.
package skills

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/dto"
	"github.com/ayush/portfolio-site/internal/models"
)

// Store defines the interface for skill persistence.
type Store interface {
	InsertSkill(ctx context.Context, sk *models.Skill) error
	ListSkills(ctx context.Context) ([]models.Skill, error)
	GetSkill(ctx context.Context, id string) (*models.Skill, error)
	ReplaceSkill(ctx context.Context, sk *models.Skill) (*models.Skill, error)
	DeleteSkill(ctx context.Context, id string) error
	CountProjectsUsingSkill(ctx context.Context, id string) (int64, error)
}

var errNotFound = apperr.Wrap(apperr.ErrNotFound, "Skill not found")

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]models.Skill, error) {
	return s.store.ListSkills(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Skill, error) {
	sk, err := s.store.GetSkill(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sk, nil
}

func (s *Service) Create(ctx context.Context, req dto.SkillRequest) (*models.Skill, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	sk := &models.Skill{Name: req.Name, Level: req.Level, Type: req.Type}
	if err := s.store.InsertSkill(ctx, sk); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("skill_id", sk.ID.Hex()).Str("name", sk.Name).Msg("skill created")
	return sk, nil
}

// Update replaces every mutable field of the skill.
func (s *Service) Update(ctx context.Context, id string, req dto.SkillRequest) (*models.Skill, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	sk, err := s.store.ReplaceSkill(ctx, &models.Skill{ID: oid, Name: req.Name, Level: req.Level, Type: req.Type})
	if err != nil {
		return nil, notFound(err)
	}
	return sk, nil
}

// Delete removes a skill that no project references.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.store.CountProjectsUsingSkill(ctx, id)
	if err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if n > 0 {
		return apperr.Wrap(apperr.ErrInUse, fmt.Sprintf("Skill is used by %d project(s)", n))
	}
	if err := s.store.DeleteSkill(ctx, id); err != nil {
		return notFound(err)
	}
	zerolog.Ctx(ctx).Info().Str("skill_id", id).Msg("skill deleted")
	return nil
}

func validate(req *dto.SkillRequest) error {
	req.Normalize()
	switch {
	case req.Name == "":
		return apperr.Validation("name is required")
	case req.Type == "":
		return apperr.Validation("type is required")
	case !req.Level.Valid():
		return apperr.Validation("level is required")
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return errNotFound
	}
	return err
}
