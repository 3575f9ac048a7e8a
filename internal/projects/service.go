// Package projects manages portfolio projects and their cover images.
package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/dto"
	"github.com/ayush/portfolio-site/internal/models"
)

// MaxImageBytes bounds an uploaded cover image.
const MaxImageBytes = 5 << 20

// Store defines the interface for project persistence. FindSkillsByIDs
// resolves technology references.
type Store interface {
	InsertProject(ctx context.Context, p *models.Project) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ReplaceProject(ctx context.Context, p *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) (*models.Project, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	SetImageKey(ctx context.Context, id, key string) error
	FindSkillsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Skill, error)
}

// FileStore defines the interface for image storage.
type FileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

var (
	errNotFound      = apperr.Wrap(apperr.ErrNotFound, "Project not found")
	errNoImage       = apperr.Wrap(apperr.ErrNotFound, "Image not found")
	errNoFileStorage = apperr.Wrap(apperr.ErrNotFound, "Image storage is not configured")
)

type Service struct {
	store Store
	files FileStore
}

// NewService builds a Service. files may be nil, which disables images.
func NewService(store Store, files FileStore) *Service {
	return &Service{store: store, files: files}
}

// List returns every project with technologies expanded, newest start first.
func (s *Service) List(ctx context.Context) ([]dto.Project, error) {
	list, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	var ids []primitive.ObjectID
	for i := range list {
		ids = append(ids, list[i].Technologies...)
	}
	skills, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Project, 0, len(list))
	for i := range list {
		out = append(out, dto.ProjectFromModel(&list[i], skills))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*dto.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.expand(ctx, p)
}

func (s *Service) Create(ctx context.Context, req dto.ProjectRequest) (*dto.Project, error) {
	p, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertProject(ctx, p); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("project_id", p.ID.Hex()).Msg("project created")
	return s.expand(ctx, p)
}

// Update replaces the project's fields; technologies are replaced, not merged.
func (s *Service) Update(ctx context.Context, id string, req dto.ProjectRequest) (*dto.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}
	p, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	p.ID = oid
	updated, err := s.store.ReplaceProject(ctx, p)
	if err != nil {
		return nil, notFound(err)
	}
	return s.expand(ctx, updated)
}

// Delete removes the project and then its cover image, if any.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return notFound(err)
	}
	if p.ImageKey != "" && s.files != nil {
		if err := s.files.Remove(ctx, p.ImageKey); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", p.ImageKey).Msg("image cleanup failed")
		}
	}
	zerolog.Ctx(ctx).Info().Str("project_id", id).Msg("project deleted")
	return nil
}

// ToggleFeatured sets isFeatured to *value, or flips it when value is nil.
func (s *Service) ToggleFeatured(ctx context.Context, id string, value *bool) (*dto.Project, error) {
	var featured bool
	if value != nil {
		featured = *value
	} else {
		cur, err := s.store.GetProject(ctx, id)
		if err != nil {
			return nil, notFound(err)
		}
		featured = !cur.IsFeatured
	}
	p, err := s.store.SetFeatured(ctx, id, featured)
	if err != nil {
		return nil, notFound(err)
	}
	return s.expand(ctx, p)
}

// RecordView bumps the view counter and returns the new total.
func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	n, err := s.store.IncrementViews(ctx, id)
	if err != nil {
		return 0, notFound(err)
	}
	return n, nil
}

// SetImage stores body as the project's cover image.
func (s *Service) SetImage(ctx context.Context, id, contentType string, body io.Reader) (*dto.Project, error) {
	if s.files == nil {
		return nil, errNoFileStorage
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("Content-Type must be an image type")
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("read image: %v", err))
	}
	switch {
	case len(data) == 0:
		return nil, apperr.Validation("image body is required")
	case len(data) > MaxImageBytes:
		return nil, apperr.Validation("image must be at most 5 MiB")
	}

	key := fmt.Sprintf("projects/%s/cover", p.ID.Hex())
	if err := s.files.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}
	if err := s.store.SetImageKey(ctx, id, key); err != nil {
		return nil, notFound(err)
	}
	p.ImageKey = key
	return s.expand(ctx, p)
}

// Image opens the project's cover image. The caller closes the reader.
func (s *Service) Image(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if s.files == nil {
		return nil, "", errNoFileStorage
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, "", notFound(err)
	}
	if p.ImageKey == "" {
		return nil, "", errNoImage
	}
	rc, ct, err := s.files.Download(ctx, p.ImageKey)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", errNoImage
	}
	return rc, ct, err
}

// build validates req and turns it into a model.
func (s *Service) build(ctx context.Context, req dto.ProjectRequest) (*models.Project, error) {
	req.Normalize()
	switch {
	case req.Title == "":
		return nil, apperr.Validation("title is required")
	case req.CompanyName == "":
		return nil, apperr.Validation("companyName is required")
	case strings.TrimSpace(req.Description) == "":
		return nil, apperr.Validation("description is required")
	case req.StartDate == nil || req.StartDate.IsZero():
		return nil, apperr.Validation("startDate is required")
	case len(req.Technologies) == 0:
		return nil, apperr.Validation("at least one technology is required")
	}

	var end *time.Time
	if !req.IsCurrent {
		if req.EndDate == nil {
			return nil, apperr.Validation("endDate is required unless the project is current")
		}
		if req.EndDate.Before(req.StartDate.Time) {
			return nil, apperr.Validation("endDate must not be before startDate")
		}
		t := req.EndDate.Time
		end = &t
	}

	techs, err := s.technologies(ctx, req.Technologies)
	if err != nil {
		return nil, err
	}

	return &models.Project{
		Title:        req.Title,
		CompanyName:  req.CompanyName,
		Description:  req.Description,
		Technologies: techs,
		StartDate:    req.StartDate.Time,
		EndDate:      end,
		IsCurrent:    req.IsCurrent,
		IsFeatured:   req.IsFeatured,
	}, nil
}

// technologies parses and de-duplicates ids and checks that every one names
// an existing skill.
func (s *Service) technologies(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for _, r := range raw {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(r))
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid technology id %q", r))
		}
		if !seen[oid] {
			seen[oid] = true
			ids = append(ids, oid)
		}
	}
	found, err := s.store.FindSkillsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve technologies: %w", err)
	}
	if len(found) != len(ids) {
		known := make(map[primitive.ObjectID]bool, len(found))
		for _, sk := range found {
			known[sk.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, apperr.Validation(fmt.Sprintf("unknown technology %s", id.Hex()))
			}
		}
	}
	return ids, nil
}

func (s *Service) expand(ctx context.Context, p *models.Project) (*dto.Project, error) {
	skills, err := s.resolve(ctx, p.Technologies)
	if err != nil {
		return nil, err
	}
	out := dto.ProjectFromModel(p, skills)
	return &out, nil
}

func (s *Service) resolve(ctx context.Context, ids []primitive.ObjectID) (map[string]models.Skill, error) {
	out := make(map[string]models.Skill)
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.store.FindSkillsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve technologies: %w", err)
	}
	for _, sk := range found {
		out[sk.ID.Hex()] = sk
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return errNotFound
	}
	return err
}
