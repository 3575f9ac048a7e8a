package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/models"
)

// MemoryStore keeps users, skills and projects in process memory. It backs
// STORE_BACKEND=memory and the handler tests, and mirrors MongoStore's
// semantics: unique usernames and skill names, malformed ids are not found.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	skills   map[primitive.ObjectID]models.Skill
	projects map[primitive.ObjectID]models.Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		skills:   make(map[primitive.ObjectID]models.Skill),
		projects: make(map[primitive.ObjectID]models.Project),
	}
}

// ── users ──────────────────────────────────────────────────

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return apperr.Wrap(apperr.ErrConflict, "User already exists")
		}
	}
	u.ID = primitive.NewObjectID().Hex()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteUser removes a user out-of-band; there is no HTTP route for it.
func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// ── skills ─────────────────────────────────────────────────

func (s *MemoryStore) InsertSkill(ctx context.Context, sk *models.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skillNameTaken(sk.Name, primitive.NilObjectID) {
		return apperr.Wrap(apperr.ErrConflict, "Skill already exists")
	}
	sk.ID = primitive.NewObjectID()
	sk.CreatedAt = time.Now().UTC()
	s.skills[sk.ID] = *sk
	return nil
}

func (s *MemoryStore) ListSkills(ctx context.Context) ([]models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		out = append(out, sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *MemoryStore) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk, ok := s.skills[oid]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &sk, nil
}

func (s *MemoryStore) ReplaceSkill(ctx context.Context, sk *models.Skill) (*models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.skills[sk.ID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if s.skillNameTaken(sk.Name, sk.ID) {
		return nil, apperr.Wrap(apperr.ErrConflict, "Skill already exists")
	}
	existing.Name, existing.Level, existing.Type = sk.Name, sk.Level, sk.Type
	s.skills[sk.ID] = existing
	return &existing, nil
}

func (s *MemoryStore) DeleteSkill(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.skills[oid]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.skills, oid)
	return nil
}

func (s *MemoryStore) CountProjectsUsingSkill(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.projects {
		for _, t := range p.Technologies {
			if t == oid {
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *MemoryStore) FindSkillsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Skill, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if sk, ok := s.skills[id]; ok {
			out = append(out, sk)
		}
	}
	return out, nil
}

func (s *MemoryStore) skillNameTaken(name string, except primitive.ObjectID) bool {
	for id, sk := range s.skills {
		if id != except && sk.Name == name {
			return true
		}
	}
	return false
}

// ── projects ───────────────────────────────────────────────

func (s *MemoryStore) InsertProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Views = 0
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[oid]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *MemoryStore) ReplaceProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[p.ID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	existing.Title = p.Title
	existing.CompanyName = p.CompanyName
	existing.Description = p.Description
	existing.Technologies = append([]primitive.ObjectID(nil), p.Technologies...)
	existing.StartDate = p.StartDate
	existing.EndDate = p.EndDate
	existing.IsCurrent = p.IsCurrent
	existing.IsFeatured = p.IsFeatured
	existing.UpdatedAt = time.Now().UTC()
	s.projects[p.ID] = existing
	out := cloneProject(existing)
	return &out, nil
}

func (s *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[oid]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.projects, oid)
	return nil
}

func (s *MemoryStore) SetFeatured(ctx context.Context, id string, featured bool) (*models.Project, error) {
	return s.updateProject(id, func(p *models.Project) {
		if p.IsFeatured != featured {
			p.IsFeatured = featured
			p.UpdatedAt = time.Now().UTC()
		}
	})
}

func (s *MemoryStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	p, err := s.updateProject(id, func(p *models.Project) { p.Views++ })
	if err != nil {
		return 0, err
	}
	return p.Views, nil
}

func (s *MemoryStore) SetImageKey(ctx context.Context, id, key string) error {
	_, err := s.updateProject(id, func(p *models.Project) {
		p.ImageKey = key
		p.UpdatedAt = time.Now().UTC()
	})
	return err
}

func (s *MemoryStore) updateProject(id string, fn func(*models.Project)) (*models.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[oid]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	fn(&p)
	s.projects[oid] = p
	out := cloneProject(p)
	return &out, nil
}

func cloneProject(p models.Project) models.Project {
	p.Technologies = append([]primitive.ObjectID(nil), p.Technologies...)
	if p.EndDate != nil {
		end := *p.EndDate
		p.EndDate = &end
	}
	return p
}
