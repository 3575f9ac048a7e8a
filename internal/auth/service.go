package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/models"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidToken       = "Invalid or expired token"
	msgAdminRequired      = "Forbidden - Admin access required"

	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

// UserStore defines the interface for credential persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Session is what register and login hand back.
type Session struct {
	Token string
	User  models.PublicUser
}

// Options tunes a Service.
type Options struct {
	// AllowAdminRegistration lets POST /auth/register create admins.
	AllowAdminRegistration bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service issues and checks identities against the Credential Store.
type Service struct {
	users   UserStore
	signer  *Signer
	revoked Revoker
	opts    Options

	dummyOnce sync.Once
	dummyHash []byte
}

// NewService builds a Service. revoked may be nil, in which case logout only
// discards the token client-side.
func NewService(users UserStore, signer *Signer, revoked Revoker, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, signer: signer, revoked: revoked, opts: opts}
}

// Register creates a user and signs them in. role defaults to "user".
func (s *Service) Register(ctx context.Context, username, password, role string) (*Session, error) {
	username = strings.TrimSpace(username)
	if role == "" {
		role = models.RoleUser
	}
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation(`role must be "user" or "admin"`)
	}
	if role == models.RoleAdmin && !s.opts.AllowAdminRegistration {
		return nil, apperr.Wrap(apperr.ErrForbidden, "Admin registration is disabled")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "User already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Username: username, PasswordHash: string(hash), Role: role}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Str("role", role).Msg("user registered")
	return s.issue(u)
}

// Login checks the credentials. Unknown usernames and wrong passwords fail
// identically.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		// keep the timing of a miss close to a hit
		bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		zerolog.Ctx(ctx).Info().Msg("login failed")
		return nil, apperr.Wrap(apperr.ErrUnauthorized, msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Msg("login failed")
		return nil, apperr.Wrap(apperr.ErrUnauthorized, msgInvalidCredentials)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Msg("login succeeded")
	return s.issue(u)
}

// Validate resolves a token to its user. Bad signatures, expiry, revocation
// and deleted users all come back as the same ErrUnauthorized.
func (s *Service) Validate(ctx context.Context, token string) (models.PublicUser, error) {
	_, u, err := s.verify(ctx, token)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// Authorize validates token and, if requiredRole is set, checks the role.
func (s *Service) Authorize(ctx context.Context, token, requiredRole string) (models.PublicUser, error) {
	user, err := s.Validate(ctx, token)
	if err != nil {
		return models.PublicUser{}, err
	}
	if requiredRole != "" && user.Role != requiredRole {
		msg := msgAdminRequired
		if requiredRole != models.RoleAdmin {
			msg = fmt.Sprintf("Forbidden - %s access required", requiredRole)
		}
		return models.PublicUser{}, apperr.Wrap(apperr.ErrForbidden, msg)
	}
	return user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, _, err := s.verify(ctx, token)
	if err != nil {
		return err
	}
	if s.revoked == nil || claims.ID == "" {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// EnsureAdmin seeds an admin account when the Credential Store is empty.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := validateCredentials(username, password); err != nil {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	err = s.users.CreateUser(ctx, &models.User{Username: username, PasswordHash: string(hash), Role: models.RoleAdmin})
	if errors.Is(err, apperr.ErrConflict) {
		// another instance seeded first
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListUsers returns every user without password hashes.
func (s *Service) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// HasAdmin reports whether any admin account exists.
func (s *Service) HasAdmin(ctx context.Context) (bool, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	for i := range users {
		if users[i].Role == models.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// OpenAdminRegistration reports whether anyone can still register as admin
// even though an admin already exists.
func (s *Service) OpenAdminRegistration(ctx context.Context) (bool, error) {
	if !s.opts.AllowAdminRegistration {
		return false, nil
	}
	return s.HasAdmin(ctx)
}

func (s *Service) verify(ctx context.Context, token string) (*Claims, *models.User, error) {
	unauthorized := apperr.Wrap(apperr.ErrUnauthorized, msgInvalidToken)
	if token == "" {
		return nil, nil, unauthorized
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("token rejected")
		return nil, nil, unauthorized
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, nil, unauthorized
		}
	}
	u, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, unauthorized
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	return claims, u, nil
}

func (s *Service) issue(u *models.User) (*Session, error) {
	pub := u.Public()
	token, err := s.signer.Sign(pub)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: pub}, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), s.opts.BcryptCost)
	})
	return s.dummyHash
}

func validateCredentials(username, password string) error {
	switch {
	case username == "" || password == "":
		return apperr.Validation("username and password are required")
	case len(username) < minUsernameLen || len(username) > maxUsernameLen:
		return apperr.Validation(fmt.Sprintf("username must be %d-%d characters", minUsernameLen, maxUsernameLen))
	case len(password) < minPasswordLen:
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	case len(password) > maxPasswordLen:
		return apperr.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordLen))
	}
	return nil
}
