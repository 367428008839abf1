package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// deactivated accounts without distinguishing between them.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUser indicates malformed user fields on creation.
	ErrInvalidUser = errors.New("invalid user fields")

	// ErrNotAdmin indicates the caller lacks the admin role.
	ErrNotAdmin = errors.New("admin role required")
)

// Service manages the user lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures the fields required to register a user.
type CreateInput struct {
	Username string
	Email    string
	Password string
	Role     Role
}

// Create registers a user with a bcrypt-hashed password. The role defaults
// to RoleUser when unset.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	if len(input.Username) < 3 || input.Email == "" {
		return User{}, ErrInvalidUser
	}
	if len(input.Password) < 4 {
		return User{}, ErrInvalidUser
	}
	role := input.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return User{}, ErrInvalidUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair against the stored hash.
// Unknown users, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns users holding the given role, oldest first.
func (s *Service) List(ctx context.Context, role Role) ([]User, error) {
	return s.repo.List(ctx, role)
}

// EnsureAdmin creates the bootstrap admin account when no user with the
// given username exists. It reports whether the account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, email string) (User, bool, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, err
	}

	user, err := s.Create(ctx, CreateInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
	})
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}
