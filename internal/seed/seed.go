// Package seed creates the initial accounts of a fresh installation.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
)

const (
	defaultAdminPassword = "change_me_admin_123"
	defaultAgentPassword = "change_me_agent_123"
	defaultUserPassword  = "change_me_user_123"
)

// Account describes one user to create.
type Account struct {
	Email       string `yaml:"email"`
	FullName    string `yaml:"full_name"`
	Role        string `yaml:"role"`
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// Fixture is the document read from a seed file.
type Fixture struct {
	Users []Account `yaml:"users"`
}

// Result summarizes a seeding run.
type Result struct {
	Created []string
	Skipped []string
}

// DefaultFixture returns the stock admin, agents and users. Passwords come
// from SEED_ADMIN_PASSWORD, SEED_AGENT_PASSWORD and SEED_USER_PASSWORD.
func DefaultFixture() Fixture {
	return Fixture{Users: []Account{
		{Email: "admin@ticketsystem.com", FullName: "Admin User", Role: "admin", PasswordEnv: "SEED_ADMIN_PASSWORD", Password: defaultAdminPassword},
		{Email: "agent1@ticketsystem.com", FullName: "Agent One", Role: "agent", PasswordEnv: "SEED_AGENT_PASSWORD", Password: defaultAgentPassword},
		{Email: "agent2@ticketsystem.com", FullName: "Agent Two", Role: "agent", PasswordEnv: "SEED_AGENT_PASSWORD", Password: defaultAgentPassword},
		{Email: "user1@example.com", FullName: "John Doe", Role: "user", PasswordEnv: "SEED_USER_PASSWORD", Password: defaultUserPassword},
		{Email: "user2@example.com", FullName: "Jane Smith", Role: "user", PasswordEnv: "SEED_USER_PASSWORD", Password: defaultUserPassword},
		{Email: "user3@example.com", FullName: "Bob Johnson", Role: "user", PasswordEnv: "SEED_USER_PASSWORD", Password: defaultUserPassword},
	}}
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and validates a YAML fixture.
func ParseFixture(raw []byte) (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if len(fixture.Users) == 0 {
		return Fixture{}, errors.New("fixture has no users")
	}
	for i, account := range fixture.Users {
		if strings.TrimSpace(account.Email) == "" {
			return Fixture{}, fmt.Errorf("user %d: email is required", i)
		}
		if _, ok := domain.ParseRole(account.Role); !ok {
			return Fixture{}, fmt.Errorf("user %s: unknown role %q", account.Email, account.Role)
		}
	}
	return fixture, nil
}

// password resolves the account password, preferring the named env var.
func (a Account) password() (string, error) {
	if a.PasswordEnv != "" {
		if v := os.Getenv(a.PasswordEnv); v != "" {
			return v, nil
		}
	}
	if a.Password == "" {
		return "", fmt.Errorf("user %s: no password", a.Email)
	}
	return a.Password, nil
}

// Seeder writes fixture accounts through a UserRepository.
type Seeder struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder returns a seeder hashing passwords with bcryptCost.
func NewSeeder(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, bcryptCost: bcryptCost, logger: logger}
}

// Apply creates every account whose email is not taken yet. With dryRun
// nothing is written.
func (s *Seeder) Apply(ctx context.Context, fixture Fixture, dryRun bool) (Result, error) {
	var result Result
	for _, account := range fixture.Users {
		email := strings.ToLower(strings.TrimSpace(account.Email))
		_, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			s.logger.Info("user exists; skipping", zap.String("email", email))
			result.Skipped = append(result.Skipped, email)
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return result, fmt.Errorf("lookup %s: %w", email, err)
		}

		role, _ := domain.ParseRole(account.Role)
		if dryRun {
			s.logger.Info("would create user", zap.String("email", email), zap.String("role", string(role)))
			result.Created = append(result.Created, email)
			continue
		}

		password, err := account.password()
		if err != nil {
			return result, err
		}
		hash, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return result, fmt.Errorf("hash password for %s: %w", email, err)
		}

		user := &domain.User{
			Email:        email,
			FullName:     account.FullName,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.Skipped = append(result.Skipped, email)
				continue
			}
			return result, fmt.Errorf("create %s: %w", email, err)
		}
		s.logger.Info("created user", zap.String("email", email), zap.String("role", string(role)))
		result.Created = append(result.Created, email)
	}
	return result, nil
}
