package account

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultSessionTTL is how long a login stays valid when no TTL is configured
	DefaultSessionTTL = 30 * 24 * time.Hour

	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

// IDGenerator generates unique IDs for users and session tokens
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles registration, login and session lookups
type Service struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
	sessionTTL  time.Duration
	hashCost    int
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, sessionTTL time.Duration) *Service {
	return NewServiceWithDeps(db, sessionTTL, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, sessionTTL time.Duration, idGen IDGenerator, timeSrc TimeSource) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
		sessionTTL:  sessionTTL,
		hashCost:    bcrypt.DefaultCost,
	}
}

// NormalizeEmail trims and lower-cases an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and logs it in
func (s *Service) Register(username, email, password string) (*User, *Session, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if username == "" {
		return nil, nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	stored := &StoredUser{
		User: User{
			ID:         s.idGenerator.Generate(),
			Username:   username,
			Email:      email,
			JoinedDate: s.timeSource.Now(),
		},
		PasswordHash: hash,
	}
	if err := s.db.CreateUser(stored); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("saving user: %w", err)
	}

	session, err := s.newSession(stored.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("User registered", "user_id", stored.ID)
	user := stored.User
	return &user, session, nil
}

// Login checks credentials and issues a new session
func (s *Service) Login(email, password string) (*User, *Session, error) {
	stored, err := s.db.GetUserByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.newSession(stored.ID)
	if err != nil {
		return nil, nil, err
	}

	user := stored.User
	return &user, session, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *Service) Logout(token string) error {
	if err := s.db.DeleteSession(token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user
func (s *Service) Authenticate(token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.db.GetSession(token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if session.Expired(s.timeSource.Now()) {
		if err := s.db.DeleteSession(token); err != nil {
			slog.Warn("Failed to delete expired session", "user_id", session.UserID, "error", err)
		}
		return nil, ErrUnauthorized
	}

	stored, err := s.db.GetUser(session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	user := stored.User
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(id string) (*User, error) {
	stored, err := s.db.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	user := stored.User
	return &user, nil
}

func (s *Service) newSession(userID string) (*Session, error) {
	now := s.timeSource.Now()
	session := &Session{
		Token:     s.idGenerator.Generate(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}
