// Package auth is the identity collaborator: it issues and validates
// opaque tokens. The sync core never sees credentials, only the display
// name a token resolves to.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/okatev/whiteboard/internal/domain"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrThrottled          = errors.New("too many login attempts")
)

type account struct {
	user *domain.User
	hash []byte
}

type Service struct {
	mu       sync.RWMutex
	accounts map[string]*account
	tokens   map[string]*domain.User
	limiter  *RateLimiter
}

func NewService() *Service {
	return &Service{
		accounts: make(map[string]*account),
		tokens:   make(map[string]*domain.User),
		limiter:  NewRateLimiter(5, time.Minute),
	}
}

func (s *Service) Register(username, password string) error {
	user, err := domain.NewUser(username)
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return ErrUserExists
	}
	s.accounts[username] = &account{user: user, hash: hash}
	log.Info().Str("module", "auth").Str("username", username).Msg("registered user")
	return nil
}

// Login exchanges credentials for an opaque token. Attempts are
// throttled per username.
func (s *Service) Login(username, password string) (string, error) {
	if !s.limiter.Allow(username) {
		log.Warn().Str("module", "auth").Str("username", username).Msg("login throttled")
		return "", ErrThrottled
	}

	s.mu.RLock()
	acc, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = acc.user
	s.mu.Unlock()
	log.Info().Str("module", "auth").Str("username", username).Msg("issued token")
	return token, nil
}

// VerifyIdentity resolves a token to a display name.
func (s *Service) VerifyIdentity(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.tokens[token]; ok {
		return user.Username, true
	}
	return "", false
}
