package auth

import (
	"strings"

	"fundis/internal/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

// Service authenticates the single site admin. There is no user table; the
// admin identity comes from the environment as an email plus a bcrypt hash.
type Service struct {
	adminEmail   string
	passwordHash string
	tokens       *jwt.Service
	loggerf      func(format string, args ...interface{})
}

func NewService(adminEmail, passwordHash string, tokens *jwt.Service, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: passwordHash,
		tokens:       tokens,
		loggerf:      loggerf,
	}
}

func (s *Service) Login(email, password string) (*LoginResponse, error) {
	if s.adminEmail == "" || s.passwordHash == "" {
		return nil, ErrNotConfigured
	}

	if strings.ToLower(strings.TrimSpace(email)) != s.adminEmail {
		// Hash anyway so a wrong email costs the same as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.loggerf("level=warn msg=admin login rejected email=%s", email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(s.adminEmail, RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=admin login email=%s", s.adminEmail)
	return &LoginResponse{Token: token, Email: s.adminEmail, Role: RoleAdmin}, nil
}
