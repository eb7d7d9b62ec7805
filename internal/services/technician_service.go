package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"jollybaba-backend/internal/auth"
	"jollybaba-backend/internal/cache"
	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"

	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrEmailInUse         = errors.New("Email already in use")
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrNotAllowedEmail    = errors.New("this Google account is not allowed, use password login")
	ErrUnverifiedEmail    = errors.New("Google account email is not verified")
)

type TechnicianService struct {
	Repo       *repositories.TechnicianRepository
	JWTManager *auth.JWTManager
	Google     *auth.GoogleOAuthService
	Config     *config.Config
}

func NewTechnicianService(repo *repositories.TechnicianRepository, jwtManager *auth.JWTManager, google *auth.GoogleOAuthService, cfg *config.Config) *TechnicianService {
	return &TechnicianService{
		Repo:       repo,
		JWTManager: jwtManager,
		Google:     google,
		Config:     cfg,
	}
}

// Login checks the password and issues a token. A Redis hit on the exact
// credential hash skips the bcrypt comparison on repeat logins.
func (s *TechnicianService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if cachedID, ok := cache.GetCachedAuth(ctx, email, password); ok {
		user, err := s.Repo.Get(ctx, int(cachedID))
		if err == nil && user != nil {
			return s.issueToken(user)
		}
		cache.InvalidateAuth(ctx, email, password)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	cache.CacheAuth(ctx, email, password, int64(user.ID))
	return s.issueToken(user)
}

// LoginWithGoogle accepts either a One Tap credential (ID token) or an
// OAuth authorization code. Only the single configured admin email may sign
// in this way; the account is created on first use with an unusable random
// password and promoted to admin if it already exists.
func (s *TechnicianService) LoginWithGoogle(ctx context.Context, credential, code string) (*models.LoginResponse, error) {
	if s.Google == nil || !s.Google.IsConfigured() {
		return nil, auth.ErrOAuthNotConfigured
	}

	var info *auth.GoogleUserInfo
	var err error
	switch {
	case credential != "":
		info, err = s.Google.VerifyIDToken(ctx, credential)
	case code != "":
		var token *oauth2.Token
		token, err = s.Google.ExchangeCode(ctx, code)
		if err == nil {
			info, err = s.Google.GetUserInfo(ctx, token)
		}
	default:
		return nil, auth.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	allowed := strings.ToLower(strings.TrimSpace(s.Config.Google.AdminEmail))
	if allowed == "" || email != allowed {
		return nil, ErrNotAllowedEmail
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = email
		}
		hash, err := unusablePasswordHash()
		if err != nil {
			return nil, err
		}
		user, err = s.Repo.Create(ctx, name, email, hash, "", "admin")
		if err != nil {
			return nil, err
		}
	} else if user.Role != "admin" {
		if err := s.Repo.PromoteToAdmin(ctx, user.ID); err != nil {
			return nil, err
		}
		user.Role = "admin"
	}

	return s.issueToken(user)
}

// unusablePasswordHash produces a valid bcrypt hash of random bytes so a
// Google-only account can never be entered through the password form.
func unusablePasswordHash() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return auth.HashPassword(hex.EncodeToString(raw))
}

func (s *TechnicianService) issueToken(user *models.Technician) (*models.LoginResponse, error) {
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Token: token,
		User: models.SafeUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

func (s *TechnicianService) Get(ctx context.Context, id int) (*models.Technician, error) {
	return s.Repo.Get(ctx, id)
}

func (s *TechnicianService) List(ctx context.Context) ([]models.Technician, error) {
	return s.Repo.List(ctx)
}

func (s *TechnicianService) ListPublic(ctx context.Context) ([]models.PublicTechnician, error) {
	return s.Repo.ListPublic(ctx)
}

func (s *TechnicianService) Create(ctx context.Context, req *models.CreateTechnicianRequest) (*models.Technician, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	if role != "admin" {
		role = "technician"
	}

	created, err := s.Repo.Create(ctx, name, email, hash, strings.TrimSpace(req.Phone), role)
	if err != nil {
		return nil, err
	}
	log.Printf("[Technicians] created %s (%s)", created.Email, created.Role)
	return created, nil
}

func (s *TechnicianService) Delete(ctx context.Context, id int) error {
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return repositories.ErrNotFound
	}
	return nil
}
