package service

import (
	"context"

	"github.com/elyaddev/Silo/internal/config"
	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/elyaddev/Silo/pkg/jwt"
	"github.com/google/uuid"
	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication logic
type AuthService struct {
	profileRepo *repository.ProfileRepo
	cfg         *config.Config
	tokenStore  *jwt.TokenStore
}

// NewAuthService creates a new AuthService
func NewAuthService(profileRepo *repository.ProfileRepo, cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		cfg:         cfg,
		tokenStore:  jwt.NewTokenStore(rdb, cfg.JWT.ExpireHours),
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	UserId      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Avatar      string `json:"avatar,omitempty"`
	Sport       string `json:"sport,omitempty"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	UserId     string `json:"user_id"`
	Password   string `json:"password"`
	PlatformId int    `json:"platform_id"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	Token   string              `json:"token"`
	Profile *entity.ProfileInfo `json:"profile"`
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.ProfileInfo, error) {
	if req.Password == "" || req.DisplayName == "" {
		return nil, errcode.ErrInvalidParam
	}

	// Generate user Id if not provided
	userId := req.UserId
	if userId == "" {
		userId = uuid.New().String()
	} else {
		exists, err := s.profileRepo.Exists(ctx, userId)
		if err != nil {
			log.CtxError(ctx, "check profile exists failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		if exists {
			return nil, errcode.ErrUserExists
		}
	}

	// Hash password with bcrypt
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.CtxError(ctx, "hash password failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	profile := &entity.Profile{
		Id:          userId,
		DisplayName: req.DisplayName,
		Password:    string(hashedPassword),
		Avatar:      req.Avatar,
		Sport:       req.Sport,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		log.CtxError(ctx, "create profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "user registered: user_id=%s", userId)
	return profile.ToProfileInfo(), nil
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	profile, err := s.profileRepo.GetById(ctx, req.UserId)
	if err != nil {
		log.CtxDebug(ctx, "profile not found: user_id=%s, error=%v", req.UserId, err)
		return nil, errcode.ErrUserNotFound
	}

	// Verify password with bcrypt
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, errcode.ErrPasswordWrong
	}

	// Generate token
	token, err := jwt.GenerateToken(profile.Id, req.PlatformId, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		log.CtxError(ctx, "generate token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	// Store token in Redis
	if err := s.tokenStore.StoreToken(ctx, profile.Id, req.PlatformId, token); err != nil {
		log.CtxError(ctx, "store token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "user logged in: user_id=%s, platform_id=%d", profile.Id, req.PlatformId)
	return &LoginResponse{
		Token:   token,
		Profile: profile.ToProfileInfo(),
	}, nil
}

// ValidateToken validates a token and returns claims
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	// Check token status in Redis
	valid, err := s.tokenStore.IsTokenValid(ctx, claims.UserId, claims.PlatformId, token)
	if err != nil {
		log.CtxWarn(ctx, "check token status failed: %v", err)
		// Fall back to JWT validation only if Redis check fails
		return claims, nil
	}
	if !valid {
		return nil, errcode.ErrTokenInvalid
	}

	return claims, nil
}

// Logout invalidates a user's token
func (s *AuthService) Logout(ctx context.Context, userId string, platformId int, token string) error {
	if err := s.tokenStore.InvalidateToken(ctx, userId, platformId, token); err != nil {
		log.CtxError(ctx, "invalidate token failed: %v", err)
		return errcode.ErrInternalServer
	}
	log.CtxInfo(ctx, "user logged out: user_id=%s, platform_id=%d", userId, platformId)
	return nil
}

// ForceLogout invalidates every token of a user across all platforms
func (s *AuthService) ForceLogout(ctx context.Context, userId string) error {
	if err := s.tokenStore.ForceLogoutUser(ctx, userId); err != nil {
		log.CtxError(ctx, "force logout failed: %v", err)
		return errcode.ErrInternalServer
	}
	log.CtxInfo(ctx, "user force logged out: user_id=%s", userId)
	return nil
}

// GetProfile returns the public profile of a user
func (s *AuthService) GetProfile(ctx context.Context, userId string) (*entity.ProfileInfo, error) {
	profile, err := s.profileRepo.GetById(ctx, userId)
	if err != nil {
		return nil, errcode.ErrUserNotFound
	}
	return profile.ToProfileInfo(), nil
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Sport       *string `json:"sport,omitempty"`
	Extra       *string `json:"extra,omitempty"`
}

// UpdateProfile updates the caller's own profile
func (s *AuthService) UpdateProfile(ctx context.Context, userId string, req *UpdateProfileRequest) (*entity.ProfileInfo, error) {
	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return nil, errcode.ErrInvalidParam
		}
		updates["display_name"] = *req.DisplayName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Sport != nil {
		updates["sport"] = *req.Sport
	}
	if req.Extra != nil {
		updates["extra"] = *req.Extra
	}

	if len(updates) > 0 {
		if err := s.profileRepo.Update(ctx, userId, updates); err != nil {
			log.CtxError(ctx, "update profile failed: user_id=%s, error=%v", userId, err)
			return nil, errcode.ErrInternalServer
		}
	}

	return s.GetProfile(ctx, userId)
}
