package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edconnect_backend/internal/config"
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	OrgRepo  *repository.OrganizationRepository
	Denylist TokenDenylist
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository, denylist TokenDenylist, cfg *config.Config) *AuthService {
	if denylist == nil {
		denylist = NewMemoryTokenDenylist()
	}
	return &AuthService{
		UserRepo: userRepo,
		OrgRepo:  orgRepo,
		Denylist: denylist,
		Cfg:      cfg,
	}
}

type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Role       model.UserRole
	SchoolID   *uint
	GradeLevel int
}

// Register 只允许自助注册学生或教师账号
func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.Student
	}
	if in.Role != model.Student && in.Role != model.Educator {
		return nil, util.ErrInvalidRole
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.UserRepo.ExistsByUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUsernameTaken
	}
	registered, err := s.UserRepo.ExistsByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, util.ErrEmailRegistered
	}

	hashed, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		FullName: strings.TrimSpace(in.FullName),
		Role:     in.Role,
	}
	if in.SchoolID != nil {
		school, err := s.OrgRepo.FindSchoolByID(*in.SchoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrNotFound
			}
			return nil, err
		}
		user.SchoolID = util.UintPtr(school.ID)
		user.DistrictID = util.UintPtr(school.DistrictID)
	}

	if err := s.UserRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if in.Role == model.Student && in.GradeLevel > 0 {
		if profile, err := s.UserRepo.FindStudentProfile(user.ID); err == nil {
			profile.GradeLevel = in.GradeLevel
			if err := s.UserRepo.UpdateStudentProfile(profile); err != nil {
				return nil, err
			}
		}
	}
	return user, nil
}

// Login 接受用户名或邮箱
func (s *AuthService) Login(identifier, password string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.UserRepo.FindByEmail(strings.ToLower(identifier))
	} else {
		user, err = s.UserRepo.FindByUsername(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := util.CheckPassword(user.Password, password); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLogin = &now

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate 校验 bearer token 并检查是否已注销
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" {
		revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, util.ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes a bearer token until it expires. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) GetUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
