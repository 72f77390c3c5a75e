package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/internal/utils"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db          *gorm.DB
	ldapService *LDAPService
	jwtConfig   *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, ldapCfg *config.LDAPConfig) *AuthService {
	return &AuthService{
		db:          db,
		ldapService: NewLDAPService(ldapCfg),
		jwtConfig:   jwtCfg,
	}
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required,min=3,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	Role          string `json:"role" binding:"required,oneof=supervisor student"`
	DepartmentID  *uint  `json:"department_id"`
	StudentNumber string `json:"student_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type"` // local, ldap
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Register creates a pending account. An administrator has to approve it
// before the first login succeeds.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	roleID := models.RoleStudent
	if req.Role == "supervisor" {
		roleID = models.RoleSupervisor
	}

	if roleID == models.RoleStudent && strings.TrimSpace(req.StudentNumber) == "" {
		return nil, response.NewValidation("student number is required for student accounts")
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return nil, response.NewPersistence(err)
	}
	if count > 0 {
		return nil, response.NewConflict("username or email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	user := models.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		RoleID:        roleID,
		DepartmentID:  req.DepartmentID,
		StatusID:      models.StatusPending,
		StudentNumber: req.StudentNumber,
		AuthType:      "local",
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.FirstName != "" || req.LastName != "" {
			profile := models.Profile{
				UserID:    user.ID,
				FirstName: req.FirstName,
				LastName:  req.LastName,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, response.NewPersistence(err)
	}

	return &user, nil
}

// Login authenticates a user and issues an access/refresh token pair.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user *models.User
	var err error

	if req.AuthType == "" {
		req.AuthType = "local"
	}

	switch req.AuthType {
	case "local":
		user, err = s.localAuth(req.Username, req.Password)
	case "ldap":
		user, err = s.ldapAuth(req.Username, req.Password)
	default:
		return nil, response.NewValidation("invalid auth type")
	}

	if err != nil {
		return nil, err
	}

	if err := checkLoginStatus(user.StatusID); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID, user.Username, models.RoleName(user.RoleID), s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	refreshExpireAt := time.Now().Add(time.Duration(s.refreshExpireHours()) * time.Hour)
	refreshRecord := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&refreshRecord).Error; err != nil {
		return nil, response.NewPersistence(err)
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Model(user).Update("last_login", now)

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

// Refresh rotates a refresh token: the old one is revoked and linked to
// its replacement in the same transaction.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, response.NewValidation("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, response.NewPersistence(err)
	}

	if stored.RevokedAt != nil {
		return nil, response.NewUnauthorized("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, response.NewUnauthorized("refresh token expired")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("user not found")
		}
		return nil, response.NewPersistence(err)
	}
	if err := checkLoginStatus(user.StatusID); err != nil {
		return nil, err
	}

	newAccessToken, err := utils.GenerateToken(user.ID, user.Username, models.RoleName(user.RoleID), s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, response.NewPersistence(err)
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(time.Duration(s.refreshExpireHours()) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error
	}); err != nil {
		return nil, response.NewPersistence(err)
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	now := time.Now()
	if err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error; err != nil {
		return response.NewPersistence(err)
	}
	return nil
}

func (s *AuthService) refreshExpireHours() int {
	if s.jwtConfig.RefreshExpireHour > 0 {
		return s.jwtConfig.RefreshExpireHour
	}
	return 720
}

func checkLoginStatus(statusID uint) error {
	switch statusID {
	case models.StatusActive:
		return nil
	case models.StatusPending:
		return response.NewUnauthorized("account is pending approval")
	case models.StatusRejected:
		return response.NewUnauthorized("account registration was rejected")
	case models.StatusBlocked:
		return response.NewUnauthorized("account is blocked")
	default:
		return response.NewUnauthorized("account is inactive")
	}
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) localAuth(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? AND auth_type = ?", username, "local").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid username or password")
		}
		return nil, response.NewPersistence(err)
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, response.NewUnauthorized("invalid username or password")
	}

	return &user, nil
}

// ldapAuth authenticates against the university directory and
// auto-provisions a pending student account on first login.
func (s *AuthService) ldapAuth(username, password string) (*models.User, error) {
	ldapUser, err := s.ldapService.Authenticate(username, password)
	if err != nil {
		return nil, response.NewUnauthorized("invalid username or password")
	}

	var user models.User
	err = s.db.Where("username = ? AND auth_type = ?", ldapUser.Username, "ldap").First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: ldapUser.Username,
			Email:    ldapUser.Email,
			RoleID:   models.RoleStudent,
			StatusID: models.StatusPending,
			AuthType: "ldap",
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, response.NewPersistence(err)
		}
	} else if err != nil {
		return nil, response.NewPersistence(err)
	}

	if ldapUser.Email != "" && ldapUser.Email != user.Email {
		user.Email = ldapUser.Email
		s.db.Model(&user).Update("email", user.Email)
	}

	return &user, nil
}

// GetUserByID retrieves a user with the profile preloaded.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewPersistence(err)
	}
	return &user, nil
}

// CreateAdminIfNotExists seeds the bootstrap administrator account.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.User{}).Where("role_id = ?", models.RoleAdmin).Count(&count)

	if count == 0 {
		username := s.jwtConfig.BootstrapAdminUser
		if username == "" {
			username = "admin"
		}
		password := s.jwtConfig.BootstrapAdminPass
		if password == "" {
			password = "admin123"
		}

		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}

		admin := models.User{
			Username:     username,
			Email:        username + "@dissertrack.local",
			PasswordHash: hash,
			RoleID:       models.RoleAdmin,
			StatusID:     models.StatusActive,
			AuthType:     "local",
		}
		return s.db.Create(&admin).Error
	}

	return nil
}

func (s *AuthService) IsLDAPEnabled() bool {
	return s.ldapService.IsEnabled()
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if user.AuthType != "local" {
		return response.NewValidation("directory accounts cannot change password here")
	}

	if !utils.CheckPassword(req.OldPassword, user.PasswordHash) {
		return response.NewValidation("incorrect old password")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return response.NewPersistence(err)
	}

	if err := s.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		return response.NewPersistence(err)
	}
	return nil
}
