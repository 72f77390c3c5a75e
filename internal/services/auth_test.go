package services

import (
	"testing"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/response"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 24}, &config.LDAPConfig{})
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Username:      "alice",
		Email:         "alice@example.com",
		Password:      "secret123",
		Role:          "student",
		StudentNumber: "S1001",
		FirstName:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.StatusID != models.StatusPending {
		t.Errorf("StatusID = %d, expected %d", user.StatusID, models.StatusPending)
	}
	if user.RoleID != models.RoleStudent {
		t.Errorf("RoleID = %d, expected %d", user.RoleID, models.RoleStudent)
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Errorf("expected profile row: %v", err)
	}

	// Duplicate username is a conflict.
	_, err = svc.Register(&RegisterRequest{
		Username:      "alice",
		Email:         "alice2@example.com",
		Password:      "secret123",
		Role:          "student",
		StudentNumber: "S1002",
	})
	if !response.IsConflict(err) {
		t.Errorf("expected conflict for duplicate username, got %v", err)
	}

	// Students must carry a student number.
	_, err = svc.Register(&RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
		Role:     "student",
	})
	if !response.IsValidation(err) {
		t.Errorf("expected validation error without student number, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Username:      "carol",
		Email:         "carol@example.com",
		Password:      "secret123",
		Role:          "student",
		StudentNumber: "S2001",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Pending accounts cannot log in yet.
	_, err = svc.Login(&LoginRequest{Username: "carol", Password: "secret123"}, "127.0.0.1", "test")
	if !response.IsUnauthorized(err) {
		t.Errorf("expected unauthorized for pending account, got %v", err)
	}

	db.Model(&models.User{}).Where("id = ?", user.ID).Update("status_id", models.StatusActive)

	result, err := svc.Login(&LoginRequest{Username: "carol", Password: "secret123"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
	if result.RefreshToken == "" {
		t.Error("expected non-empty refresh token")
	}
	if result.User.ID != user.ID {
		t.Errorf("User.ID = %d, expected %d", result.User.ID, user.ID)
	}

	_, err = svc.Login(&LoginRequest{Username: "carol", Password: "wrong"}, "127.0.0.1", "test")
	if !response.IsUnauthorized(err) {
		t.Errorf("expected unauthorized for wrong password, got %v", err)
	}

	_, err = svc.Login(&LoginRequest{Username: "nobody", Password: "secret123"}, "127.0.0.1", "test")
	if !response.IsUnauthorized(err) {
		t.Errorf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestRefresh_Rotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Username:      "dave",
		Email:         "dave@example.com",
		Password:      "secret123",
		Role:          "student",
		StudentNumber: "S3001",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("status_id", models.StatusActive)

	login, err := svc.Login(&LoginRequest{Username: "dave", Password: "secret123"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := svc.Refresh(login.RefreshToken, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a new refresh token after rotation")
	}

	// The old token is revoked by the rotation.
	_, err = svc.Refresh(login.RefreshToken, "127.0.0.1", "test")
	if !response.IsUnauthorized(err) {
		t.Errorf("expected unauthorized for rotated token, got %v", err)
	}

	// The replacement still works.
	if _, err := svc.Refresh(refreshed.RefreshToken, "127.0.0.1", "test"); err != nil {
		t.Errorf("expected replacement token to refresh, got %v", err)
	}

	_, err = svc.Refresh("not-a-token", "127.0.0.1", "test")
	if !response.IsUnauthorized(err) {
		t.Errorf("expected unauthorized for garbage token, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Username:      "erin",
		Email:         "erin@example.com",
		Password:      "oldpass1",
		Role:          "student",
		StudentNumber: "S4001",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("status_id", models.StatusActive)

	if err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpass1",
	}); !response.IsValidation(err) {
		t.Errorf("expected validation error for wrong old password, got %v", err)
	}

	if err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "oldpass1",
		NewPassword: "newpass1",
	}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Username: "erin", Password: "newpass1"}, "127.0.0.1", "test"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestCreateAdminIfNotExists(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists failed: %v", err)
	}

	var admin models.User
	if err := db.Where("role_id = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		t.Fatalf("expected admin account: %v", err)
	}
	if admin.StatusID != models.StatusActive {
		t.Errorf("admin StatusID = %d, expected %d", admin.StatusID, models.StatusActive)
	}

	// Idempotent on a second boot.
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists failed: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Where("role_id = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 admin, got %d", count)
	}
}
