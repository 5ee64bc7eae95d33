package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/akselna/utveksle.no-sub001/config"
	"github.com/akselna/utveksle.no-sub001/internal/dto"
	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	"github.com/akselna/utveksle.no-sub001/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo, *mockBlacklist, *jwt.Manager) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:   userRepo,
		Course: newMockCourseRepo(userRepo),
	}
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-tests",
		AccessTokenTTL: 15 * time.Minute,
	})
	blacklist := newMockBlacklist()
	svc := NewAuthService(repo, jwtMgr, blacklist, zap.NewNop())
	return svc, userRepo, blacklist, jwtMgr
}

func createTestUser(repo *mockUserRepo, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
	}
	_ = repo.Create(context.Background(), user)
	return user
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     " Kari Nordmann ",
		Email:    " Kari@Stud.NTNU.no ",
		Password: "hemmelig123",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if result.Email != "kari@stud.ntnu.no" {
		t.Errorf("邮箱应规范为小写，实际=%s", result.Email)
	}
	if result.Role != model.RoleStudent {
		t.Errorf("新用户应为学生角色，实际=%s", result.Role)
	}

	stored, _ := userRepo.GetByID(context.Background(), result.ID)
	if stored.PasswordHash == "hemmelig123" {
		t.Error("密码不应明文存储")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hemmelig123")) != nil {
		t.Error("存储的哈希应能校验原密码")
	}
}

func TestAuthService_Register_EmailExists(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()
	createTestUser(userRepo, "kari@stud.ntnu.no", "hemmelig123", model.RoleStudent)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Kari",
		Email:    "KARI@stud.ntnu.no",
		Password: "hemmelig123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo, _, jwtMgr := setupTestAuthService()
	user := createTestUser(userRepo, "admin@ntnu.no", "correct-password", model.RoleAdmin)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "admin@ntnu.no",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("应返回 AccessToken")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("签发的 Token 应可解析: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleAdmin {
		t.Errorf("Token 声明不符: user_id=%d role=%s", claims.UserID, claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService()
	createTestUser(userRepo, "kari@stud.ntnu.no", "correct-password", model.RoleStudent)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "kari@stud.ntnu.no",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ingen@ntnu.no",
		Password: "whatever1",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知用户应返回 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_Blacklists(t *testing.T) {
	svc, _, blacklist, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := blacklist.tokens["jti-1"]
	if !ok {
		t.Fatal("jti 应写入黑名单")
	}
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际=%v", ttl)
	}
}

func TestAuthService_Logout_ExpiredTokenSkipped(t *testing.T) {
	svc, _, blacklist, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(blacklist.tokens) != 0 {
		t.Error("已过期 Token 不需要写入黑名单")
	}
}

func TestAuthService_Logout_WithoutBlacklist(t *testing.T) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{User: userRepo, Course: newMockCourseRepo(userRepo)}
	svc := NewAuthService(repo, jwt.NewManager(&config.AuthConfig{JWTSecret: "x-secret-0123456789", AccessTokenTTL: time.Minute}), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("无 Redis 时 Logout 应直接成功: %v", err)
	}
}
