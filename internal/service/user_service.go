package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/akselna/utveksle.no-sub001/internal/dto"
	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	apperrors "github.com/akselna/utveksle.no-sub001/pkg/errors"
)

var ErrInvalidRole = errors.New("无效的角色")

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	AssignRoleByEmail(ctx context.Context, email, role string) (*dto.UserResponse, error)
}

// TokenRevoker 按用户吊销已签发的 Token
type TokenRevoker interface {
	RevokeUserTokens(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
}

type userService struct {
	repo     *repository.Repository
	revoker  TokenRevoker
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService 创建 UserService 实例
// revoker 为 nil 时角色变更不吊销旧 Token，需等待其自然过期
func NewUserService(repo *repository.Repository, revoker TokenRevoker, tokenTTL time.Duration, logger *zap.Logger) UserService {
	return &userService{repo: repo, revoker: revoker, tokenTTL: tokenTTL, logger: logger, now: time.Now}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// AssignRoleByEmail 修改用户角色（运维命令行使用，用于开通首个管理员）
func (s *userService) AssignRoleByEmail(ctx context.Context, email, role string) (*dto.UserResponse, error) {
	if role != model.RoleStudent && role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}

	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if user.Role == role {
		return toUserResponse(user), nil
	}

	if err := s.repo.User.UpdateRole(ctx, user.ID, role); err != nil {
		s.logger.Error("修改用户角色失败", zap.Int64("id", user.ID), zap.Error(err))
		return nil, err
	}
	user.Role = role

	// 旧 Token 携带旧角色，全部吊销
	if s.revoker != nil {
		if err := s.revoker.RevokeUserTokens(ctx, user.ID, s.now(), s.tokenTTL); err != nil {
			s.logger.Warn("吊销用户 Token 失败", zap.Int64("id", user.ID), zap.Error(err))
		}
	}

	s.logger.Info("用户角色已变更", zap.Int64("id", user.ID), zap.String("role", role))
	return toUserResponse(user), nil
}
