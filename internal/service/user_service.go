package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/user"
	"github.com/happy2h/gomall/internal/errs"
)

// UserService 用户服务
type UserService struct {
	repo user.Repository
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

// Register 注册，用户名唯一
func (s *UserService) Register(ctx context.Context, username, password string) (*user.User, error) {
	if username == "" || password == "" {
		return nil, errs.ErrRequestParam
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, errs.ErrNameDuplicated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	u := &user.User{
		Username: username,
		Salt:     "gomall", // 简化实现，真实业务请使用随机盐
		Role:     user.RoleCustomer,
	}
	u.Password = hashPassword(password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return u, nil
}

// Login 校验用户名密码，返回用户（HTTP 层负责写会话/签发 token）
func (s *UserService) Login(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWrongPassword
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if hashPassword(password, u.Salt) != u.Password {
		return nil, errs.ErrWrongPassword
	}
	return u, nil
}

// UpdateSignature 更新个性签名
func (s *UserService) UpdateSignature(ctx context.Context, userID int64, signature string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNeedLogin
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}
	u.Signature = signature
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

// CheckAdminRole 是否管理员
func (s *UserService) CheckAdminRole(u *user.User) bool {
	return u != nil && u.IsAdmin()
}
