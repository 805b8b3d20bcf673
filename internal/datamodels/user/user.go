package user

import (
	"context"
	"time"
)

// 用户角色
const (
	RoleCustomer = 1
	RoleAdmin    = 2
)

// User 用户模型
type User struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"size:64;uniqueIndex;not null"`
	Password  string `gorm:"size:128;not null"`
	Salt      string `gorm:"size:32;not null"`
	Signature string `gorm:"size:256"` // 个性签名
	Role      int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository 用户仓储接口
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
}
