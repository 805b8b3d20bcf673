package category

import (
	"context"
	"time"
)

// Category 商品分类，parent_id 构成邻接表形式的分类树
type Category struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null;index"`
	Type      int    `gorm:"not null"` // 分类层级：1 一级 2 二级 3 三级
	ParentID  int64  `gorm:"index;not null"`
	OrderNum  int    `gorm:"not null"` // 同级展示顺序
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository 分类仓储接口
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*Category, error)
	ListPaged(ctx context.Context, offset, limit int) ([]*Category, int64, error)
}
