package product

import (
	"context"
	"time"
)

// 商品上下架状态
const (
	StatusNotSale = 0 // 下架
	StatusOnSale  = 1 // 在售
)

// Product 商品模型
type Product struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"size:128;not null;index"`
	Image      string `gorm:"size:256"`
	Detail     string `gorm:"size:512"`
	CategoryID int64  `gorm:"index;not null"`
	Price      int64  `gorm:"not null"` // 分
	Stock      int64  `gorm:"not null"` // 只允许 StockLedger 在结算事务内扣减
	Status     int    `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Query 商品搜索条件
type Query struct {
	Keyword     string
	CategoryIDs []int64
	OnSaleOnly  bool
	OrderBy     string // 已经过白名单校验的排序子句
	Offset      int
	Limit       int
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	Search(ctx context.Context, q Query) ([]*Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	UpdateStatusBatch(ctx context.Context, ids []int64, status int) error
}
