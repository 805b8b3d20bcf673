package cart

import (
	"context"
	"time"
)

// 购物车勾选状态
const (
	Unchecked = 0
	Checked   = 1
)

// CartLine 购物车行，每个用户对同一商品只有一行
type CartLine struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"not null;uniqueIndex:uk_cart_user_product"`
	ProductID int64 `gorm:"not null;uniqueIndex:uk_cart_user_product"`
	Quantity  int64 `gorm:"not null"`
	Selected  int   `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineView 购物车行视图，联表带出商品实时信息用于展示与结算校验
type LineView struct {
	ID            int64
	UserID        int64
	ProductID     int64
	Quantity      int64
	Selected      int
	ProductName   string
	ProductImage  string
	UnitPrice     int64
	ProductStatus int
	Stock         int64
	TotalPrice    int64 // UnitPrice * Quantity，读出后计算
}

// Repository 购物车仓储接口
type Repository interface {
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*CartLine, error)
	Create(ctx context.Context, line *CartLine) error
	Update(ctx context.Context, line *CartLine) error
	Delete(ctx context.Context, id int64) error
	// UpdateSelected productID 为 nil 时作用于该用户全部行
	UpdateSelected(ctx context.Context, userID int64, productID *int64, selected int) error
	ListViews(ctx context.Context, userID int64, onlySelected bool) ([]*LineView, error)
}
