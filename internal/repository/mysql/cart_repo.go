package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*cart.CartLine, error) {
	var line cart.CartLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) Create(ctx context.Context, line *cart.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *cartRepo) Update(ctx context.Context, line *cart.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *cartRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&cart.CartLine{}, id).Error
}

func (r *cartRepo) UpdateSelected(ctx context.Context, userID int64, productID *int64, selected int) error {
	query := r.db.WithContext(ctx).
		Model(&cart.CartLine{}).
		Where("user_id = ?", userID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	return query.Update("selected", selected).Error
}

func (r *cartRepo) ListViews(ctx context.Context, userID int64, onlySelected bool) ([]*cart.LineView, error) {
	return CartLineViews(r.db.WithContext(ctx), userID, onlySelected)
}

// CartLineViews 联表查询购物车行与商品实时信息。
// 结算流程在自己的事务句柄上复用同一条查询。
func CartLineViews(tx *gorm.DB, userID int64, onlySelected bool) ([]*cart.LineView, error) {
	query := tx.Table("cart_lines").
		Select("cart_lines.id, cart_lines.user_id, cart_lines.product_id, cart_lines.quantity, cart_lines.selected, " +
			"products.name AS product_name, products.image AS product_image, " +
			"products.price AS unit_price, products.status AS product_status, products.stock AS stock").
		Joins("JOIN products ON products.id = cart_lines.product_id").
		Where("cart_lines.user_id = ?", userID)
	if onlySelected {
		query = query.Where("cart_lines.selected = ?", cart.Checked)
	}

	var views []*cart.LineView
	if err := query.Order("cart_lines.id ASC").Scan(&views).Error; err != nil {
		return nil, err
	}
	for _, v := range views {
		v.TotalPrice = v.UnitPrice * v.Quantity
	}
	return views, nil
}
