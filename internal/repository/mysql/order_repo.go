package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// InsertTx 订单与明细在同一事务内落库，明细行挂到订单号上
func (r *orderRepo) InsertTx(tx *gorm.DB, o *order.Order, items []*order.OrderItem) error {
	if err := tx.Create(o).Error; err != nil {
		return err
	}
	for _, item := range items {
		item.OrderNo = o.OrderNo
	}
	return tx.Create(&items).Error
}

func (r *orderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ItemsByOrderNo(ctx context.Context, orderNo string) ([]*order.OrderItem, error) {
	var items []*order.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("user_id = ?", userID)
	return pageOrders(query, offset, limit)
}

func (r *orderRepo) ListAll(ctx context.Context, offset, limit int) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	return pageOrders(query, offset, limit)
}

func pageOrders(query *gorm.DB, offset, limit int) ([]*order.Order, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*order.Order
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
