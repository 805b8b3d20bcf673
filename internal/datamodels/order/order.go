package order

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/errs"
)

// Status 订单状态，状态码与客户端约定保持稳定
type Status int

const (
	StatusCanceled  Status = 0  // 用户已取消，终态
	StatusNotPaid   Status = 10 // 创建后的初始状态
	StatusPaid      Status = 20
	StatusDelivered Status = 30
	StatusFinished  Status = 40 // 终态
)

var statusNames = map[Status]string{
	StatusCanceled:  "用户已取消",
	StatusNotPaid:   "未付款",
	StatusPaid:      "已付款",
	StatusDelivered: "已发货",
	StatusFinished:  "交易完成",
}

// Name 状态码对应的展示名，未知状态码返回 errs.ErrNoSuchStatus
func (s Status) Name() (string, error) {
	name, ok := statusNames[s]
	if !ok {
		return "", errs.ErrNoSuchStatus
	}
	return name, nil
}

// Order 订单。orderNo、userID、totalPrice、收件信息在创建后不再变化，
// 状态只沿 NOT_PAID → PAID → DELIVERED → FINISHED 前进，
// NOT_PAID 可以转入 CANCELED 终态。
type Order struct {
	ID              int64  `gorm:"primaryKey"`
	OrderNo         string `gorm:"size:64;uniqueIndex;not null"`
	UserID          int64  `gorm:"index;not null"`
	TotalPrice      int64  `gorm:"not null"` // 创建时按明细快照求和，之后不再重算
	ReceiverName    string `gorm:"size:32;not null"`
	ReceiverMobile  string `gorm:"size:32;not null"`
	ReceiverAddress string `gorm:"size:256;not null"`
	Status          Status `gorm:"index;not null"`
	Postage         int64  `gorm:"not null"`
	PaymentType     int    `gorm:"not null"` // 1 在线支付
	PayTime         *time.Time
	DeliveryTime    *time.Time
	EndTime         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem 订单明细，下单瞬间对商品信息的不可变快照，
// 后续商品改价、改名、下架都不影响历史订单。
type OrderItem struct {
	ID           int64  `gorm:"primaryKey"`
	OrderNo      string `gorm:"size:64;index;not null"`
	ProductID    int64  `gorm:"not null"`
	ProductName  string `gorm:"size:128;not null"`
	ProductImage string `gorm:"size:256"`
	UnitPrice    int64  `gorm:"not null"`
	Quantity     int64  `gorm:"not null"`
	TotalPrice   int64  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Cancel 取消订单：仅允许从未付款状态进入，取消即完结
func (o *Order) Cancel(now time.Time) error {
	if o.Status != StatusNotPaid {
		return errs.ErrWrongOrderStatus
	}
	o.Status = StatusCanceled
	o.EndTime = &now
	return nil
}

// Pay 支付：仅允许从未付款状态进入
func (o *Order) Pay(now time.Time) error {
	if o.Status != StatusNotPaid {
		return errs.ErrWrongOrderStatus
	}
	o.Status = StatusPaid
	o.PayTime = &now
	return nil
}

// Deliver 发货：仅允许从已付款状态进入
func (o *Order) Deliver(now time.Time) error {
	if o.Status != StatusPaid {
		return errs.ErrWrongOrderStatus
	}
	o.Status = StatusDelivered
	o.DeliveryTime = &now
	return nil
}

// Finish 完结：仅允许从已发货状态进入
func (o *Order) Finish(now time.Time) error {
	if o.Status != StatusDelivered {
		return errs.ErrWrongOrderStatus
	}
	o.Status = StatusFinished
	o.EndTime = &now
	return nil
}

// Repository 订单仓储接口，创建时订单与明细必须同事务落库
type Repository interface {
	InsertTx(tx *gorm.DB, o *Order, items []*OrderItem) error
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	ItemsByOrderNo(ctx context.Context, orderNo string) ([]*OrderItem, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*Order, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*Order, int64, error)
}
