package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/happy2h/gomall/internal/auth"
	"github.com/happy2h/gomall/internal/datamodels/cart"
	"github.com/happy2h/gomall/internal/datamodels/order"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
)

// ShippingInfo 结算时的收件信息
type ShippingInfo struct {
	ReceiverName    string
	ReceiverMobile  string
	ReceiverAddress string
}

// OrderView 订单视图：订单 + 明细 + 状态展示名
type OrderView struct {
	order.Order
	StatusName string
	Items      []*order.OrderItem
}

// OrderPage 订单分页结果
type OrderPage struct {
	Total    int64
	PageNum  int
	PageSize int
	List     []*OrderView
}

// checkoutCart 结算事务内用到的购物车能力
type checkoutCart interface {
	SelectedLinesTx(tx *gorm.DB, userID int64) ([]*cart.LineView, error)
	PurgeTx(tx *gorm.DB, userID int64, productIDs []int64) error
}

// stockReserver 结算事务内的库存扣减能力
type stockReserver interface {
	Reserve(tx *gorm.DB, productID, quantity int64) error
}

// OrderService 订单服务：结算（购物车勾选 → 订单）与订单状态机。
// 整个结算序列运行在单个数据库事务里，任何一步失败都整体回滚，
// 读者永远看不到半成品订单。
type OrderService struct {
	db        *gorm.DB
	orderRepo order.Repository
	cartSvc   checkoutCart
	ledger    stockReserver
	events    *OrderEventPublisher
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo order.Repository,
	cartSvc checkoutCart,
	ledger stockReserver,
	events *OrderEventPublisher,
) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		cartSvc:   cartSvc,
		ledger:    ledger,
		events:    events,
	}
}

// Create 结算：把当前用户购物车中已勾选的行转为订单，返回订单号。
// 流程：读勾选行 → 只读预校验 → 逐行锁定并扣库存 → 快照订单明细 →
// 生成订单号 → 落库订单与明细 → 清除已消费的购物车行。
func (s *OrderService) Create(ctx context.Context, userID int64, info ShippingInfo) (string, error) {
	var orderNo string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.checkout(tx, userID, info)
		orderNo = no
		return err
	})
	if err != nil {
		checkoutTotal.WithLabelValues(checkoutResult(err)).Inc()
		return "", err
	}

	checkoutTotal.WithLabelValues(resultOK).Inc()
	s.publishEvent(ctx, orderNo, userID, order.StatusNotPaid)
	return orderNo, nil
}

// checkout 结算序列的事务体，tx 由调用方的事务提供。
// 返回错误即要求调用方回滚，此时不得留下任何已落库的副作用。
func (s *OrderService) checkout(tx *gorm.DB, userID int64, info ShippingInfo) (string, error) {
	// 1. 事务内读取勾选行，带出商品实时信息
	views, err := s.cartSvc.SelectedLinesTx(tx, userID)
	if err != nil {
		return "", fmt.Errorf("读取购物车失败: %w", err)
	}
	if len(views) == 0 {
		return "", errs.ErrCartEmpty
	}

	// 2. 只读预校验，任何一行不合法直接失败，不留副作用
	if err := validateLines(views); err != nil {
		return "", err
	}

	// 3. 逐行扣库存。行锁串行化并发结算，中途失败整个事务回滚，
	//    已扣过的行不会留下半截扣减。
	for _, v := range views {
		if err := s.ledger.Reserve(tx, v.ProductID, v.Quantity); err != nil {
			return "", err
		}
	}

	// 4. 商品信息快照为订单明细，此后商品怎么改都与本订单无关
	items := buildOrderItems(views)

	// 5. 订单号 + 订单与明细落库
	orderNo := newOrderCode(userID)
	o := &order.Order{
		OrderNo:         orderNo,
		UserID:          userID,
		TotalPrice:      itemsTotal(items),
		ReceiverName:    info.ReceiverName,
		ReceiverMobile:  info.ReceiverMobile,
		ReceiverAddress: info.ReceiverAddress,
		Status:          order.StatusNotPaid,
		Postage:         0,
		PaymentType:     1,
	}
	if err := s.orderRepo.InsertTx(tx, o, items); err != nil {
		return "", fmt.Errorf("创建订单失败: %w", err)
	}

	// 6. 清除被消费的购物车行
	productIDs := make([]int64, 0, len(views))
	for _, v := range views {
		productIDs = append(productIDs, v.ProductID)
	}
	return orderNo, s.cartSvc.PurgeTx(tx, userID, productIDs)
}

// Detail 订单详情，仅订单归属人或管理员可见
func (s *OrderService) Detail(ctx context.Context, actor auth.Context, orderNo string) (*OrderView, error) {
	o, err := s.orderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNoOrder
		}
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if !actor.CanActOn(o.UserID) {
		return nil, errs.ErrNotYourOrder
	}
	return s.buildView(ctx, o)
}

// ListForUser 用户订单分页列表
func (s *OrderService) ListForUser(ctx context.Context, userID int64, pageNum, pageSize int) (*OrderPage, error) {
	pageNum, pageSize = normalizePage(pageNum, pageSize)
	list, total, err := s.orderRepo.ListByUser(ctx, userID, (pageNum-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}
	return s.buildPage(ctx, list, total, pageNum, pageSize)
}

// ListForAdmin 管理员全量订单分页列表
func (s *OrderService) ListForAdmin(ctx context.Context, pageNum, pageSize int) (*OrderPage, error) {
	pageNum, pageSize = normalizePage(pageNum, pageSize)
	list, total, err := s.orderRepo.ListAll(ctx, (pageNum-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询订单列表失败: %w", err)
	}
	return s.buildPage(ctx, list, total, pageNum, pageSize)
}

// Cancel 取消订单，仅订单归属人可操作
func (s *OrderService) Cancel(ctx context.Context, actor auth.Context, orderNo string) error {
	return s.transition(ctx, "cancel", orderNo, func(o *order.Order, now time.Time) error {
		if o.UserID != actor.UserID {
			return errs.ErrNotYourOrder
		}
		return o.Cancel(now)
	})
}

// Pay 支付回调。持有订单号即可支付，状态守卫保证重复支付被拒绝。
func (s *OrderService) Pay(ctx context.Context, orderNo string) error {
	return s.transition(ctx, "pay", orderNo, func(o *order.Order, now time.Time) error {
		return o.Pay(now)
	})
}

// Deliver 发货，仅管理员可操作
func (s *OrderService) Deliver(ctx context.Context, actor auth.Context, orderNo string) error {
	return s.transition(ctx, "deliver", orderNo, func(o *order.Order, now time.Time) error {
		if !actor.IsAdmin {
			return errs.ErrNeedAdmin
		}
		return o.Deliver(now)
	})
}

// Finish 完结订单，管理员或订单归属人可操作
func (s *OrderService) Finish(ctx context.Context, actor auth.Context, orderNo string) error {
	return s.transition(ctx, "finish", orderNo, func(o *order.Order, now time.Time) error {
		if !actor.CanActOn(o.UserID) {
			return errs.ErrNotYourOrder
		}
		return o.Finish(now)
	})
}

// transition 状态流转公共骨架：事务内先对订单行加锁（同一订单的并发
// 流转串行化），守卫与状态变更全部通过后才落库。
func (s *OrderService) transition(ctx context.Context, op, orderNo string, apply func(*order.Order, time.Time) error) error {
	var updated order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_no = ?", orderNo).
			First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNoOrder
			}
			return fmt.Errorf("查询订单失败: %w", err)
		}
		if err := apply(&updated, time.Now()); err != nil {
			return err
		}
		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("更新订单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		transitionTotal.WithLabelValues(op, checkoutResult(err)).Inc()
		return err
	}

	transitionTotal.WithLabelValues(op, resultOK).Inc()
	s.publishEvent(ctx, updated.OrderNo, updated.UserID, updated.Status)
	return nil
}

func (s *OrderService) publishEvent(ctx context.Context, orderNo string, userID int64, status order.Status) {
	ev := &OrderEvent{
		OrderNo:    orderNo,
		UserID:     userID,
		Status:     int(status),
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		mqPublishErrors.Inc()
		zap.L().Warn("publish order event failed",
			zap.String("order_no", orderNo),
			zap.Error(err))
	}
}

func (s *OrderService) buildView(ctx context.Context, o *order.Order) (*OrderView, error) {
	items, err := s.orderRepo.ItemsByOrderNo(ctx, o.OrderNo)
	if err != nil {
		return nil, fmt.Errorf("查询订单明细失败: %w", err)
	}
	name, err := o.Status.Name()
	if err != nil {
		return nil, err
	}
	return &OrderView{Order: *o, StatusName: name, Items: items}, nil
}

func (s *OrderService) buildPage(ctx context.Context, list []*order.Order, total int64, pageNum, pageSize int) (*OrderPage, error) {
	views := make([]*OrderView, 0, len(list))
	for _, o := range list {
		v, err := s.buildView(ctx, o)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return &OrderPage{Total: total, PageNum: pageNum, PageSize: pageSize, List: views}, nil
}

// validateLines 结算前的只读校验：每一行的商品都必须在售且库存充足
func validateLines(views []*cart.LineView) error {
	for _, v := range views {
		p := &product.Product{Status: v.ProductStatus, Stock: v.Stock}
		if err := CheckSaleable(p, v.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// buildOrderItems 把勾选行快照为订单明细（价格、名称、图片取下单瞬间的值）
func buildOrderItems(views []*cart.LineView) []*order.OrderItem {
	items := make([]*order.OrderItem, 0, len(views))
	for _, v := range views {
		items = append(items, &order.OrderItem{
			ProductID:    v.ProductID,
			ProductName:  v.ProductName,
			ProductImage: v.ProductImage,
			UnitPrice:    v.UnitPrice,
			Quantity:     v.Quantity,
			TotalPrice:   v.UnitPrice * v.Quantity,
		})
	}
	return items
}

// itemsTotal 订单总价 = 明细小计之和，只在快照时刻计算一次
func itemsTotal(items []*order.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.TotalPrice
	}
	return total
}

// newOrderCode 订单号 = ULID + 用户标识后缀。
// ULID 自带毫秒时间戳与单调随机段，并发结算也不会碰撞；整体 URL 安全，
// 对调用方不透明。
func newOrderCode(userID int64) string {
	return fmt.Sprintf("%s%03d", ulid.Make().String(), userID%1000)
}

func normalizePage(pageNum, pageSize int) (int, int) {
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return pageNum, pageSize
}

// checkoutResult 把错误归类到指标标签
func checkoutResult(err error) string {
	var be *errs.Error
	if errors.As(err, &be) {
		return resultReject
	}
	return resultError
}
