package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/cart"
	"github.com/happy2h/gomall/internal/datamodels/order"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
)

type fakeCheckoutCart struct {
	views    []*cart.LineView
	purged   []int64
	purgeErr error
}

func (f *fakeCheckoutCart) SelectedLinesTx(tx *gorm.DB, userID int64) ([]*cart.LineView, error) {
	return f.views, nil
}

func (f *fakeCheckoutCart) PurgeTx(tx *gorm.DB, userID int64, productIDs []int64) error {
	f.purged = productIDs
	return f.purgeErr
}

type fakeReserver struct {
	failOn   int64 // 扣到这个商品时失败，0 表示不失败
	reserved map[int64]int64
}

func (f *fakeReserver) Reserve(tx *gorm.DB, productID, quantity int64) error {
	if f.failOn != 0 && productID == f.failOn {
		return errs.ErrNotEnough
	}
	if f.reserved == nil {
		f.reserved = make(map[int64]int64)
	}
	f.reserved[productID] = quantity
	return nil
}

type fakeOrderRepo struct {
	inserted  *order.Order
	items     []*order.OrderItem
	insertErr error
}

func (f *fakeOrderRepo) InsertTx(tx *gorm.DB, o *order.Order, items []*order.OrderItem) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, item := range items {
		item.OrderNo = o.OrderNo
	}
	f.inserted = o
	f.items = items
	return nil
}

func (f *fakeOrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) ItemsByOrderNo(ctx context.Context, orderNo string) ([]*order.OrderItem, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, offset, limit int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func saleableLine(productID, quantity, unitPrice int64) *cart.LineView {
	return &cart.LineView{
		UserID:        7,
		ProductID:     productID,
		Quantity:      quantity,
		Selected:      cart.Checked,
		ProductName:   "商品",
		ProductImage:  "/images/p.png",
		UnitPrice:     unitPrice,
		ProductStatus: product.StatusOnSale,
		Stock:         1000,
	}
}

func newCheckoutService(carts *fakeCheckoutCart, ledger *fakeReserver, repo *fakeOrderRepo) *OrderService {
	return NewOrderService(nil, repo, carts, ledger, nil)
}

func TestCheckoutEmptySelection(t *testing.T) {
	carts := &fakeCheckoutCart{}
	ledger := &fakeReserver{}
	repo := &fakeOrderRepo{}
	s := newCheckoutService(carts, ledger, repo)

	_, err := s.checkout(nil, 7, ShippingInfo{ReceiverName: "张三"})

	require.ErrorIs(t, err, errs.ErrCartEmpty)
	assert.Empty(t, ledger.reserved, "空购物车不应触发扣库存")
	assert.Nil(t, repo.inserted)
	assert.Nil(t, carts.purged)
}

func TestCheckoutRejectsBeforeAnyReserve(t *testing.T) {
	// 第二行不可售：预校验整体拒绝，第一行也不应被扣
	bad := saleableLine(2, 1, 500)
	bad.ProductStatus = product.StatusNotSale
	carts := &fakeCheckoutCart{views: []*cart.LineView{saleableLine(1, 2, 100), bad}}
	ledger := &fakeReserver{}
	repo := &fakeOrderRepo{}
	s := newCheckoutService(carts, ledger, repo)

	_, err := s.checkout(nil, 7, ShippingInfo{})

	require.ErrorIs(t, err, errs.ErrNotSale)
	assert.Empty(t, ledger.reserved)
	assert.Nil(t, repo.inserted)
	assert.Nil(t, carts.purged)
}

func TestCheckoutReserveFailureAbortsSequence(t *testing.T) {
	// 第二行库存扣减失败：错误上抛触发整个事务回滚，
	// 订单不落库，购物车不清理
	carts := &fakeCheckoutCart{views: []*cart.LineView{
		saleableLine(1, 2, 100),
		saleableLine(2, 3, 500),
	}}
	ledger := &fakeReserver{failOn: 2}
	repo := &fakeOrderRepo{}
	s := newCheckoutService(carts, ledger, repo)

	_, err := s.checkout(nil, 7, ShippingInfo{})

	require.ErrorIs(t, err, errs.ErrNotEnough)
	assert.Nil(t, repo.inserted, "扣库存失败后不应再写订单")
	assert.Nil(t, carts.purged, "扣库存失败后不应清购物车")
}

func TestCheckoutInsertFailureSkipsPurge(t *testing.T) {
	carts := &fakeCheckoutCart{views: []*cart.LineView{saleableLine(1, 1, 100)}}
	ledger := &fakeReserver{}
	repo := &fakeOrderRepo{insertErr: errors.New("duplicate key")}
	s := newCheckoutService(carts, ledger, repo)

	_, err := s.checkout(nil, 7, ShippingInfo{})

	require.Error(t, err)
	assert.Nil(t, carts.purged)
}

func TestCheckoutSuccess(t *testing.T) {
	carts := &fakeCheckoutCart{views: []*cart.LineView{
		saleableLine(1, 2, 100),
		saleableLine(2, 3, 500),
	}}
	ledger := &fakeReserver{}
	repo := &fakeOrderRepo{}
	s := newCheckoutService(carts, ledger, repo)

	info := ShippingInfo{ReceiverName: "张三", ReceiverMobile: "13800000000", ReceiverAddress: "上海市"}
	orderNo, err := s.checkout(nil, 7, info)

	require.NoError(t, err)
	require.NotEmpty(t, orderNo)

	// 每行按购物车数量各扣一次库存
	assert.Equal(t, map[int64]int64{1: 2, 2: 3}, ledger.reserved)

	// 订单落库：初始状态未付款，总价 = 明细小计之和，收件信息原样带入
	require.NotNil(t, repo.inserted)
	assert.Equal(t, orderNo, repo.inserted.OrderNo)
	assert.Equal(t, order.StatusNotPaid, repo.inserted.Status)
	assert.Equal(t, int64(2*100+3*500), repo.inserted.TotalPrice)
	assert.Equal(t, info.ReceiverName, repo.inserted.ReceiverName)
	assert.Equal(t, info.ReceiverAddress, repo.inserted.ReceiverAddress)

	// 明细挂在订单号上
	require.Len(t, repo.items, 2)
	for _, item := range repo.items {
		assert.Equal(t, orderNo, item.OrderNo)
	}

	// 只清理被消费的那些行
	assert.Equal(t, []int64{1, 2}, carts.purged)
}
