package service

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2h/gomall/internal/datamodels/cart"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
)

func sampleViews() []*cart.LineView {
	return []*cart.LineView{
		{
			ProductID:     1,
			Quantity:      2,
			ProductName:   "铸铁锅",
			ProductImage:  "/static/images/pot.jpg",
			UnitPrice:     500,
			ProductStatus: product.StatusOnSale,
			Stock:         10,
		},
		{
			ProductID:     2,
			Quantity:      1,
			ProductName:   "木铲",
			ProductImage:  "/static/images/spatula.jpg",
			UnitPrice:     1200,
			ProductStatus: product.StatusOnSale,
			Stock:         3,
		},
	}
}

func TestBuildOrderItemsSnapshotAndTotal(t *testing.T) {
	views := sampleViews()
	items := buildOrderItems(views)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1000), items[0].TotalPrice)
	assert.Equal(t, int64(1200), items[1].TotalPrice)
	// 不变式：订单总价 == 明细小计之和
	assert.Equal(t, int64(2200), itemsTotal(items))

	// 明细是快照，后续修改视图（模拟商品改价）不影响已生成的明细
	views[0].UnitPrice = 9999
	views[0].ProductName = "改名后的锅"
	assert.Equal(t, int64(500), items[0].UnitPrice)
	assert.Equal(t, "铸铁锅", items[0].ProductName)
}

func TestValidateLines(t *testing.T) {
	views := sampleViews()
	require.NoError(t, validateLines(views))

	offSale := sampleViews()
	offSale[1].ProductStatus = product.StatusNotSale
	require.ErrorIs(t, validateLines(offSale), errs.ErrNotSale)

	short := sampleViews()
	short[0].Quantity = short[0].Stock + 1
	require.ErrorIs(t, validateLines(short), errs.ErrNotEnough)
}

func TestCheckSaleable(t *testing.T) {
	p := &product.Product{Status: product.StatusOnSale, Stock: 5}
	require.NoError(t, CheckSaleable(p, 5))
	require.ErrorIs(t, CheckSaleable(p, 6), errs.ErrNotEnough)
	require.ErrorIs(t, CheckSaleable(nil, 1), errs.ErrNotSale)

	p.Status = product.StatusNotSale
	require.ErrorIs(t, CheckSaleable(p, 1), errs.ErrNotSale)
}

func TestNewOrderCodeFormat(t *testing.T) {
	code := newOrderCode(1234567)
	// ULID 26 位 + 3 位用户后缀，整体 URL 安全
	assert.Len(t, code, 29)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{26}567$`), code)
}

func TestNewOrderCodeUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	var (
		mu    sync.Mutex
		seen  = make(map[string]struct{}, n*4)
		wg    sync.WaitGroup
		users = []int64{1, 2, 3, 4}
	)
	for _, uid := range users {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(uid int64) {
				defer wg.Done()
				code := newOrderCode(uid)
				mu.Lock()
				seen[code] = struct{}{}
				mu.Unlock()
			}(uid)
		}
	}
	wg.Wait()
	assert.Len(t, seen, n*len(users))
}

func TestNormalizePage(t *testing.T) {
	num, size := normalizePage(0, 0)
	assert.Equal(t, 1, num)
	assert.Equal(t, 10, size)

	num, size = normalizePage(3, 20)
	assert.Equal(t, 3, num)
	assert.Equal(t, 20, size)

	_, size = normalizePage(1, 1000)
	assert.Equal(t, 10, size)
}

func TestCheckoutResultLabels(t *testing.T) {
	assert.Equal(t, resultReject, checkoutResult(errs.ErrNotEnough))
	assert.Equal(t, resultReject, checkoutResult(errs.ErrCartEmpty))
	assert.Equal(t, resultError, checkoutResult(assert.AnError))
}
