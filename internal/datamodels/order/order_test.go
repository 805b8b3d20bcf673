package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2h/gomall/internal/errs"
)

func newNotPaid() *Order {
	return &Order{OrderNo: "01J5TESTORDER001", UserID: 7, Status: StatusNotPaid, TotalPrice: 1000}
}

func TestForwardChain(t *testing.T) {
	now := time.Now()
	o := newNotPaid()

	require.NoError(t, o.Pay(now))
	assert.Equal(t, StatusPaid, o.Status)
	require.NotNil(t, o.PayTime)
	assert.Equal(t, now, *o.PayTime)

	require.NoError(t, o.Deliver(now.Add(time.Hour)))
	assert.Equal(t, StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveryTime)

	require.NoError(t, o.Finish(now.Add(2*time.Hour)))
	assert.Equal(t, StatusFinished, o.Status)
	require.NotNil(t, o.EndTime)
	assert.Equal(t, now.Add(2*time.Hour), *o.EndTime)
}

func TestCancelOnlyFromNotPaid(t *testing.T) {
	now := time.Now()
	o := newNotPaid()
	require.NoError(t, o.Cancel(now))
	assert.Equal(t, StatusCanceled, o.Status)
	require.NotNil(t, o.EndTime)

	// 取消后无法再支付
	err := o.Pay(now)
	require.ErrorIs(t, err, errs.ErrWrongOrderStatus)
	assert.Equal(t, StatusCanceled, o.Status)
}

func TestIllegalTransitionsDoNotMutate(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		from Status
		op   func(*Order) error
	}{
		{"pay from finished", StatusFinished, func(o *Order) error { return o.Pay(now) }},
		{"pay from paid", StatusPaid, func(o *Order) error { return o.Pay(now) }},
		{"deliver from not paid", StatusNotPaid, func(o *Order) error { return o.Deliver(now) }},
		{"deliver from delivered", StatusDelivered, func(o *Order) error { return o.Deliver(now) }},
		{"finish from paid", StatusPaid, func(o *Order) error { return o.Finish(now) }},
		{"cancel from paid", StatusPaid, func(o *Order) error { return o.Cancel(now) }},
		{"cancel from canceled", StatusCanceled, func(o *Order) error { return o.Cancel(now) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newNotPaid()
			o.Status = tc.from
			err := tc.op(o)
			require.ErrorIs(t, err, errs.ErrWrongOrderStatus)
			// 守卫失败时不产生任何副作用
			assert.Equal(t, tc.from, o.Status)
			assert.Nil(t, o.PayTime)
			assert.Nil(t, o.DeliveryTime)
			assert.Nil(t, o.EndTime)
		})
	}
}

func TestTimestampsSetExactlyOnce(t *testing.T) {
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := newNotPaid()
	require.NoError(t, o.Pay(first))

	// 重复支付被拒绝，payTime 保持首次值
	err := o.Pay(first.Add(time.Hour))
	require.ErrorIs(t, err, errs.ErrWrongOrderStatus)
	assert.Equal(t, first, *o.PayTime)
}

func TestStatusName(t *testing.T) {
	for s, want := range map[Status]string{
		StatusCanceled:  "用户已取消",
		StatusNotPaid:   "未付款",
		StatusPaid:      "已付款",
		StatusDelivered: "已发货",
		StatusFinished:  "交易完成",
	} {
		name, err := s.Name()
		require.NoError(t, err)
		assert.Equal(t, want, name)
	}

	_, err := Status(99).Name()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNoSuchStatus))
}
