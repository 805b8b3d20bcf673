package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allErrors() []*Error {
	return []*Error{
		ErrNameDuplicated, ErrWrongPassword, ErrNeedLogin, ErrUpdateFailed,
		ErrNeedAdmin, ErrRequestParam, ErrDeleteFailed, ErrNotSale,
		ErrNotEnough, ErrCartEmpty, ErrNoSuchStatus, ErrNoOrder,
		ErrNotYourOrder, ErrWrongOrderStatus, ErrConflict, ErrSystem,
	}
}

func TestErrorIsByIdentity(t *testing.T) {
	// 单例指针：同一个值 Is 成立，同码的新实例不成立
	require.ErrorIs(t, ErrNotEnough, ErrNotEnough)
	assert.NotErrorIs(t, New(10015, "商品库存不足"), ErrNotEnough)
	assert.NotErrorIs(t, ErrNotEnough, ErrNotSale)
}

func TestErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("结算失败: %w", ErrCartEmpty)

	require.ErrorIs(t, wrapped, ErrCartEmpty)

	var be *Error
	require.True(t, errors.As(wrapped, &be))
	assert.Equal(t, 10016, be.Code)
	assert.Equal(t, "购物车已勾选的商品为空", be.Error())
}

func TestErrorCodesUnique(t *testing.T) {
	seen := make(map[int]string)
	for _, e := range allErrors() {
		prev, dup := seen[e.Code]
		require.Falsef(t, dup, "错误码 %d 重复: %q 与 %q", e.Code, prev, e.Msg)
		seen[e.Code] = e.Msg
		assert.NotEmpty(t, e.Msg)
	}
}
