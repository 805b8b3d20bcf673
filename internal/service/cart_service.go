package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/cart"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
	"github.com/happy2h/gomall/internal/repository/mysql"
)

// CartService 购物车服务。行归属用户本人，只有购物车操作会修改，
// 结算成功后已勾选的行被清除。
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Add 加入购物车。同一商品已存在时数量累加，并强制置为勾选。
func (s *CartService) Add(ctx context.Context, userID, productID, count int64) ([]*cart.LineView, error) {
	if count <= 0 {
		return nil, errs.ErrRequestParam
	}
	if err := s.validProduct(ctx, productID, count); err != nil {
		return nil, err
	}

	line, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = &cart.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  count,
			Selected:  cart.Checked,
		}
		if err := s.cartRepo.Create(ctx, line); err != nil {
			return nil, fmt.Errorf("新增购物车行失败: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("查询购物车失败: %w", err)
	default:
		line.Quantity += count
		line.Selected = cart.Checked
		if err := s.cartRepo.Update(ctx, line); err != nil {
			return nil, fmt.Errorf("更新购物车行失败: %w", err)
		}
	}
	return s.List(ctx, userID)
}

// Update 修改某行数量
func (s *CartService) Update(ctx context.Context, userID, productID, count int64) ([]*cart.LineView, error) {
	if count <= 0 {
		return nil, errs.ErrRequestParam
	}
	if err := s.validProduct(ctx, productID, count); err != nil {
		return nil, err
	}

	line, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUpdateFailed
		}
		return nil, fmt.Errorf("查询购物车失败: %w", err)
	}
	line.Quantity = count
	line.Selected = cart.Checked
	if err := s.cartRepo.Update(ctx, line); err != nil {
		return nil, fmt.Errorf("更新购物车行失败: %w", err)
	}
	return s.List(ctx, userID)
}

// Delete 删除某行
func (s *CartService) Delete(ctx context.Context, userID, productID int64) ([]*cart.LineView, error) {
	line, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrDeleteFailed
		}
		return nil, fmt.Errorf("查询购物车失败: %w", err)
	}
	if err := s.cartRepo.Delete(ctx, line.ID); err != nil {
		return nil, fmt.Errorf("删除购物车行失败: %w", err)
	}
	return s.List(ctx, userID)
}

// SelectOrNot 勾选/取消勾选某行
func (s *CartService) SelectOrNot(ctx context.Context, userID, productID int64, selected int) ([]*cart.LineView, error) {
	if _, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUpdateFailed
		}
		return nil, fmt.Errorf("查询购物车失败: %w", err)
	}
	if err := s.cartRepo.UpdateSelected(ctx, userID, &productID, selected); err != nil {
		return nil, fmt.Errorf("更新勾选状态失败: %w", err)
	}
	return s.List(ctx, userID)
}

// SelectAll 全选/全不选
func (s *CartService) SelectAll(ctx context.Context, userID int64, selected int) ([]*cart.LineView, error) {
	if err := s.cartRepo.UpdateSelected(ctx, userID, nil, selected); err != nil {
		return nil, fmt.Errorf("更新勾选状态失败: %w", err)
	}
	return s.List(ctx, userID)
}

// List 购物车列表（带商品实时信息与行小计）
func (s *CartService) List(ctx context.Context, userID int64) ([]*cart.LineView, error) {
	return s.cartRepo.ListViews(ctx, userID, false)
}

// SelectedLinesTx 在结算事务内读取已勾选的行
func (s *CartService) SelectedLinesTx(tx *gorm.DB, userID int64) ([]*cart.LineView, error) {
	return mysql.CartLineViews(tx, userID, true)
}

// PurgeTx 在结算事务内删除被消费的行，且只删除给定的行
func (s *CartService) PurgeTx(tx *gorm.DB, userID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return tx.Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&cart.CartLine{}).Error
}

// validProduct 校验商品存在、在售且库存够本次数量
func (s *CartService) validProduct(ctx context.Context, productID, count int64) error {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotSale
		}
		return fmt.Errorf("查询商品失败: %w", err)
	}
	return CheckSaleable(p, count)
}
