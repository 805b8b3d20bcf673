package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
)

// StockLedger 库存台账：商品库存的唯一扣减入口。
// Reserve 必须运行在结算事务内部，行锁保证并发结算同一商品时串行化，
// 库存永远不会被扣成负数。
type StockLedger struct{}

// NewStockLedger 创建库存台账
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// Reserve 在事务内锁定商品行，校验在售状态与库存后扣减。
// 校验失败时不产生任何写入，由外层事务整体回滚兜底。
func (l *StockLedger) Reserve(tx *gorm.DB, productID, quantity int64) error {
	var p product.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotSale
		}
		return fmt.Errorf("锁定商品失败: %w", err)
	}

	if err := CheckSaleable(&p, quantity); err != nil {
		return err
	}

	p.Stock -= quantity
	if err := tx.Save(&p).Error; err != nil {
		return fmt.Errorf("扣减库存失败: %w", err)
	}
	return nil
}

// CheckSaleable 只读校验：商品必须在售且库存充足
func CheckSaleable(p *product.Product, quantity int64) error {
	if p == nil || p.Status != product.StatusOnSale {
		return errs.ErrNotSale
	}
	if p.Stock < quantity {
		return errs.ErrNotEnough
	}
	return nil
}
