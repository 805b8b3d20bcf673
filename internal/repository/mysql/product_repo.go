package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Search(ctx context.Context, q product.Query) ([]*product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&product.Product{})
	if q.OnSaleOnly {
		query = query.Where("status = ?", product.StatusOnSale)
	}
	if q.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+q.Keyword+"%")
	}
	if len(q.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", q.CategoryIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "id DESC"
	}
	var list []*product.Product
	if err := query.Order(orderBy).Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&product.Product{}, id).Error
}

func (r *productRepo) UpdateStatusBatch(ctx context.Context, ids []int64, status int) error {
	return r.db.WithContext(ctx).
		Model(&product.Product{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
