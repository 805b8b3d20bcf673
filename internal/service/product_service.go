package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/category"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/errs"
)

// 前台列表允许的排序方式，白名单之外一律回落默认排序
var allowedOrderBy = map[string]string{
	"price asc":  "price ASC",
	"price desc": "price DESC",
}

// ProductListQuery 前台商品列表查询参数
type ProductListQuery struct {
	Keyword    string
	CategoryID int64
	OrderBy    string
	PageNum    int
	PageSize   int
}

// ProductPage 商品分页结果
type ProductPage struct {
	Total    int64
	PageNum  int
	PageSize int
	List     []*product.Product
}

// ProductService 商品服务。注意：本服务不修改库存，库存只属于 StockLedger。
type ProductService struct {
	repo         product.Repository
	categoryRepo category.Repository
}

// NewProductService 创建商品服务
func NewProductService(repo product.Repository, categoryRepo category.Repository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// GetByID 商品详情
func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotSale
		}
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return p, nil
}

// ListForCustomer 前台列表：只看在售商品，支持关键字、分类（连同子分类）、
// 价格排序白名单
func (s *ProductService) ListForCustomer(ctx context.Context, q ProductListQuery) (*ProductPage, error) {
	pageNum, pageSize := normalizePage(q.PageNum, q.PageSize)

	var categoryIDs []int64
	if q.CategoryID > 0 {
		all, err := s.categoryRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("查询分类失败: %w", err)
		}
		categoryIDs = CollectCategoryIDs(all, q.CategoryID)
	}

	list, total, err := s.repo.Search(ctx, product.Query{
		Keyword:     q.Keyword,
		CategoryIDs: categoryIDs,
		OnSaleOnly:  true,
		OrderBy:     NormalizeOrderBy(q.OrderBy),
		Offset:      (pageNum - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return &ProductPage{Total: total, PageNum: pageNum, PageSize: pageSize, List: list}, nil
}

// ListForAdmin 后台列表：全部商品
func (s *ProductService) ListForAdmin(ctx context.Context, pageNum, pageSize int) (*ProductPage, error) {
	pageNum, pageSize = normalizePage(pageNum, pageSize)
	list, total, err := s.repo.Search(ctx, product.Query{
		Offset: (pageNum - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return &ProductPage{Total: total, PageNum: pageNum, PageSize: pageSize, List: list}, nil
}

// Create 新增商品，同名商品拒绝
func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	list, _, err := s.repo.Search(ctx, product.Query{Keyword: p.Name, Limit: 10})
	if err != nil {
		return fmt.Errorf("查询商品失败: %w", err)
	}
	for _, existing := range list {
		if existing.Name == p.Name {
			return errs.ErrNameDuplicated
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("创建商品失败: %w", err)
	}
	return nil
}

// Update 更新商品（不含库存，库存只走结算扣减）
func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("更新商品失败: %w", err)
	}
	return nil
}

// Delete 删除商品。历史订单依赖的是明细快照，不受删除影响。
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除商品失败: %w", err)
	}
	return nil
}

// BatchUpdateStatus 批量上下架
func (s *ProductService) BatchUpdateStatus(ctx context.Context, ids []int64, status int) error {
	if len(ids) == 0 {
		return errs.ErrRequestParam
	}
	if status != product.StatusNotSale && status != product.StatusOnSale {
		return errs.ErrRequestParam
	}
	if err := s.repo.UpdateStatusBatch(ctx, ids, status); err != nil {
		return fmt.Errorf("批量更新商品状态失败: %w", err)
	}
	return nil
}

// NormalizeOrderBy 排序白名单，未命中返回空串（由仓储层回落默认排序）
func NormalizeOrderBy(orderBy string) string {
	return allowedOrderBy[orderBy]
}
