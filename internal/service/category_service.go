package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/happy2h/gomall/internal/datamodels/category"
	"github.com/happy2h/gomall/internal/errs"
)

const categoryTreeCacheKey = "mall:category:tree"

// CategoryNode 分类树节点
type CategoryNode struct {
	category.Category
	Children []*CategoryNode
}

// CategoryService 分类服务。前台分类树在 Redis 缓存，任何写操作使缓存失效。
type CategoryService struct {
	repo     category.Repository
	redis    radix.Client
	cacheTTL time.Duration
}

// NewCategoryService 创建分类服务，redis 为 nil 时不走缓存
func NewCategoryService(repo category.Repository, redis radix.Client, cacheTTL time.Duration) *CategoryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &CategoryService{repo: repo, redis: redis, cacheTTL: cacheTTL}
}

// Add 新增分类，同名分类拒绝
func (s *CategoryService) Add(ctx context.Context, c *category.Category) error {
	if _, err := s.repo.GetByName(ctx, c.Name); err == nil {
		return errs.ErrNameDuplicated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询分类失败: %w", err)
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("创建分类失败: %w", err)
	}
	s.invalidateCache()
	return nil
}

// Update 更新分类
func (s *CategoryService) Update(ctx context.Context, c *category.Category) error {
	existing, err := s.repo.GetByName(ctx, c.Name)
	if err == nil && existing.ID != c.ID {
		return errs.ErrNameDuplicated
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询分类失败: %w", err)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("更新分类失败: %w", err)
	}
	s.invalidateCache()
	return nil
}

// Delete 删除分类
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除分类失败: %w", err)
	}
	s.invalidateCache()
	return nil
}

// ListForAdmin 后台分页列表
func (s *CategoryService) ListForAdmin(ctx context.Context, pageNum, pageSize int) ([]*category.Category, int64, error) {
	pageNum, pageSize = normalizePage(pageNum, pageSize)
	return s.repo.ListPaged(ctx, (pageNum-1)*pageSize, pageSize)
}

// ListForCustomer 前台分类树，优先读缓存
func (s *CategoryService) ListForCustomer(ctx context.Context) ([]*CategoryNode, error) {
	if tree, ok := s.cachedTree(); ok {
		return tree, nil
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	tree := BuildCategoryTree(all)
	s.cacheTree(tree)
	return tree, nil
}

func (s *CategoryService) cachedTree() ([]*CategoryNode, bool) {
	if s.redis == nil {
		return nil, false
	}
	var raw string
	if err := s.redis.Do(radix.Cmd(&raw, "GET", categoryTreeCacheKey)); err != nil {
		cacheErrors.Inc()
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var tree []*CategoryNode
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		_ = s.redis.Do(radix.Cmd(nil, "DEL", categoryTreeCacheKey))
		return nil, false
	}
	return tree, true
}

func (s *CategoryService) cacheTree(tree []*CategoryNode) {
	if s.redis == nil {
		return
	}
	body, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", categoryTreeCacheKey,
		int64(s.cacheTTL/time.Second), body)); err != nil {
		cacheErrors.Inc()
	}
}

func (s *CategoryService) invalidateCache() {
	if s.redis == nil {
		return
	}
	if err := s.redis.Do(radix.Cmd(nil, "DEL", categoryTreeCacheKey)); err != nil {
		cacheErrors.Inc()
		zap.L().Warn("invalidate category cache failed", zap.Error(err))
	}
}

// BuildCategoryTree 用显式队列在 parent_id 邻接表上逐层展开分类树，
// 不走递归，且对配置错误形成的环显式防护：每个节点只挂一次，
// 成环的 parent_id 链不会导致死循环或无限加深。
func BuildCategoryTree(all []*category.Category) []*CategoryNode {
	children := make(map[int64][]*category.Category, len(all))
	for _, c := range all {
		children[c.ParentID] = append(children[c.ParentID], c)
	}
	for _, list := range children {
		sortCategories(list)
	}

	var roots []*CategoryNode
	visited := make(map[int64]struct{}, len(all))

	var queue []*CategoryNode
	for _, c := range children[0] {
		node := &CategoryNode{Category: *c}
		visited[c.ID] = struct{}{}
		roots = append(roots, node)
		queue = append(queue, node)
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, c := range children[node.ID] {
			if _, seen := visited[c.ID]; seen {
				// parent_id 成环（或重复挂载），跳过防止死循环
				continue
			}
			visited[c.ID] = struct{}{}
			child := &CategoryNode{Category: *c}
			node.Children = append(node.Children, child)
			queue = append(queue, child)
		}
	}
	return roots
}

// CollectCategoryIDs 收集以 rootID 为根的子树上全部分类 ID（含根），
// 用于"按分类搜索商品时连同子分类一起查"。同样用队列防环。
func CollectCategoryIDs(all []*category.Category, rootID int64) []int64 {
	children := make(map[int64][]*category.Category, len(all))
	for _, c := range all {
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	ids := []int64{rootID}
	visited := map[int64]struct{}{rootID: {}}
	queue := []int64{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range children[id] {
			if _, seen := visited[c.ID]; seen {
				continue
			}
			visited[c.ID] = struct{}{}
			ids = append(ids, c.ID)
			queue = append(queue, c.ID)
		}
	}
	return ids
}

func sortCategories(list []*category.Category) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].OrderNum != list[j].OrderNum {
			return list[i].OrderNum < list[j].OrderNum
		}
		return list[i].ID < list[j].ID
	})
}
