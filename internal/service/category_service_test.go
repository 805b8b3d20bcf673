package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2h/gomall/internal/datamodels/category"
)

func cat(id, parentID int64, name string, orderNum int) *category.Category {
	return &category.Category{ID: id, ParentID: parentID, Name: name, OrderNum: orderNum}
}

func TestBuildCategoryTree(t *testing.T) {
	all := []*category.Category{
		cat(1, 0, "食品", 2),
		cat(2, 0, "家居", 1),
		cat(3, 1, "零食", 1),
		cat(4, 1, "生鲜", 2),
		cat(5, 3, "坚果", 1),
	}

	tree := BuildCategoryTree(all)
	require.Len(t, tree, 2)
	// 同级按 order_num 排序
	assert.Equal(t, "家居", tree[0].Name)
	assert.Equal(t, "食品", tree[1].Name)

	food := tree[1]
	require.Len(t, food.Children, 2)
	assert.Equal(t, "零食", food.Children[0].Name)
	require.Len(t, food.Children[0].Children, 1)
	assert.Equal(t, "坚果", food.Children[0].Children[0].Name)
}

func TestBuildCategoryTreeCycleGuard(t *testing.T) {
	// 3 → 4 → 3 形成环，1 仍是正常根
	all := []*category.Category{
		cat(1, 0, "正常根", 1),
		cat(2, 1, "正常子", 1),
		cat(3, 4, "环上A", 1),
		cat(4, 3, "环上B", 1),
	}

	// 必须终止且不重复挂载
	tree := BuildCategoryTree(all)
	require.Len(t, tree, 1)
	assert.Equal(t, "正常根", tree[0].Name)
	require.Len(t, tree[0].Children, 1)

	total := 0
	var walk func(nodes []*CategoryNode)
	walk = func(nodes []*CategoryNode) {
		for _, n := range nodes {
			total++
			walk(n.Children)
		}
	}
	walk(tree)
	// 环上的节点无法从根到达，被整体丢弃
	assert.Equal(t, 2, total)
}

func TestCollectCategoryIDs(t *testing.T) {
	all := []*category.Category{
		cat(1, 0, "根", 1),
		cat(2, 1, "子A", 1),
		cat(3, 1, "子B", 2),
		cat(4, 2, "孙", 1),
		cat(5, 0, "无关根", 1),
	}

	ids := CollectCategoryIDs(all, 1)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, ids)

	// 叶子节点只包含自身
	assert.Equal(t, []int64{4}, CollectCategoryIDs(all, 4))
}

func TestCollectCategoryIDsCycleGuard(t *testing.T) {
	all := []*category.Category{
		cat(1, 2, "A", 1),
		cat(2, 1, "B", 1),
	}
	ids := CollectCategoryIDs(all, 1)
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}
