package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/happy2h/gomall/internal/service"
)

// ProductController 前台商品浏览控制器（MVC）
// 路由在 internal/server/router.go 中通过 Iris MVC 挂载到 /api/product。
type ProductController struct {
	Ctx            iris.Context
	ProductService *service.ProductService
}

// Get 处理 GET /api/product
// 前台商品列表：支持关键字、分类（连同子分类）、价格排序、分页。
func (c *ProductController) Get() {
	q := service.ProductListQuery{
		Keyword:    c.Ctx.URLParam("keyword"),
		CategoryID: c.Ctx.URLParamInt64Default("categoryId", 0),
		OrderBy:    c.Ctx.URLParam("orderBy"),
		PageNum:    c.Ctx.URLParamIntDefault("pageNum", 1),
		PageSize:   c.Ctx.URLParamIntDefault("pageSize", 10),
	}
	page, err := c.ProductService.ListForCustomer(c.Ctx.Request().Context(), q)
	if err != nil {
		writeError(c.Ctx, err)
		return
	}
	c.Ctx.JSON(iris.Map{"code": 0, "data": page})
}

// GetBy 处理 GET /api/product/{id:uint64}
// 商品详情。
func (c *ProductController) GetBy(id uint64) {
	p, err := c.ProductService.GetByID(c.Ctx.Request().Context(), int64(id))
	if err != nil {
		writeError(c.Ctx, err)
		return
	}
	c.Ctx.JSON(iris.Map{"code": 0, "data": p})
}
