package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/datamodels/category"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/infra/logger"
	"github.com/happy2h/gomall/internal/repository/mysql"
	"github.com/happy2h/gomall/internal/service"
)

// 向数据库写入演示数据：管理员账号、分类树和在售商品。
func main() {
	logger.Init()
	defer zap.L().Sync()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		zap.L().Fatal("加载配置失败", zap.Error(err))
	}
	db := mysql.Init(&cfg.MySQL)
	ctx := context.Background()

	userSvc := service.NewUserService(mysql.NewUserRepository(db))
	if u, err := userSvc.Register(ctx, "admin", "admin123"); err != nil {
		zap.L().Warn("管理员账号已存在，跳过", zap.Error(err))
	} else {
		u.Role = 2
		if err := mysql.NewUserRepository(db).Update(ctx, u); err != nil {
			zap.L().Fatal("设置管理员角色失败", zap.Error(err))
		}
		zap.L().Info("管理员账号创建完成", zap.String("username", u.Username))
	}

	categoryRepo := mysql.NewCategoryRepository(db)
	categories := []*category.Category{
		{Name: "数码", Type: 1, ParentID: 0, OrderNum: 1},
		{Name: "食品", Type: 1, ParentID: 0, OrderNum: 2},
	}
	for _, c := range categories {
		if err := categoryRepo.Create(ctx, c); err != nil {
			zap.L().Fatal("写入分类失败", zap.String("name", c.Name), zap.Error(err))
		}
	}
	children := []*category.Category{
		{Name: "手机", Type: 2, ParentID: categories[0].ID, OrderNum: 1},
		{Name: "耳机", Type: 2, ParentID: categories[0].ID, OrderNum: 2},
		{Name: "坚果", Type: 2, ParentID: categories[1].ID, OrderNum: 1},
	}
	for _, c := range children {
		if err := categoryRepo.Create(ctx, c); err != nil {
			zap.L().Fatal("写入分类失败", zap.String("name", c.Name), zap.Error(err))
		}
	}

	productRepo := mysql.NewProductRepository(db)
	products := []*product.Product{
		{Name: "小米手机 13", Image: "/images/mi13.png", Detail: "演示商品",
			CategoryID: children[0].ID, Price: 399900, Stock: 100, Status: product.StatusOnSale},
		{Name: "降噪耳机 Pro", Image: "/images/headset.png", Detail: "演示商品",
			CategoryID: children[1].ID, Price: 89900, Stock: 200, Status: product.StatusOnSale},
		{Name: "每日坚果 30 包", Image: "/images/nuts.png", Detail: "演示商品",
			CategoryID: children[2].ID, Price: 9900, Stock: 500, Status: product.StatusOnSale},
		{Name: "未上架样品", Image: "/images/draft.png", Detail: "演示商品",
			CategoryID: children[0].ID, Price: 100, Stock: 10, Status: product.StatusNotSale},
	}
	for _, p := range products {
		if err := productRepo.Create(ctx, p); err != nil {
			zap.L().Fatal("写入商品失败", zap.String("name", p.Name), zap.Error(err))
		}
	}

	zap.L().Info("演示数据写入完成",
		zap.Int("categories", len(categories)+len(children)),
		zap.Int("products", len(products)))
}
