package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/happy2h/gomall/internal/auth"
	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/datamodels/category"
	"github.com/happy2h/gomall/internal/datamodels/product"
	"github.com/happy2h/gomall/internal/datamodels/user"
	"github.com/happy2h/gomall/internal/errs"
	"github.com/happy2h/gomall/internal/infra/mq"
	"github.com/happy2h/gomall/internal/infra/redis"
	"github.com/happy2h/gomall/internal/repository/mysql"
	"github.com/happy2h/gomall/internal/service"
	webcontrollers "github.com/happy2h/gomall/web/controllers"
)

// RegisterAdminRoutes 注册后台管理路由
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo, redisClient,
		time.Duration(cfg.Category.CacheTTLSeconds)*time.Second)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(db, orderRepo, cartSvc,
		service.NewStockLedger(), service.NewOrderEventPublisher(mqConn))

	sess := sessions.New(sessions.Config{
		Cookie:  cfg.Session.CookieName + "_admin",
		Expires: time.Duration(cfg.Session.ExpireSeconds) * time.Second,
	})

	app.Get("/metrics", iris.FromStd(service.MetricsHandler()))

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 管理员登录：账号密码校验之外还要求管理员角色
	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		u, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		if !userSvc.CheckAdminRole(u) {
			webcontrollers.WriteError(ctx, errs.ErrNeedAdmin)
			return
		}
		s := sess.Start(ctx)
		s.Set(webcontrollers.SessionKeyUserID, u.ID)
		s.Set(webcontrollers.SessionKeyUsername, u.Username)
		s.Set(webcontrollers.SessionKeyRole, u.Role)
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	api.Post("/logout", func(ctx iris.Context) {
		sess.Start(ctx).Destroy()
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	adminAPI := api.Party("/", AdminMiddleware(sess))

	// ---------- 分类管理 ----------

	adminAPI.Get("/categories", func(ctx iris.Context) {
		list, total, err := categorySvc.ListForAdmin(ctx.Request().Context(),
			ctx.URLParamIntDefault("pageNum", 1),
			ctx.URLParamIntDefault("pageSize", 10))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"total": total, "list": list}})
	})

	adminAPI.Post("/category", func(ctx iris.Context) {
		var c category.Category
		if err := ctx.ReadJSON(&c); err != nil || c.Name == "" {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		if err := categorySvc.Add(ctx.Request().Context(), &c); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	adminAPI.Put("/category", func(ctx iris.Context) {
		var c category.Category
		if err := ctx.ReadJSON(&c); err != nil || c.ID == 0 {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		if err := categorySvc.Update(ctx.Request().Context(), &c); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	adminAPI.Delete("/category/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := categorySvc.Delete(ctx.Request().Context(), id); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// ---------- 商品管理 ----------

	adminAPI.Get("/products", func(ctx iris.Context) {
		page, err := productSvc.ListForAdmin(ctx.Request().Context(),
			ctx.URLParamIntDefault("pageNum", 1),
			ctx.URLParamIntDefault("pageSize", 10))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": page})
	})

	adminAPI.Post("/product", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil || p.Name == "" || p.Price <= 0 {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), &p); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	adminAPI.Put("/product", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil || p.ID == 0 {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		if err := productSvc.Update(ctx.Request().Context(), &p); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	adminAPI.Delete("/product/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := productSvc.Delete(ctx.Request().Context(), id); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 批量上下架
	adminAPI.Put("/product/status", func(ctx iris.Context) {
		var req struct {
			IDs    []int64 `json:"ids"`
			Status int     `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil || len(req.IDs) == 0 {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		if err := productSvc.BatchUpdateStatus(ctx.Request().Context(), req.IDs, req.Status); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 商品图片上传，随机文件名避免覆盖
	adminAPI.Post("/upload", func(ctx iris.Context) {
		file, info, err := ctx.FormFile("file")
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(info.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": "仅支持 jpg/png 图片"})
			return
		}
		if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		name := uuid.NewString() + ext
		info.Filename = name
		if _, err := ctx.SaveFormFile(info, filepath.Join(cfg.Upload.Dir, name)); err != nil {
			zap.L().Error("保存上传文件失败", zap.Error(err))
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"url": cfg.Upload.URLPrefix + name}})
	})

	// ---------- 订单管理 ----------

	adminAPI.Get("/orders", func(ctx iris.Context) {
		page, err := orderSvc.ListForAdmin(ctx.Request().Context(),
			ctx.URLParamIntDefault("pageNum", 1),
			ctx.URLParamIntDefault("pageSize", 10))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": page})
	})

	adminAPI.Get("/order/{orderNo:string}", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		view, err := orderSvc.Detail(ctx.Request().Context(), actor, ctx.Params().Get("orderNo"))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	adminAPI.Post("/order/{orderNo:string}/deliver", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		if err := orderSvc.Deliver(ctx.Request().Context(), actor, ctx.Params().Get("orderNo")); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	adminAPI.Post("/order/{orderNo:string}/finish", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		if err := orderSvc.Finish(ctx.Request().Context(), actor, ctx.Params().Get("orderNo")); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})
}

// AdminMiddleware 后台登录校验，要求会话中的角色是管理员
func AdminMiddleware(sess *sessions.Sessions) iris.Handler {
	return func(ctx iris.Context) {
		s := sess.Start(ctx)
		uid := s.GetInt64Default(webcontrollers.SessionKeyUserID, 0)
		if uid == 0 {
			ctx.StopWithJSON(401, iris.Map{"code": errs.ErrNeedLogin.Code, "msg": errs.ErrNeedLogin.Msg})
			return
		}
		role := s.GetIntDefault(webcontrollers.SessionKeyRole, 0)
		if role != user.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": errs.ErrNeedAdmin.Code, "msg": errs.ErrNeedAdmin.Msg})
			return
		}
		ctx.Values().Set("auth", auth.Context{UserID: uid, IsAdmin: true})
		ctx.Next()
	}
}
