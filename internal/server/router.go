package server

import (
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"
	"github.com/kataras/iris/v12/sessions"

	"github.com/happy2h/gomall/internal/auth"
	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/datamodels/cart"
	"github.com/happy2h/gomall/internal/datamodels/user"
	"github.com/happy2h/gomall/internal/errs"
	"github.com/happy2h/gomall/internal/infra/mq"
	"github.com/happy2h/gomall/internal/infra/redis"
	"github.com/happy2h/gomall/internal/repository/mysql"
	"github.com/happy2h/gomall/internal/service"
	webcontrollers "github.com/happy2h/gomall/web/controllers"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
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
		Cookie:  cfg.Session.CookieName,
		Expires: time.Duration(cfg.Session.ExpireSeconds) * time.Second,
	})

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring,
		time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	userCtrl := webcontrollers.NewUserController(userSvc, sess, &cfg.JWT)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	api.Post("/register", userCtrl.Register)
	api.Post("/login", userCtrl.Login)
	api.Post("/logout", userCtrl.Logout)

	// 分类树（游客可见）
	api.Get("/categories", func(ctx iris.Context) {
		tree, err := categorySvc.ListForCustomer(ctx.Request().Context())
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": tree})
	})

	// 商品浏览（游客可见，MVC 挂载）
	mvc.New(api.Party("/product")).
		Register(productSvc).
		Handle(new(webcontrollers.ProductController))

	// 需要登录的接口：优先走会话，退化到 Authorization 头的 JWT
	authAPI := api.Party("/", AuthMiddleware(sess, tokenCache, &cfg.JWT))

	authAPI.Post("/user/signature", userCtrl.UpdateSignature)

	// ---------- 购物车 ----------

	authAPI.Get("/cart", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		list, err := cartSvc.List(ctx.Request().Context(), actor.UserID)
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Post("/cart", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		var req struct {
			ProductID int64 `json:"productId"`
			Count     int64 `json:"count"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		list, err := cartSvc.Add(ctx.Request().Context(), actor.UserID, req.ProductID, req.Count)
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Put("/cart", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		var req struct {
			ProductID int64 `json:"productId"`
			Count     int64 `json:"count"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		list, err := cartSvc.Update(ctx.Request().Context(), actor.UserID, req.ProductID, req.Count)
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Delete("/cart/{productId:int64}", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		pid, _ := ctx.Params().GetInt64("productId")
		list, err := cartSvc.Delete(ctx.Request().Context(), actor.UserID, pid)
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Put("/cart/select", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		var req struct {
			ProductID *int64 `json:"productId"` // 为空表示全选/全不选
			Selected  int    `json:"selected"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		if req.Selected != cart.Unchecked && req.Selected != cart.Checked {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		var (
			list []*cart.LineView
			err  error
		)
		if req.ProductID != nil {
			list, err = cartSvc.SelectOrNot(ctx.Request().Context(), actor.UserID, *req.ProductID, req.Selected)
		} else {
			list, err = cartSvc.SelectAll(ctx.Request().Context(), actor.UserID, req.Selected)
		}
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// ---------- 订单 ----------

	// 结算：勾选行 → 订单
	authAPI.Post("/order", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		var req struct {
			ReceiverName    string `json:"receiverName"`
			ReceiverMobile  string `json:"receiverMobile"`
			ReceiverAddress string `json:"receiverAddress"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
			return
		}
		if req.ReceiverName == "" || req.ReceiverMobile == "" || req.ReceiverAddress == "" {
			ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": errs.ErrRequestParam.Msg})
			return
		}
		orderNo, err := orderSvc.Create(ctx.Request().Context(), actor.UserID, service.ShippingInfo{
			ReceiverName:    req.ReceiverName,
			ReceiverMobile:  req.ReceiverMobile,
			ReceiverAddress: req.ReceiverAddress,
		})
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"orderNo": orderNo}})
	})

	authAPI.Get("/order/{orderNo:string}", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		view, err := orderSvc.Detail(ctx.Request().Context(), actor, ctx.Params().Get("orderNo"))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": view})
	})

	authAPI.Get("/orders", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		page, err := orderSvc.ListForUser(ctx.Request().Context(), actor.UserID,
			ctx.URLParamIntDefault("pageNum", 1),
			ctx.URLParamIntDefault("pageSize", 10))
		if err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": page})
	})

	authAPI.Post("/order/{orderNo:string}/cancel", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		if err := orderSvc.Cancel(ctx.Request().Context(), actor, ctx.Params().Get("orderNo")); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 支付回调（演示用：直接标记已支付，守卫保证重复回调安全）
	authAPI.Post("/order/{orderNo:string}/pay", func(ctx iris.Context) {
		if err := orderSvc.Pay(ctx.Request().Context(), ctx.Params().Get("orderNo")); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	authAPI.Post("/order/{orderNo:string}/finish", func(ctx iris.Context) {
		actor := webcontrollers.CurrentAuth(ctx)
		if err := orderSvc.Finish(ctx.Request().Context(), actor, ctx.Params().Get("orderNo")); err != nil {
			webcontrollers.WriteError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})
}

// AuthMiddleware 登录校验：会话优先，带 Authorization 头的请求走 JWT
// （解析结果经 Redis 缓存加速），通过后把 auth.Context 放进请求值。
func AuthMiddleware(sess *sessions.Sessions, tokenCache *auth.TokenCache, jwtCfg *config.JWTConfig) iris.Handler {
	return func(ctx iris.Context) {
		s := sess.Start(ctx)
		if uid := s.GetInt64Default(webcontrollers.SessionKeyUserID, 0); uid > 0 {
			role := s.GetIntDefault(webcontrollers.SessionKeyRole, user.RoleCustomer)
			ctx.Values().Set("auth", auth.Context{UserID: uid, IsAdmin: role == user.RoleAdmin})
			ctx.Next()
			return
		}

		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": errs.ErrNeedLogin.Code, "msg": errs.ErrNeedLogin.Msg})
			return
		}

		claims, hit, err := tokenCache.Get(ctx.Request().Context(), token)
		if err != nil || !hit {
			claims, err = auth.ParseToken(jwtCfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": errs.ErrNeedLogin.Code, "msg": errs.ErrNeedLogin.Msg})
				return
			}
			_ = tokenCache.Set(ctx.Request().Context(), token, claims)
		}
		ctx.Values().Set("auth", auth.Context{
			UserID:  claims.UserID,
			IsAdmin: claims.Role == user.RoleAdmin,
		})
		ctx.Next()
	}
}
