package controllers

import (
	"errors"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"

	"github.com/happy2h/gomall/internal/auth"
	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/errs"
	"github.com/happy2h/gomall/internal/service"
)

// 会话键
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyRole     = "role"
)

// UserController 负责注册/登录/登出与个人信息接口。
// 登录成功后把用户身份写入会话；同时签发 JWT 供无 Cookie 的 API 客户端使用。
type UserController struct {
	userService *service.UserService
	sess        *sessions.Sessions
	jwtCfg      *config.JWTConfig
}

// NewUserController 构造函数，供路由层复用同一套逻辑
func NewUserController(userSvc *service.UserService, sess *sessions.Sessions, jwtCfg *config.JWTConfig) *UserController {
	return &UserController{userService: userSvc, sess: sess, jwtCfg: jwtCfg}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 处理注册
func (c *UserController) Register(ctx iris.Context) {
	var req credentialsReq
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
		return
	}
	u, err := c.userService.Register(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
		"id":       u.ID,
		"username": u.Username,
	}})
}

// Login 处理登录：写会话 + 返回 JWT
func (c *UserController) Login(ctx iris.Context) {
	var req credentialsReq
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
		return
	}
	u, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	s := c.sess.Start(ctx)
	s.Set(SessionKeyUserID, u.ID)
	s.Set(SessionKeyUsername, u.Username)
	s.Set(SessionKeyRole, u.Role)

	token, err := auth.GenerateToken(c.jwtCfg, u.ID, u.Username, u.Role)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
		"id":       u.ID,
		"username": u.Username,
		"token":    token,
	}})
}

// Logout 销毁会话
func (c *UserController) Logout(ctx iris.Context) {
	c.sess.Destroy(ctx)
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}

// UpdateSignature 更新个性签名（需登录）
func (c *UserController) UpdateSignature(ctx iris.Context) {
	actor := CurrentAuth(ctx)
	var req struct {
		Signature string `json:"signature"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		ctx.StopWithJSON(400, iris.Map{"code": errs.ErrRequestParam.Code, "msg": err.Error()})
		return
	}
	if err := c.userService.UpdateSignature(ctx.Request().Context(), actor.UserID, req.Signature); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
}

// CurrentAuth 取出鉴权中间件写入的身份上下文
func CurrentAuth(ctx iris.Context) auth.Context {
	if v := ctx.Values().Get("auth"); v != nil {
		if ac, ok := v.(auth.Context); ok {
			return ac
		}
	}
	return auth.Context{}
}

// writeError 业务错误带稳定 code 返回 400，未知错误统一按系统错误返回 500
func writeError(ctx iris.Context, err error) {
	var be *errs.Error
	if errors.As(err, &be) {
		status := 400
		switch be {
		case errs.ErrNeedLogin:
			status = 401
		case errs.ErrNeedAdmin:
			status = 403
		}
		ctx.StopWithJSON(status, iris.Map{"code": be.Code, "msg": be.Msg})
		return
	}
	ctx.StopWithJSON(500, iris.Map{"code": errs.ErrSystem.Code, "msg": errs.ErrSystem.Msg})
}

// WriteError 供路由层复用的错误输出
func WriteError(ctx iris.Context, err error) {
	writeError(ctx, err)
}
