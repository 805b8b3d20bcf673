package auth

// Context 当前请求的身份上下文。核心服务只信任显式传入的 Context，
// 不读取任何全局的"当前用户"状态。
type Context struct {
	UserID  int64
	IsAdmin bool
}

// CanActOn 是否有权操作属于 ownerID 的资源（本人或管理员）
func (c Context) CanActOn(ownerID int64) bool {
	return c.IsAdmin || c.UserID == ownerID
}
