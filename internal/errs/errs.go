package errs

// Error 业务错误：稳定错误码 + 提示语。
// 全部以包级单例指针暴露，调用方用 errors.Is 按身份比较，
// 不要在别处 new 相同码的实例。
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// New 创建业务错误，仅用于定义下面的单例
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// 业务错误码表。码值一旦对外暴露就不允许改含义，只增不改。
var (
	ErrNameDuplicated   = New(10004, "用户名已存在")
	ErrWrongPassword    = New(10006, "用户名或密码错误")
	ErrNeedLogin        = New(10007, "用户未登录")
	ErrUpdateFailed     = New(10008, "更新失败")
	ErrNeedAdmin        = New(10009, "无管理员权限")
	ErrRequestParam     = New(10012, "参数错误")
	ErrDeleteFailed     = New(10013, "删除失败")
	ErrNotSale          = New(10014, "商品不在售卖状态")
	ErrNotEnough        = New(10015, "商品库存不足")
	ErrCartEmpty        = New(10016, "购物车已勾选的商品为空")
	ErrNoSuchStatus     = New(10017, "未找到对应的状态")
	ErrNoOrder          = New(10019, "订单不存在")
	ErrNotYourOrder     = New(10020, "订单不属于你")
	ErrWrongOrderStatus = New(10021, "订单状态不符")
	ErrConflict         = New(10023, "并发冲突，请重试")
	ErrSystem           = New(20000, "系统异常")
)
