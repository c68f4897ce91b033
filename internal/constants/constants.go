package constants

// 渠道相关
const (
	// DefaultChannelNumber 未配置默认渠道时回退的渠道编号
	DefaultChannelNumber = "CH001"
	// ChannelNumberPrefix 自动生成渠道编号的前缀
	ChannelNumberPrefix = "CH"
)

// 客户填写状态
const (
	// CustomerStatusStarted 已建档，尚未提交问卷答案
	CustomerStatusStarted = "started"
	// CustomerStatusAnswered 已提交问卷答案
	CustomerStatusAnswered = "answered"
	// CustomerStatusInfoSubmitted 已补全个人信息
	CustomerStatusInfoSubmitted = "info_submitted"
)

// 鉴权相关
const (
	// AuthCookieName 管理端登录态 Cookie 名称
	AuthCookieName = "admin-auth-token"
)

// 验证码场景
const (
	CaptchaSceneLogin = "login"
)

// 异步任务类型
const (
	// TaskLeadAttributionMiss 渠道归因失败审计任务
	TaskLeadAttributionMiss = "lead:attribution_miss"
)

// 队列名称
const (
	QueueDefault = "default"
)
