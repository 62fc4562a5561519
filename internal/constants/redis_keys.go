package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ChatModulePrefix 对话模块
	ChatModulePrefix = "chat"

	// EntityConversation 岗位创建对话实体
	EntityConversation = "conversation"

	// KeyChatConversation 每个HR用户的岗位创建对话历史 (LIST)
	// 格式: app:chat:conversation:{hrUserID}
	KeyChatConversation = AppPrefix + ":" + ChatModulePrefix + ":" + EntityConversation + ":%s"
)
