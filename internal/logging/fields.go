package logging

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUserID = "user_id"
	FieldChatID = "chat_id"

	// Telegram
	FieldUpdateID = "update_id"
	FieldCommand  = "command"

	FieldService = "service"

	// Audit
	FieldLogType = "log_type"
	FieldAction  = "action"
	FieldDetail  = "detail"
	LogTypeAudit = "audit"
)
