package logging

import "context"

// Audit actions.
const (
	ActionOpenSelection  = "selection.open"
	ActionCloseSelection = "selection.close"
	ActionGrantAdmin     = "admin.grant"
)

// AuditWithDetail emits an audit entry with an extra detail field.
func AuditWithDetail(ctx context.Context, action string, chatID, userID int64, detail string, msg string) {
	l := Ctx(ctx)
	l.Info().
		Str(FieldLogType, LogTypeAudit).
		Str(FieldAction, action).
		Int64(FieldChatID, chatID).
		Int64(FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
