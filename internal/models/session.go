package models

import "time"

// Chat transcript roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of an advisor session transcript.
type ChatMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Clear-all confirmation states. The destructive roster clear is a two-step
// flow: a request parks a token in PendingConfirm, and only a confirm call
// carrying that token executes the clear.
const (
	ClearStatePending   = "pending_confirm"
	ClearStateExecuted  = "executed"
	ClearStateCancelled = "cancelled"
)
