// ABOUTME: Chat history messages supplied by callers between turns.
// ABOUTME: Used as context when asking the model to extract a workout.
package models

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Speaker returns the display label used in prompts.
// Anything that is not the user is treated as the assistant.
func (m ChatMessage) Speaker() string {
	if m.Role == RoleUser {
		return "User"
	}
	return "Assistant"
}
