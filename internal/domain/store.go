package domain

type ConversationStore interface {
	Add(sessionID string, msg Message)
	Messages(sessionID string) []Message
	Exists(sessionID string) bool
}
