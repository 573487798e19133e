package store

// ChatHistory is one persisted transcript record. Messages is a
// JSON-encoded ordered array of {role, content} pairs; ordering inside the
// array is the conversation order.
type ChatHistory struct {
	ID        int32
	UID       string
	UserID    int32
	Messages  string // JSON array of {role, content}
	Summary   string
	CreatedTs int64
}

type FindChatHistory struct {
	ID     *int32
	UID    *string
	UserID *int32
	// Limit bounds the result set; records are returned newest-first.
	Limit *int
}

type DeleteChatHistory struct {
	ID int32
}
