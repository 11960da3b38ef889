package core

// ChatMessageBody is the displayable payload of a chat message. The user is
// taken from the connection identity, never from the client payload.
type ChatMessageBody struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// ChatMessage is one published utterance, tagged with its origin room.
// The room is the sole routing key: every subscriber sees every message
// and discards the ones for other rooms.
type ChatMessage struct {
	Room uint64
	Body ChatMessageBody
}
