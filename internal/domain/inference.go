package domain

const (
	RoleUser = "user"
)

// Segment is a timed transcript fragment. Start is in nanoseconds.
type Segment struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
