package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionNext    Action = "next"
	ActionPrev    Action = "prev"
	ActionJump    Action = "jump"
	ActionSubject Action = "subject"
	ActionKey     Action = "key"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// RequestPayload carries every client action. Unused fields stay empty;
// the action discriminates which ones matter.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
	Option     string `json:"option,omitempty"`
	Index      int    `json:"index,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Key        string `json:"key,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState Event = "state"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// StateResponse pushes a full session snapshot. Sent after every action
// and once per clock tick.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
