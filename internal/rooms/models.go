package rooms

// Room statuses as stored by the room service. Room creation, listing
// and membership are owned by that service; the game engine only reads
// the roster and flips the status on game start and finish.
const (
	StatusWaiting  = "waiting"
	StatusInGame   = "in-game"
	StatusFinished = "finished"
)

// RoomPlayer is one roster entry, in join order.
type RoomPlayer struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Room is the roster snapshot the game engine needs.
type Room struct {
	Code     string       `json:"code"`
	HostID   string       `json:"hostId"`
	TriviaID string       `json:"triviaId"`
	Status   string       `json:"status"`
	Capacity int          `json:"capacity"`
	Players  []RoomPlayer `json:"players"`
}
