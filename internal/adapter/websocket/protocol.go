package websocket

import "encoding/json"

type MessageType string

const (
	MsgTickResult MessageType = "TICK_RESULT"
	MsgRunStopped MessageType = "RUN_STOPPED"
)

type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type TickPayload struct {
	Round      int     `json:"round"`
	VehicleID  string  `json:"vehicle_id"`
	Owner      string  `json:"owner"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	DistanceKm float64 `json:"distance_km"`
	Charge     string  `json:"charge"`
	Outcome    string  `json:"outcome"`
	Balance    string  `json:"balance"`
}

type RunStoppedPayload struct {
	Rounds int `json:"rounds"`
}
