package websocket

import (
	"encoding/json"

	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
	"go.uber.org/zap"
)

// Hub fans tick events out to connected observers. Observers are read-only;
// slow clients are dropped rather than allowed to stall the engine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastTick implements port.TickBroadcaster. It never blocks: when the
// broadcast buffer is full the event is dropped and logged.
func (h *Hub) BroadcastTick(ev domain.TickEvent) {
	payload, err := json.Marshal(TickPayload{
		Round:      ev.Round,
		VehicleID:  ev.VehicleID.String(),
		Owner:      ev.Owner,
		X:          ev.Position.X,
		Y:          ev.Position.Y,
		DistanceKm: ev.DistanceKm,
		Charge:     ev.Charge.StringFixed(2),
		Outcome:    string(ev.Outcome),
		Balance:    ev.Balance.StringFixed(2),
	})
	if err != nil {
		return
	}
	h.send(MsgTickResult, payload)
}

// BroadcastStopped announces the end of the run to observers.
func (h *Hub) BroadcastStopped(rounds int) {
	payload, err := json.Marshal(RunStoppedPayload{Rounds: rounds})
	if err != nil {
		return
	}
	h.send(MsgRunStopped, payload)
}

func (h *Hub) send(t MessageType, payload json.RawMessage) {
	msg, err := json.Marshal(Envelope{Type: t, Payload: payload})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("feed buffer full, tick event dropped")
	}
}

var _ port.TickBroadcaster = (*Hub)(nil)
