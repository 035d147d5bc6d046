package api

import (
	"encoding/json"
	"net/http"

	"stockgame/internal/actions"
	"stockgame/internal/events"
)

// Websocket message types sent by the server
const (
	TypeAck   = "ack"
	TypeEvent = "event"
	TypeGap   = "gap"
)

const (
	MsgInvalidRequest  = "Invalid Request"
	MsgTooManyRequests = "Too Many Requests"
	MsgWrongLogin      = "Wrong Email or Password"
	MsgUnauthorized    = "Unauthorized"
)

// Request is a client action frame
type Request struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Reply answers exactly one Request
type Reply struct {
	Type  string           `json:"type"`
	ID    string           `json:"id"`
	Event string           `json:"event"`
	Data  actions.Response `json:"data"`
}

// EventMessage is a broadcast as seen on the wire
type EventMessage struct {
	Type string `json:"type"`
	events.Event
}

// GapMessage precedes a replay whose oldest retained event is newer than
// the one the client asked to resume after. Events From..To (inclusive)
// are only available from GET /api/events.
type GapMessage struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	From  int64  `json:"from"`
	To    int64  `json:"to"`
}

// replayGap reports which events after lastSeq the backlog no longer holds
func replayGap(lastSeq int64, backlog []events.Event) (from, to int64, ok bool) {
	if len(backlog) == 0 || backlog[0].Seq <= lastSeq+1 {
		return 0, 0, false
	}
	return lastSeq + 1, backlog[0].Seq - 1, true
}

func encodeEvent(ev events.Event) ([]byte, error) {
	return json.Marshal(EventMessage{Type: TypeEvent, Event: ev})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
