package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"finboard/internal/core"
)

// ExportRequestMessage asks the worker to export one dashboard view to
// Google Sheets. The fields mirror the dashboard query string so the worker
// rebuilds exactly the view the user was looking at.
type ExportRequestMessage struct {
	Kind        string    `json:"kind"`
	Period      string    `json:"period,omitempty"`
	Start       string    `json:"start,omitempty"`
	End         string    `json:"end,omitempty"`
	Category    string    `json:"category,omitempty"`
	Query       string    `json:"query,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportRequestMessage creates a request for kind stamped with the
// current time. The filter fields are filled in by the caller.
func NewExportRequestMessage(kind core.Kind) *ExportRequestMessage {
	return &ExportRequestMessage{Kind: string(kind), RequestedAt: time.Now().UTC()}
}

// Validate checks that the message names a known kind.
func (m *ExportRequestMessage) Validate() error {
	if m.RequestedAt.IsZero() {
		return errors.New("missing requested_at")
	}
	_, err := core.ParseKind(m.Kind)
	return err
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
