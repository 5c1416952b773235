package api

import (
	"encoding/json"
	"fmt"
)

// Envelope sobre uniforme de respuesta del backend Vallmark:
// {success, message?, data?, page?, per_page?, total?, total_pages?}.
// El cliente parsea una sola vez; los controladores decodifican Data con Decode.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Page       int             `json:"page,omitempty"`
	PerPage    int             `json:"per_page,omitempty"`
	Total      int             `json:"total,omitempty"`
	TotalPages int             `json:"total_pages,omitempty"`
}

// Decode deserializa el campo data del sobre en v.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("api: el sobre no trae data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("api: deserializar data del sobre: %w", err)
	}
	return nil
}
