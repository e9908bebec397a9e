package tourism

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tourism is a destination as presented to consumers.
type Tourism struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Category    string  `json:"category,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Like        int     `json:"like"`
	Image       string  `json:"image"`
	IsFavorite  bool    `json:"is_favorite"`
}

// Entity is a stored destination row. ID is unique across the store.
type Entity struct {
	ID          string
	Name        string
	Description string
	Address     string
	Category    string
	Latitude    float64
	Longitude   float64
	Like        int
	Image       string
	IsFavorite  bool
}

// Response is a destination as returned by the listing API.
type Response struct {
	ID          FlexibleID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Category    string     `json:"category"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Like        int        `json:"like"`
	Image       string     `json:"image"`
}

// ListResponse is the envelope of GET /list.
type ListResponse struct {
	Error   bool       `json:"error"`
	Message string     `json:"message"`
	Count   int        `json:"count"`
	Places  []Response `json:"places"`
}

// FlexibleID decodes an identifier sent either as a JSON string or number.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", string(b), err)
	}
	*id = FlexibleID(n.String())
	return nil
}
