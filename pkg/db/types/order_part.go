package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderPart is one half of an order (frames or doors), stored as a JSONB
// column so an order row can carry zero, one, or both parts.
type OrderPart struct {
	Number       string    `json:"number"`
	IsSent       bool      `json:"is_sent"`
	CreationDate time.Time `json:"creation_date"`
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	Notes        string    `json:"notes"`
}

func (p *OrderPart) Scan(src any) error {
	if src == nil {
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("OrderPart: unsupported Scan type %T", src)
	}
}

func (p OrderPart) Value() (driver.Value, error) {
	return json.Marshal(p)
}
