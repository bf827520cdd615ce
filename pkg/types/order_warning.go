package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/google/uuid"
)

// OrderWarning is a structured post-checkout problem attached to an order,
// such as a stock decrement that could not be applied.
type OrderWarning struct {
	Code        enums.OrderWarningCode `json:"code"`
	ProductID   *uuid.UUID             `json:"productId,omitempty"`
	ProductName string                 `json:"productName,omitempty"`
	Requested   int                    `json:"requested,omitempty"`
	Applied     int                    `json:"applied,omitempty"`
	Message     string                 `json:"message"`
}

// OrderWarnings persists as a JSON array.
type OrderWarnings []OrderWarning

// Value serializes the warnings to JSON text.
func (w OrderWarnings) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSON into the warning slice.
func (w *OrderWarnings) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return fmt.Errorf("order warnings: %w", err)
	}
	var decoded OrderWarnings
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*w = decoded
	return nil
}

func rawJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
