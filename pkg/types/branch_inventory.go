package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BranchStock is the sub-stock a single branch holds of a product.
type BranchStock struct {
	Stock           int `json:"stock"`
	ReorderPoint    int `json:"reorderPoint"`
	ReorderQuantity int `json:"reorderQuantity"`
}

// BranchInventory maps branch id to its sub-stock and persists as a JSON object.
type BranchInventory map[string]BranchStock

// Value serializes the map to JSON text.
func (b BranchInventory) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSON into the map.
func (b *BranchInventory) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return fmt.Errorf("branch inventory: %w", err)
	}
	result := make(BranchInventory)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*b = result
	return nil
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (b BranchInventory) Clone() BranchInventory {
	out := make(BranchInventory, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Total sums stock across branches.
func (b BranchInventory) Total() int {
	total := 0
	for _, v := range b {
		total += v.Stock
	}
	return total
}
