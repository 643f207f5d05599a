package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Canonical BOM field names.
const (
	FieldPosition    = "position"
	FieldPartNumber  = "part_number"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldUnit        = "unit"
	FieldMaterial    = "material"
	FieldComment     = "comment"
)

// CanonicalFields lists the recognized BOM attributes in display order.
var CanonicalFields = []string{
	FieldPosition,
	FieldPartNumber,
	FieldDescription,
	FieldQuantity,
	FieldUnit,
	FieldMaterial,
	FieldComment,
}

// Quantity is a parsed numeric quantity. Exact quantities are whole
// numbers and serialize as JSON integers.
type Quantity struct {
	Value float64
	Exact bool
}

// NewQuantity creates a quantity, marking whole values as exact.
func NewQuantity(value float64) *Quantity {
	return &Quantity{Value: value, Exact: value == math.Trunc(value)}
}

// Int returns the quantity truncated to an integer.
func (q *Quantity) Int() int {
	return int(q.Value)
}

// String formats the quantity the way it serializes.
func (q *Quantity) String() string {
	if q.Exact {
		return strconv.FormatInt(int64(q.Value), 10)
	}
	return strconv.FormatFloat(q.Value, 'g', -1, 64)
}

// MarshalJSON emits an integer for exact quantities, a float otherwise.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts any JSON number.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*q = *NewQuantity(value)
	return nil
}

// BOMItem is a single bill-of-materials entry. Unrecognized columns and
// provenance tags live in Extras; Confidence is assigned only by the
// learning engine.
type BOMItem struct {
	Position    string            `json:"position,omitempty"`
	PartNumber  string            `json:"part_number,omitempty"`
	Description string            `json:"description,omitempty"`
	Quantity    *Quantity         `json:"quantity,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	Material    string            `json:"material,omitempty"`
	Comment     string            `json:"comment,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty"`
	Extras      map[string]string `json:"extras"`
}

// NewBOMItem creates an empty item with an initialized extras map.
func NewBOMItem() *BOMItem {
	return &BOMItem{Extras: make(map[string]string)}
}

// Field returns the value of a canonical field as text, or "" when the
// field is not populated.
func (it *BOMItem) Field(name string) string {
	switch name {
	case FieldPosition:
		return it.Position
	case FieldPartNumber:
		return it.PartNumber
	case FieldDescription:
		return it.Description
	case FieldQuantity:
		if it.Quantity == nil {
			return ""
		}
		return it.Quantity.String()
	case FieldUnit:
		return it.Unit
	case FieldMaterial:
		return it.Material
	case FieldComment:
		return it.Comment
	}
	return ""
}

// Extra returns the extras value for key, or "" when absent.
func (it *BOMItem) Extra(key string) string {
	if it.Extras == nil {
		return ""
	}
	return it.Extras[key]
}

// SetExtra stores a non-empty extras value, allocating the map if needed.
func (it *BOMItem) SetExtra(key, value string) {
	if value == "" {
		return
	}
	if it.Extras == nil {
		it.Extras = make(map[string]string)
	}
	it.Extras[key] = value
}

// FieldCount returns how many canonical fields are populated.
func (it *BOMItem) FieldCount() int {
	count := 0
	for _, name := range CanonicalFields {
		if it.Field(name) != "" {
			count++
		}
	}
	return count
}

// MarshalJSON serializes only populated fields. The extras map is always
// present but drops empty values.
func (it BOMItem) MarshalJSON() ([]byte, error) {
	type alias BOMItem
	a := alias(it)
	extras := make(map[string]string, len(a.Extras))
	for key, value := range a.Extras {
		if value != "" {
			extras[key] = value
		}
	}
	a.Extras = extras
	return json.Marshal(a)
}
