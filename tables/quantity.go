package tables

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/bomex/model"
)

// QuantityRe finds a signed decimal number (comma or dot separator) with
// an optional trailing unit token. Shared with the annotation
// interpreter.
var QuantityRe = regexp.MustCompile(`(-?\d+(?:[.,]\d+)?)\s*([a-zA-Z%°/]*)`)

// ParseQuantity extracts the first numeric value and unit token from
// mixed text. It returns (nil, "") when no number is found and
// (nil, unit) when a unit-like token follows a literal that does not
// convert cleanly.
func ParseQuantity(text string) (*model.Quantity, string) {
	if text == "" {
		return nil, ""
	}
	match := QuantityRe.FindStringSubmatch(text)
	if match == nil {
		return nil, ""
	}

	raw := strings.ReplaceAll(match[1], ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, match[2]
	}
	return model.NewQuantity(value), match[2]
}
