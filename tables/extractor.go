package tables

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/bomex/model"
)

// Config holds table interpretation parameters.
type Config struct {
	// Minimum number of recognized canonical fields for a header row.
	MinHeaderScore int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{MinHeaderScore: 2}
}

// Extractor converts raw table grids into BOM items.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor with the default configuration.
func NewExtractor() *Extractor {
	return &Extractor{cfg: DefaultConfig()}
}

// Configure sets extractor parameters.
func (e *Extractor) Configure(cfg Config) {
	if cfg.MinHeaderScore < 1 {
		cfg.MinHeaderScore = 1
	}
	e.cfg = cfg
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeCell flattens line breaks and collapses runs of whitespace.
func NormalizeCell(cell string) string {
	text := strings.ReplaceAll(cell, "\n", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// DedupeGrids drops grids whose rows are identical to an earlier grid.
// Different detection strategies frequently return the same table; the
// first occurrence wins.
func DedupeGrids(grids []model.GridTable) []model.GridTable {
	var unique []model.GridTable
	for _, grid := range grids {
		duplicate := false
		for _, seen := range unique {
			if gridsEqual(seen.Rows, grid.Rows) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, grid)
		}
	}
	return unique
}

func gridsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// Extract interprets a raw grid as a bill of materials. It returns the
// extracted items and the sorted canonical fields the header mapped. Both
// are empty when no convincing header row exists.
func (e *Extractor) Extract(grid [][]string) ([]*model.BOMItem, []string) {
	cleaned := cleanGrid(grid)
	if len(cleaned) == 0 {
		return nil, nil
	}

	headerIndex, headerMap, headerNames := e.findHeaderRow(cleaned)
	if headerIndex < 0 {
		return nil, nil
	}

	dataRows := cleaned[headerIndex+1:]
	if len(dataRows) == 0 {
		return nil, nil
	}

	var items []*model.BOMItem
	for _, row := range dataRows {
		if item := rowToItem(row, headerMap, headerNames); item != nil {
			items = append(items, item)
		}
	}

	seen := make(map[string]bool)
	var columns []string
	for _, canonical := range headerMap {
		if !seen[canonical] {
			seen[canonical] = true
			columns = append(columns, canonical)
		}
	}
	sort.Strings(columns)
	return items, columns
}

func cleanGrid(grid [][]string) [][]string {
	var cleaned [][]string
	for _, row := range grid {
		normalized := make([]string, len(row))
		hasContent := false
		for i, cell := range row {
			normalized[i] = NormalizeCell(cell)
			if normalized[i] != "" {
				hasContent = true
			}
		}
		if hasContent {
			cleaned = append(cleaned, normalized)
		}
	}
	return cleaned
}

// findHeaderRow scans rows in order and scores each by the number of
// distinct canonical fields its cells match. The first row reaching the
// strictly highest score of at least MinHeaderScore wins; later rows with
// an equal score do not replace it.
func (e *Extractor) findHeaderRow(grid [][]string) (int, map[int]string, map[int]string) {
	bestIndex := -1
	var bestMap map[int]string
	var bestNames map[int]string
	bestScore := 0

	for idx, row := range grid {
		mapping := make(map[int]string)
		names := make(map[int]string)
		taken := make(map[string]bool)
		score := 0

		for col, cell := range row {
			if cell == "" {
				continue
			}
			normalized := NormalizeHeader(cell)
			if normalized == "" {
				continue
			}
			names[col] = normalized
			if canonical, ok := MatchHeader(normalized); ok && !taken[canonical] {
				mapping[col] = canonical
				taken[canonical] = true
				score++
			}
		}

		if score >= e.cfg.MinHeaderScore && score > bestScore {
			bestIndex = idx
			bestMap = mapping
			bestNames = names
			bestScore = score
		}
	}

	return bestIndex, bestMap, bestNames
}

func rowToItem(row []string, headerMap map[int]string, headerNames map[int]string) *model.BOMItem {
	recognized := make(map[string]string)
	item := model.NewBOMItem()
	populated := false

	for idx, cell := range row {
		if cell == "" {
			continue
		}
		populated = true
		if canonical, ok := headerMap[idx]; ok {
			recognized[canonical] = cell
			continue
		}
		key := headerNames[idx]
		if key == "" {
			key = fmt.Sprintf("column_%d", idx)
		}
		item.Extras[key] = cell
	}

	if !populated {
		return nil
	}

	item.Position = recognized[model.FieldPosition]
	item.PartNumber = recognized[model.FieldPartNumber]
	item.Description = recognized[model.FieldDescription]
	item.Material = recognized[model.FieldMaterial]
	item.Comment = recognized[model.FieldComment]

	if raw, ok := recognized[model.FieldQuantity]; ok {
		quantity, unit := ParseQuantity(raw)
		item.Quantity = quantity
		item.Unit = unit
		// An unparseable quantity cell is preserved verbatim.
		if quantity == nil {
			item.Extras["quantity_raw"] = raw
		}
	}

	// An explicit unit column overrides the unit parsed out of the
	// quantity cell.
	if unit, ok := recognized[model.FieldUnit]; ok && unit != "" {
		item.Unit = unit
	}

	return item
}
