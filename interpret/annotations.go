package interpret

import (
	"regexp"
	"strings"

	"github.com/tsawler/bomex/model"
	"github.com/tsawler/bomex/tables"
)

// Heuristic confidence buckets recorded under extras["confidence"].
const (
	ConfidenceHigh   = "hoch"
	ConfidenceMedium = "mittel"
	ConfidenceLow    = "niedrig"
)

// quantityKeywords mark a numeric match as a quantity when they appear
// within six characters of it.
var quantityKeywords = []string{
	"qty", "quantity", "anzahl", "menge", "stk", "stück", "st",
	"pcs", "pieces", "x", "off", "ea",
}

var (
	bulletTrim        = " -•"
	keywordStripRe    = regexp.MustCompile(`(?i)\b(?:quantity|pieces|anzahl|menge|stück|qty|stk|pcs|off|ea|st)\b`)
	multiSpaceRe      = regexp.MustCompile(`\s{2,}`)
	commentRe         = regexp.MustCompile(`\(([^)]+)\)\s*$`)
	unitAfterNumberRe = regexp.MustCompile(`\b\d+\s*(?:x|pcs|stk|st|off|ea)\b`)
	wordRe            = regexp.MustCompile(`\b[a-z]+\b`)
	digitRe           = regexp.MustCompile(`\d`)
	hyphenTokenRe     = regexp.MustCompile(`[A-Za-z]+-[A-Za-z0-9]+`)
	singleMatchHintRe = regexp.MustCompile(`(qty|pcs|stk|x)`)
)

// Interpreter parses free-text annotation lines into synthetic BOM
// items, allocating positions from a shared allocator.
type Interpreter struct {
	alloc *Allocator
}

// NewInterpreter creates an interpreter drawing positions from alloc.
func NewInterpreter(alloc *Allocator) *Interpreter {
	return &Interpreter{alloc: alloc}
}

// InterpretLines parses annotation lines into items. It returns the
// items and the number of non-blank lines that were examined.
func (in *Interpreter) InterpretLines(lines []string) ([]*model.BOMItem, int) {
	var items []*model.BOMItem
	checked := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		checked++

		parsed := interpretLine(line)
		if parsed == nil {
			continue
		}

		item := model.NewBOMItem()
		item.PartNumber = parsed.partNumber
		item.Description = parsed.description
		item.Quantity = parsed.quantity
		item.Unit = parsed.unit
		item.Comment = parsed.comment
		item.Extras["source"] = "text"
		item.Extras["raw"] = line
		item.Extras["confidence"] = parsed.bucket

		if parsed.position != "" {
			if in.alloc.Claim(parsed.position) {
				item.Position = parsed.position
			} else {
				// A duplicate position is renumbered instead of kept.
				item.Extras["note"] = "Position mehrfach erkannt, automatisch neu nummeriert"
				item.Position = in.alloc.Next()
			}
		} else {
			item.Position = in.alloc.Next()
		}

		items = append(items, item)
	}

	return items, checked
}

type parsedLine struct {
	position    string
	partNumber  string
	description string
	quantity    *model.Quantity
	unit        string
	comment     string
	bucket      string
}

// interpretLine parses one annotation line. It returns nil when the line
// is noise or yields neither a description nor a part number.
func interpretLine(line string) *parsedLine {
	text := strings.Trim(line, bulletTrim)
	if text == "" {
		return nil
	}

	position, rest, ok := splitPositionAndRest(text)
	if !ok {
		return nil
	}
	if position == "" && !looksLikeItemLine(rest) {
		return nil
	}

	quantity, unit, remainder := extractQuantity(rest)
	remainder, comment := extractComment(remainder)
	partNumber, description := splitPartNumberAndDescription(remainder)

	if description == "" && partNumber == "" {
		return nil
	}
	if description == "" {
		description = partNumber
	}

	score := 0
	if position != "" {
		score++
	}
	if partNumber != "" {
		score++
	}
	if quantity != nil {
		score++
	}
	if description != "" {
		score++
	}
	bucket := ConfidenceLow
	switch {
	case score >= 3:
		bucket = ConfidenceHigh
	case score >= 2:
		bucket = ConfidenceMedium
	}

	return &parsedLine{
		position:    position,
		partNumber:  partNumber,
		description: description,
		quantity:    quantity,
		unit:        unit,
		comment:     comment,
		bucket:      bucket,
	}
}

// looksLikeItemLine filters noise from lines that carry no position: the
// rest must mention a quantity keyword, a number-plus-unit pattern, a
// hyphenated alphanumeric token, or digits combined with words.
func looksLikeItemLine(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range quantityKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	if unitAfterNumberRe.MatchString(lowered) {
		return true
	}
	if wordRe.MatchString(lowered) && digitRe.MatchString(text) {
		return true
	}
	return hyphenTokenRe.MatchString(text)
}

// extractQuantity picks the numeric match that most plausibly denotes a
// quantity, removes it from the text, and returns the cleaned remainder.
func extractQuantity(text string) (*model.Quantity, string, string) {
	if text == "" {
		return nil, "", ""
	}

	matches := tables.QuantityRe.FindAllStringIndex(text, -1)
	chosen := -1
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		prefix := strings.ToLower(text[max(0, start-6):start])
		suffix := strings.ToLower(text[end:min(len(text), end+6)])
		if containsKeyword(prefix) || containsKeyword(suffix) {
			chosen = i
			break
		}
		if (start > 0 && text[start-1] == '(') || (end < len(text) && text[end] == ')') {
			chosen = i
			break
		}
	}

	if chosen < 0 && len(matches) == 1 {
		start, end := matches[0][0], matches[0][1]
		if letterRe.MatchString(text[:start]) ||
			singleMatchHintRe.MatchString(strings.ToLower(text[end:])) {
			chosen = 0
		}
	}

	if chosen < 0 {
		return nil, "", text
	}

	start, end := matches[chosen][0], matches[chosen][1]
	quantity, unit := tables.ParseQuantity(text[start:end])
	if strings.EqualFold(unit, "x") {
		unit = "pcs"
	}

	before := text[:start]
	after := text[end:]
	if strings.HasSuffix(before, "(") && strings.HasPrefix(after, ")") {
		before = before[:len(before)-1]
		after = after[1:]
	}
	cleaned := strings.TrimSpace(before + " " + after)
	cleaned = keywordStripRe.ReplaceAllString(cleaned, "")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " -:;,")

	return quantity, unit, cleaned
}

func containsKeyword(window string) bool {
	for _, keyword := range quantityKeywords {
		if strings.Contains(window, keyword) {
			return true
		}
	}
	return false
}

// extractComment strips a trailing parenthesized group and returns it as
// the comment.
func extractComment(text string) (string, string) {
	if text == "" {
		return "", ""
	}
	loc := commentRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), ""
	}
	comment := strings.TrimSpace(text[loc[2]:loc[3]])
	cleaned := strings.TrimSpace(text[:loc[0]])
	return cleaned, comment
}

var partSeparators = []string{" - ", " – ", " — ", ":"}

// splitPartNumberAndDescription separates a part number from the
// descriptive text, first via explicit separators, then by scanning
// tokens for something that looks like a part number.
func splitPartNumberAndDescription(text string) (string, string) {
	working := strings.Trim(text, " -:;,")
	if working == "" {
		return "", ""
	}

	for _, sep := range partSeparators {
		if !strings.Contains(working, sep) {
			continue
		}
		parts := strings.SplitN(working, sep, 2)
		left := strings.Trim(parts[0], " -:;,")
		right := strings.Trim(parts[1], " -:;,")
		if looksLikePartNumber(left) && right != "" {
			return left, right
		}
		if looksLikePartNumber(right) && left != "" {
			return right, left
		}
	}

	tokens := strings.Fields(working)
	partIndex := -1
	partNumber := ""
	for idx, token := range tokens {
		cleaned := strings.Trim(token, ",;:/()[]")
		if looksLikePartNumber(cleaned) {
			partIndex = idx
			partNumber = cleaned
			break
		}
	}

	var rest []string
	for idx, token := range tokens {
		if idx != partIndex {
			rest = append(rest, token)
		}
	}
	description := strings.Trim(strings.Join(rest, " "), " -:;,")
	description = multiSpaceRe.ReplaceAllString(description, " ")

	return partNumber, description
}

var unitSuffixes = []string{"mm", "cm", "m", "kg", "g", "nm"}

// looksLikePartNumber reports whether a token reads like an article or
// drawing number rather than a dimension or plain word.
func looksLikePartNumber(token string) bool {
	candidate := strings.TrimSpace(token)
	if len(candidate) < 2 {
		return false
	}

	// Dimension values such as "25mm" or "5kg" are not part numbers.
	lowered := strings.ToLower(candidate)
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(lowered, suffix) && isDigits(candidate[:len(candidate)-len(suffix)]) {
			return false
		}
	}

	hasDigit := strings.ContainsAny(candidate, "0123456789")
	hasAlpha := letterRe.MatchString(candidate)
	switch {
	case hasDigit && hasAlpha:
		return true
	case hasDigit && strings.ContainsAny(candidate, "-_/."):
		return true
	case strings.Contains(candidate, "-") && len(candidate) >= 4 &&
		isDigits(strings.ReplaceAll(candidate, "-", "")):
		return true
	case len(candidate) >= 4 && isDigits(candidate):
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
