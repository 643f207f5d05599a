package tables

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/bomex/model"
)

// headerAliases maps each canonical field to the header spellings seen in
// English and German drawings. Entries are normalized once at init.
var headerAliases = map[string][]string{
	model.FieldPosition: {
		"position", "pos", "pos.", "item", "itemno", "item no", "item no.",
		"no", "nr", "index",
	},
	model.FieldPartNumber: {
		"part", "partno", "part no", "part-number", "article", "artikel",
		"artnr", "art.nr", "drawing", "drawing no", "zeichnungs",
		"zeichnungsnr", "zeichnung", "bestell", "order", "item code",
		"teilenummer",
	},
	model.FieldDescription: {
		"description", "descr", "desc", "bezeichnung", "benennung",
		"designation", "title", "titel", "beschreibung",
	},
	model.FieldQuantity: {
		"qty", "qty.", "quantity", "menge", "anzahl", "stück", "stückzahl",
		"stk", "st", "pcs", "qty/qty",
	},
	model.FieldUnit: {
		"unit", "einheit", "uom", "ein", "maßeinheit",
	},
	model.FieldMaterial: {
		"material", "werkstoff", "mat",
	},
	model.FieldComment: {
		"comment", "comments", "bemerkung", "bemerkungen", "note", "notes",
		"remark", "remarks",
	},
}

// aliasLookup maps normalized alias text to its canonical field.
var aliasLookup = buildAliasLookup()

func buildAliasLookup() map[string]string {
	lookup := make(map[string]string)
	for canonical, aliases := range headerAliases {
		for _, alias := range aliases {
			if normalized := NormalizeHeader(alias); normalized != "" {
				lookup[normalized] = canonical
			}
		}
	}
	return lookup
}

// foldDiacritics strips combining marks after NFKD decomposition so that
// umlauted headings compare equal to their plain-ASCII spellings.
var foldDiacritics = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeHeader lowercases a header cell, folds diacritics, and strips
// everything that is not a letter or digit.
func NormalizeHeader(cell string) string {
	folded, _, err := transform.String(foldDiacritics, strings.ToLower(cell))
	if err != nil {
		folded = strings.ToLower(cell)
	}
	var sb strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// MatchHeader maps a normalized header token to its canonical field.
func MatchHeader(token string) (string, bool) {
	canonical, ok := aliasLookup[token]
	return canonical, ok
}
