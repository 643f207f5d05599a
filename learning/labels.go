package learning

import "strings"

// flagLabels name the boolean presence features.
var flagLabels = map[string]string{
	"has_quantity":    "Menge erkannt",
	"has_part_number": "Artikelnummer erkannt",
	"has_material":    "Materialangabe vorhanden",
}

// featureLabels localize the prefixed features for summaries.
var featureLabels = map[string]map[string]string{
	"source": {
		"table":    "Tabellenextraktion",
		"text":     "Textinterpretation",
		"geometry": "Geometrie-Analyse",
		"fallback": "Fallback-Sammlung",
	},
	"mode": {
		"table":       "Dokument enthielt Tabelle",
		"interpreted": "KI-Interpretation der Zeichnung",
	},
	"heuristic": {
		"hoch":    "Heuristische Bewertung: hoch",
		"mittel":  "Heuristische Bewertung: mittel",
		"niedrig": "Heuristische Bewertung: niedrig",
	},
	"fields": {
		"1":  "1 Feld erkannt",
		"2":  "2 Felder erkannt",
		"3":  "3 Felder erkannt",
		"4":  "4 Felder erkannt",
		"5+": "≥5 Felder erkannt",
	},
	"component": {
		"rohr":      "Komponente: Rohr",
		"rohrbogen": "Komponente: Rohrbogen",
		"rohrende":  "Komponente: Rohrende",
		"blech":     "Komponente: Blech",
		"flansch":   "Komponente: Flansch",
	},
}

// describeFeature returns the localized label for a feature name,
// falling back to "prefix: value" for unknown features.
func describeFeature(name string) string {
	if label, ok := flagLabels[name]; ok {
		return label
	}
	prefix, value, found := strings.Cut(name, "::")
	if !found {
		return name
	}
	value = strings.TrimSpace(value)
	if labels, ok := featureLabels[prefix]; ok {
		if label, ok := labels[value]; ok {
			return label
		}
	}
	return prefix + ": " + value
}
