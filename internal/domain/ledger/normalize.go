package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName minúsculas, sin espacios en los extremos y con espacios internos colapsados a uno.
// cases.Caser tiene estado: se crea uno por llamada.
func NormalizeName(s string) string {
	lower := cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(lower), " ")
}

// FoldCode clave de comparación de códigos sin distinguir mayúsculas.
func FoldCode(code string) string {
	return cases.Fold().String(code)
}

// NameUnitKey clave de unicidad (nombre normalizado, unidad exacta).
func NameUnitKey(name, unit string) string {
	return NormalizeName(name) + "|" + unit
}
