// Package normalize provides locale-aware normalization of the free-form text
// found in stock spreadsheets: pt-BR decimals, warehouse names and status
// phrases.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

// StatusEmEstoque is the only status phrase that confirms stock presence.
const StatusEmEstoque = "em estoque"

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripDiacritics removes combining marks ("Depósito" -> "Deposito").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Text lower-cases, strips diacritics and trims. Used for warehouse and
// status comparisons.
func Text(s string) string {
	return strings.TrimSpace(strings.ToLower(StripDiacritics(s)))
}

// CollapseWhitespace squeezes internal runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Warehouse maps free text to one of the official warehouse names. Anything
// that mentions neither "loja" nor "deposito" yields the empty string (no
// official warehouse recognized).
func Warehouse(s string) string {
	n := Text(s)
	switch {
	case strings.Contains(n, "loja"):
		return domain.WarehouseLoja
	case strings.Contains(n, "deposito"):
		return domain.WarehouseDeposito
	}
	return ""
}

// IsConfirmedInStock reports whether an already-normalized status string
// confirms the row is in stock.
func IsConfirmedInStock(statusNormalized string) bool {
	return statusNormalized == StatusEmEstoque
}

// Decimal parses a pt-BR or en-US formatted number. When both separators
// appear, whichever comes last is the decimal separator; a lone comma is
// always decimal. Returns nil on unparsable input, never an error.
func Decimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return nil
		}
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		// Dots acting as thousands separators ("1.234.567").
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Integer parses a numeric string, truncating any fractional part. Returns
// nil for non-numeric input.
func Integer(s string) *int {
	f := Decimal(s)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
