// Package location parses shelf/position codes ("6-F1") and free-text area
// names ("Lavagem") into structured location descriptors.
package location

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

// Legacy single-string format: sector digits, optional separator, 1-2 column
// letters, optional level digits.
var legacyRe = regexp.MustCompile(`^(\d+)[-–—]?([A-Za-z]{1,2})(\d*)$`)

// FromColumns builds a location from the explicit Setor/Coluna/Nivel/Area
// spreadsheet columns, falling back to the legacy single-string column. The
// column-based form always wins over the legacy string when both are present.
func FromColumns(setor, coluna, nivel, area, legacy string) domain.Location {
	setor = strings.TrimSpace(setor)
	coluna = strings.TrimSpace(coluna)
	nivel = strings.TrimSpace(nivel)
	area = strings.TrimSpace(area)

	if isAllDigits(setor) && isSingleLetter(coluna) {
		s, _ := strconv.Atoi(setor)
		loc := domain.Location{
			Tipo:   domain.LocationTipoPosicao,
			Setor:  &s,
			Coluna: strings.ToUpper(coluna),
			Area:   area,
		}
		if isAllDigits(nivel) {
			n, _ := strconv.Atoi(nivel)
			loc.Nivel = &n
		}
		loc.Codigo = composeCode(s, loc.Coluna, loc.Nivel)
		return loc
	}

	if area != "" {
		return domain.Location{Tipo: domain.LocationTipoArea, Area: area, Codigo: area}
	}

	if strings.TrimSpace(legacy) != "" {
		return ParseLegacy(legacy)
	}

	return domain.Location{Tipo: domain.LocationTipoVazio}
}

// ParseLegacy parses the legacy single-string location column. A string
// matching the position format becomes a structured position; any other
// non-empty string is treated as a named area.
func ParseLegacy(s string) domain.Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Location{Tipo: domain.LocationTipoVazio}
	}

	m := legacyRe.FindStringSubmatch(s)
	if m == nil {
		return domain.Location{Tipo: domain.LocationTipoArea, Area: s, Codigo: s}
	}

	setor, _ := strconv.Atoi(m[1])
	loc := domain.Location{
		Tipo:   domain.LocationTipoPosicao,
		Setor:  &setor,
		Coluna: strings.ToUpper(m[2]),
	}
	if m[3] != "" {
		nivel, _ := strconv.Atoi(m[3])
		loc.Nivel = &nivel
	}
	loc.Codigo = composeCode(setor, loc.Coluna, loc.Nivel)
	return loc
}

func composeCode(setor int, coluna string, nivel *int) string {
	if nivel != nil {
		return fmt.Sprintf("%d-%s%d", setor, coluna, *nivel)
	}
	return fmt.Sprintf("%d-%s", setor, coluna)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isSingleLetter(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && unicode.IsLetter(runes[0])
}
