// Package dimension extracts width/depth/height (or diameter) measurements
// out of free-text product names. Rules are layered and tried in order; the
// first match wins, so the triple "120x60x75" pattern must run before the
// double pattern on the same string.
package dimension

import (
	"regexp"
	"strings"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
)

const (
	numPat  = `(\d+(?:[.,]\d+)?)`
	unitPat = `\s*(cm|mm)?`
	sepPat  = `\s*[xX×]\s*`
)

var (
	tripleRe  = regexp.MustCompile(`(?i)` + numPat + unitPat + sepPat + numPat + unitPat + sepPat + numPat + unitPat)
	doubleRe  = regexp.MustCompile(`(?i)` + numPat + unitPat + sepPat + numPat + unitPat)
	diamRe    = regexp.MustCompile(`(?i)(?:[Øø]|º|di[âa]m(?:etro)?\.?)\s*[:=]?\s*` + numPat + unitPat)
	labeledRe = regexp.MustCompile(`(?i)\b(largura|altura|profundidade|comprimento|espessura|[lapce])\s*[:=]\s*` + numPat + unitPat)

	glyphReplacer = strings.NewReplacer("Ø", "", "ø", "", "º", "")
	strayWordRe   = regexp.MustCompile(`(?i)\b(?:med(?:idas?)?|cm|mm)\b\.?`)
)

// Extract parses dimensions out of a product name. It returns the parsed
// dimensions, the name with the matched substring removed, and the raw
// matched substring. When nothing matches, the name is returned after generic
// sanitization and the matched substring is empty.
func Extract(name string) (domain.Dimensions, string, string) {
	var d domain.Dimensions

	if m := tripleRe.FindStringSubmatchIndex(name); m != nil {
		vals := unitRun(name, m, 3)
		d.LarguraCm, d.ProfundidadeCm, d.AlturaCm = &vals[0], &vals[1], &vals[2]
		return d, cut(name, m[0], m[1]), name[m[0]:m[1]]
	}

	if m := doubleRe.FindStringSubmatchIndex(name); m != nil {
		vals := unitRun(name, m, 2)
		d.LarguraCm, d.ProfundidadeCm = &vals[0], &vals[1]
		return d, cut(name, m[0], m[1]), name[m[0]:m[1]]
	}

	if m := diamRe.FindStringSubmatchIndex(name); m != nil {
		v := toCm(parseNum(group(name, m, 1)), group(name, m, 2))
		d.DiametroCm = &v
		return d, cut(name, m[0], m[1]), name[m[0]:m[1]]
	}

	if ms := labeledRe.FindAllStringSubmatchIndex(name, -1); len(ms) > 0 {
		parts := make([]string, 0, len(ms))
		for _, m := range ms {
			label := strings.ToLower(group(name, m, 1))
			v := toCm(parseNum(group(name, m, 2)), group(name, m, 3))
			switch label[0] {
			case 'l', 'c':
				d.LarguraCm = &v
			case 'a', 'e':
				d.AlturaCm = &v
			case 'p':
				d.ProfundidadeCm = &v
			}
			parts = append(parts, name[m[0]:m[1]])
		}
		clean := name
		for i := len(ms) - 1; i >= 0; i-- {
			clean = clean[:ms[i][0]] + " " + clean[ms[i][1]:]
		}
		return d, sanitize(clean), strings.Join(parts, " ")
	}

	return d, sanitize(name), ""
}

// unitRun extracts n consecutive (number, unit) pairs from a match, applying
// each dimension's own unit or the nearest preceding one.
func unitRun(s string, m []int, n int) []float64 {
	vals := make([]float64, n)
	lastUnit := ""
	for i := 0; i < n; i++ {
		unit := group(s, m, i*2+2)
		if unit == "" {
			unit = lastUnit
		} else {
			lastUnit = unit
		}
		vals[i] = toCm(parseNum(group(s, m, i*2+1)), unit)
	}
	return vals
}

// group returns the text of capture group i, or "" when it did not match.
func group(s string, m []int, i int) string {
	if m[i*2] < 0 {
		return ""
	}
	return s[m[i*2]:m[i*2+1]]
}

func parseNum(s string) float64 {
	if f := normalize.Decimal(s); f != nil {
		return *f
	}
	return 0
}

// toCm converts a value to centimeters; mm divides by 10, anything else is
// treated as already cm.
func toCm(v float64, unit string) float64 {
	if strings.EqualFold(unit, "mm") {
		return v / 10
	}
	return v
}

func cut(s string, start, end int) string {
	return sanitize(s[:start] + " " + s[end:])
}

// sanitize strips diameter glyphs, stray unit words and measurement words
// left behind after a match, then collapses whitespace and trims leftover
// separators.
func sanitize(s string) string {
	s = glyphReplacer.Replace(s)
	s = strayWordRe.ReplaceAllString(s, " ")
	s = normalize.CollapseWhitespace(s)
	return strings.Trim(s, " -–—,;:./")
}
