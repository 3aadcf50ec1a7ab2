package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/dimension"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
)

// GroupKey identifies one reconciliation group. Rows sharing a key collapse
// into a single catalog entry and, when confirmed, a single stock position.
type GroupKey struct {
	Codigo        string
	AtributosHash string
	Deposito      string
	Localizacao   string
	Categoria     string
}

// KeyFor builds the group key of a staging row. Rows not confirmed in stock
// collapse their warehouse and location to empty so that catalog-only rows of
// the same product merge no matter where the sheet claimed they were.
func KeyFor(row domain.StagingRow) GroupKey {
	key := GroupKey{
		Codigo:        strings.ToUpper(strings.TrimSpace(row.Codigo)),
		AtributosHash: HashAttributes(attributesOf(row)),
		Categoria:     normalize.Text(row.Categoria),
	}
	if row.EmEstoque {
		key.Deposito = row.DepositoEfetivo
		key.Localizacao = row.Local.Codigo
	}
	return key
}

// HashAttributes produces a stable digest over normalized attribute pairs so
// equal attribute sets hash identically regardless of source ordering.
func HashAttributes(attrs []domain.AttributePair) string {
	pairs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		chave := strings.ToLower(strings.TrimSpace(a.Chave))
		valor := normalize.Text(normalize.CollapseWhitespace(a.Valor))
		if chave == "" || valor == "" {
			continue
		}
		pairs = append(pairs, chave+"="+valor)
	}
	sort.Strings(pairs)

	h := sha256.New()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func attributesOf(row domain.StagingRow) []domain.AttributePair {
	return []domain.AttributePair{
		{Chave: "material", Valor: row.Material},
		{Chave: "tecido_1", Valor: row.Tecido1},
		{Chave: "tecido_2", Valor: row.Tecido2},
		{Chave: "metal_vidro", Valor: row.MetalVidro},
	}
}

// Group is one reconciliation group with its member rows in sheet order.
type Group struct {
	Key  GroupKey
	Rows []domain.StagingRow
}

// BuildGroups partitions rows into groups, preserving first-appearance order.
func BuildGroups(rows []domain.StagingRow) []*Group {
	byKey := make(map[GroupKey]*Group)
	var out []*Group
	for _, row := range rows {
		key := KeyFor(row)
		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key}
			byKey[key] = g
			out = append(out, g)
		}
		g.Rows = append(g.Rows, row)
	}
	return out
}

// ChosenName picks the longest non-empty member name, assuming the most
// verbose spelling carries the most information.
func (g *Group) ChosenName() string {
	best := ""
	for _, row := range g.Rows {
		if len(row.Nome) > len(best) {
			best = row.Nome
		}
	}
	return best
}

// ResolveDimensions returns the first member's non-empty dimensions, falling
// back to extracting from the chosen name.
func (g *Group) ResolveDimensions() domain.Dimensions {
	for _, row := range g.Rows {
		if !row.Dimensoes.Empty() {
			return row.Dimensoes
		}
	}
	d, _, _ := dimension.Extract(g.ChosenName())
	return d
}

// ResolveLocation returns the first member location that is not empty.
func (g *Group) ResolveLocation() domain.Location {
	for _, row := range g.Rows {
		if row.Local.Tipo != domain.LocationTipoVazio {
			return row.Local
		}
	}
	return domain.Location{Tipo: domain.LocationTipoVazio}
}

// TotalQuantity sums member quantities.
func (g *Group) TotalQuantity() int {
	total := 0
	for _, row := range g.Rows {
		total += row.Qtd
	}
	return total
}

// Attributes merges member attributes, first non-empty value per key wins.
func (g *Group) Attributes() []domain.AttributePair {
	seen := make(map[string]bool)
	var out []domain.AttributePair
	for _, row := range g.Rows {
		for _, a := range attributesOf(row) {
			if a.Valor == "" || seen[a.Chave] {
				continue
			}
			seen[a.Chave] = true
			out = append(out, a)
		}
	}
	return out
}
