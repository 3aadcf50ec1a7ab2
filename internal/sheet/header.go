package sheet

import (
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
)

// Canonical field names produced by the header mapper.
const (
	FieldCodigo       = "codigo"
	FieldNome         = "nome"
	FieldCategoria    = "categoria"
	FieldMaterial     = "material"
	FieldTecido1      = "tecido_1"
	FieldTecido2      = "tecido_2"
	FieldMetalVidro   = "metal_vidro"
	FieldDeposito     = "deposito"
	FieldStatus       = "status"
	FieldLocalizacao  = "localizacao"
	FieldSetor        = "setor"
	FieldColuna       = "coluna"
	FieldNivel        = "nivel"
	FieldArea         = "area"
	FieldQd           = "qd"
	FieldLargura      = "largura"
	FieldAltura       = "altura"
	FieldProfundidade = "profundidade"
)

// headerAliases maps normalized spreadsheet labels to canonical field names.
// Keys are stored post-normalization: lowercase, diacritics stripped,
// whitespace collapsed.
var headerAliases = map[string]string{
	"codigo":             FieldCodigo,
	"cod":                FieldCodigo,
	"cod.":               FieldCodigo,
	"codigo do produto":  FieldCodigo,
	"referencia":         FieldCodigo,
	"ref":                FieldCodigo,
	"nome":               FieldNome,
	"produto":            FieldNome,
	"nome do produto":    FieldNome,
	"descricao":          FieldNome,
	"item":               FieldNome,
	"categoria":          FieldCategoria,
	"cat":                FieldCategoria,
	"tipo":               FieldCategoria,
	"tipo de produto":    FieldCategoria,
	"material":           FieldMaterial,
	"tecido":             FieldTecido1,
	"tecido 1":           FieldTecido1,
	"tecido1":            FieldTecido1,
	"tecido 2":           FieldTecido2,
	"tecido2":            FieldTecido2,
	"metal/vidro":        FieldMetalVidro,
	"metal vidro":        FieldMetalVidro,
	"metal ou vidro":     FieldMetalVidro,
	"deposito":           FieldDeposito,
	"loja/deposito":      FieldDeposito,
	"armazem":            FieldDeposito,
	"local de estoque":   FieldDeposito,
	"status":             FieldStatus,
	"situacao":           FieldStatus,
	"estado":             FieldStatus,
	"localizacao":        FieldLocalizacao,
	"local":              FieldLocalizacao,
	"posicao":            FieldLocalizacao,
	"prateleira":         FieldLocalizacao,
	"setor":              FieldSetor,
	"coluna":             FieldColuna,
	"nivel":              FieldNivel,
	"area":               FieldArea,
	"qd":                 FieldQd,
	"qtd":                FieldQd,
	"qtde":               FieldQd,
	"quant":              FieldQd,
	"quantidade":         FieldQd,
	"largura":            FieldLargura,
	"larg":               FieldLargura,
	"largura (cm)":       FieldLargura,
	"altura":             FieldAltura,
	"alt":                FieldAltura,
	"altura (cm)":        FieldAltura,
	"profundidade":       FieldProfundidade,
	"prof":               FieldProfundidade,
	"profundidade (cm)":  FieldProfundidade,
}

// MapHeader maps the raw header row to canonical-field -> column-position.
// Unknown columns are silently dropped so the pipeline stays
// forward-compatible with extra spreadsheet columns; the first occurrence of
// a canonical field wins.
func MapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, label := range header {
		key := normalize.CollapseWhitespace(normalize.Text(label))
		field, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := cols[field]; seen {
			continue
		}
		cols[field] = i
	}
	return cols
}
