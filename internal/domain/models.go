package domain

import "time"

// ImportStatus is the lifecycle state of an Import.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusDone       ImportStatus = "done"
	ImportStatusFailed     ImportStatus = "failed"
)

// Official warehouse names recognized by the normalizer.
const (
	WarehouseLoja     = "Loja"
	WarehouseDeposito = "Depósito"
)

// Import represents one uploaded spreadsheet and its staging outcome.
type Import struct {
	ID              int64        `json:"id" db:"id"`
	Referencia      string       `json:"referencia" db:"referencia"`
	Arquivo         string       `json:"arquivo" db:"arquivo"`
	HashArquivo     string       `json:"hash_arquivo" db:"hash_arquivo"`
	UsuarioID       int64        `json:"usuario_id" db:"usuario_id"`
	Status          ImportStatus `json:"status" db:"status"`
	TotalLinhas     int          `json:"total_linhas" db:"total_linhas"`
	LinhasValidas   int          `json:"linhas_validas" db:"linhas_validas"`
	LinhasInvalidas int          `json:"linhas_invalidas" db:"linhas_invalidas"`
	Resultado       *string      `json:"resultado,omitempty" db:"resultado"`
	CriadoEm        time.Time    `json:"criado_em" db:"criado_em"`
	AtualizadoEm    time.Time    `json:"atualizado_em" db:"atualizado_em"`
}

// Dimensions holds parsed product dimensions in centimeters. Nil fields mean
// "unknown", never zero.
type Dimensions struct {
	LarguraCm      *float64 `json:"w_cm,omitempty"`
	ProfundidadeCm *float64 `json:"p_cm,omitempty"`
	AlturaCm       *float64 `json:"a_cm,omitempty"`
	DiametroCm     *float64 `json:"diam_cm,omitempty"`
}

// Empty reports whether no dimension field is known.
func (d Dimensions) Empty() bool {
	return d.LarguraCm == nil && d.ProfundidadeCm == nil && d.AlturaCm == nil && d.DiametroCm == nil
}

// Location kinds produced by the location parser.
const (
	LocationTipoPosicao = "posicao"
	LocationTipoArea    = "area"
	LocationTipoVazio   = "vazio"
)

// Location is a structured shelf position (sector/column/level) or a named
// area. Positions always carry a composed human-readable Codigo such as
// "6-F1"; an area's Codigo is its own name.
type Location struct {
	Tipo   string `json:"tipo"`
	Setor  *int   `json:"setor,omitempty"`
	Coluna string `json:"coluna,omitempty"`
	Nivel  *int   `json:"nivel,omitempty"`
	Area   string `json:"area,omitempty"`
	Codigo string `json:"codigo,omitempty"`
}

// StagingRow is one parsed-and-normalized spreadsheet line tied to an Import.
// Rows are created once during ingestion and never updated afterward.
type StagingRow struct {
	ID              int64      `db:"id"`
	ImportacaoID    int64      `db:"importacao_id"`
	NumLinha        int        `db:"num_linha"`
	HashLinha       string     `db:"hash_linha"`
	Codigo          string     `db:"codigo"`
	Nome            string     `db:"nome"`
	Categoria       string     `db:"categoria"`
	Material        string     `db:"material"`
	Tecido1         string     `db:"tecido_1"`
	Tecido2         string     `db:"tecido_2"`
	MetalVidro      string     `db:"metal_vidro"`
	Deposito        string     `db:"deposito"`
	DepositoEfetivo string     `db:"deposito_efetivo"`
	StatusTexto     string     `db:"status_texto"`
	EmEstoque       bool       `db:"em_estoque"`
	Localizacao     string     `db:"localizacao"`
	Setor           string     `db:"setor"`
	Coluna          string     `db:"coluna"`
	Nivel           string     `db:"nivel"`
	Area            string     `db:"area"`
	Qtd             int        `db:"qtd"`
	Dimensoes       Dimensions `db:"-"`
	Local           Location   `db:"-"`
	Valido          bool       `db:"valido"`
	Erros           []string   `db:"-"`
	Avisos          []string   `db:"-"`
}

// AttributePair is one normalized (key, value) attribute of a variation. The
// domain only ever uses the four known keys material, tecido_1, tecido_2 and
// metal_vidro.
type AttributePair struct {
	Chave string `json:"chave"`
	Valor string `json:"valor"`
}

// Category is a product category, created lazily during processing.
type Category struct {
	ID   int64  `db:"id"`
	Nome string `db:"nome"`
}

// Product is a catalog product identified by (clean name, category).
type Product struct {
	ID           int64      `db:"id"`
	Nome         string     `db:"nome"`
	NomeCompleto string     `db:"nome_completo"`
	CategoriaID  *int64     `db:"categoria_id"`
	Dimensoes    Dimensions `db:"-"`
}

// Variation is identified by (product, code) and carries price/cost.
type Variation struct {
	ID        int64    `db:"id"`
	ProdutoID int64    `db:"produto_id"`
	Codigo    string   `db:"codigo"`
	Preco     *float64 `db:"preco"`
	Custo     *float64 `db:"custo"`
}

// Warehouse is an official stock location (Loja or Depósito).
type Warehouse struct {
	ID   int64  `db:"id"`
	Nome string `db:"nome"`
}

// Stock is one row per (variation, warehouse). Quantity changes flow
// exclusively through the movement ledger.
type Stock struct {
	ID         int64 `db:"id"`
	VariacaoID int64 `db:"variacao_id"`
	DepositoID int64 `db:"deposito_id"`
	Quantidade int   `db:"quantidade"`
}
