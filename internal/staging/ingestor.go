package staging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/dimension"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/location"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/repository"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/sheet"
)

// Ingestor turns an uploaded spreadsheet into an Import plus its immutable
// staging rows. It never touches the catalog or stock tables.
type Ingestor struct {
	repo *repository.ImportRepository
}

func NewIngestor(repo *repository.ImportRepository) *Ingestor {
	return &Ingestor{repo: repo}
}

// CreateStaging reads the workbook at path, stages every data row and records
// the totals. Row-level problems are captured on the rows themselves; only a
// file-level failure (unreadable workbook, unusable header) fails the import.
func (ing *Ingestor) CreateStaging(ctx context.Context, path string, userID int64) (*domain.Import, error) {
	fileHash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	imp := &domain.Import{
		Referencia:  uuid.NewString(),
		Arquivo:     filepath.Base(path),
		HashArquivo: fileHash,
		UsuarioID:   userID,
		Status:      domain.ImportStatusPending,
	}
	if err := ing.repo.CreateImport(ctx, imp); err != nil {
		return nil, err
	}

	log.Info().
		Int64("import_id", imp.ID).
		Str("referencia", imp.Referencia).
		Str("arquivo", imp.Arquivo).
		Msg("import created, staging rows")

	header, rows, err := sheet.Read(path)
	if err != nil {
		return imp, ing.failImport(ctx, imp, err)
	}

	// Unknown and absent columns are not fatal: rows stage with warnings
	// and the operator decides before processing.
	cols := sheet.MapHeader(header)

	total, valid := 0, 0
	for i, cells := range rows {
		if isBlankRow(cells) {
			continue
		}
		// Row 1 is the header, so data starts at sheet row 2.
		row := parseRow(cols, cells, i+2, fileHash)
		row.ImportacaoID = imp.ID

		if err := ing.repo.InsertStagingRow(ctx, row); err != nil {
			return imp, ing.failImport(ctx, imp, err)
		}
		total++
		if row.Valido {
			valid++
		}
	}

	if err := ing.repo.UpdateCounts(ctx, imp.ID, total, valid, total-valid); err != nil {
		return imp, ing.failImport(ctx, imp, err)
	}
	imp.TotalLinhas = total
	imp.LinhasValidas = valid
	imp.LinhasInvalidas = total - valid

	log.Info().
		Int64("import_id", imp.ID).
		Int("total", total).
		Int("validas", valid).
		Int("invalidas", total-valid).
		Msg("staging complete")

	return imp, nil
}

func (ing *Ingestor) failImport(ctx context.Context, imp *domain.Import, cause error) error {
	msg := cause.Error()
	if err := ing.repo.SetStatus(ctx, imp.ID, domain.ImportStatusFailed, &msg); err != nil {
		log.Error().Err(err).Int64("import_id", imp.ID).Msg("could not mark import as failed")
	}
	imp.Status = domain.ImportStatusFailed
	return cause
}

// parseRow normalizes one spreadsheet line. It is pure: all validation
// outcomes land in the returned row's Erros and Avisos.
func parseRow(cols map[string]int, cells []string, num int, fileHash string) *domain.StagingRow {
	get := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(cells) {
			return ""
		}
		return normalize.CollapseWhitespace(cells[idx])
	}

	row := &domain.StagingRow{
		NumLinha:    num,
		Codigo:      get(sheet.FieldCodigo),
		Nome:        get(sheet.FieldNome),
		Categoria:   get(sheet.FieldCategoria),
		Material:    get(sheet.FieldMaterial),
		Tecido1:     get(sheet.FieldTecido1),
		Tecido2:     get(sheet.FieldTecido2),
		MetalVidro:  get(sheet.FieldMetalVidro),
		Deposito:    get(sheet.FieldDeposito),
		StatusTexto: get(sheet.FieldStatus),
		Localizacao: get(sheet.FieldLocalizacao),
		Setor:       get(sheet.FieldSetor),
		Coluna:      get(sheet.FieldColuna),
		Nivel:       get(sheet.FieldNivel),
		Area:        get(sheet.FieldArea),
	}
	row.HashLinha = hashRow(fileHash, num, row.Codigo, row.Nome, row.Deposito, row.StatusTexto)

	// Missing identity fields are warnings, not errors: staging is
	// permissive and hard failures belong to the processing phase.
	if row.Codigo == "" {
		row.Avisos = append(row.Avisos, "código ausente")
	}
	if row.Nome == "" {
		row.Avisos = append(row.Avisos, "nome ausente")
	}

	deposito, emEstoque, avisos := resolveStockState(row.Deposito, row.StatusTexto)
	row.DepositoEfetivo = deposito
	row.EmEstoque = emEstoque
	row.Avisos = append(row.Avisos, avisos...)

	qtd := normalize.Integer(get(sheet.FieldQd))
	switch {
	case !emEstoque:
		// Unconfirmed rows reconcile to zero regardless of what the
		// spreadsheet claims.
		row.Qtd = 0
		row.Avisos = append(row.Avisos, "linha não confirmada em estoque: quantidade zerada")
	case qtd == nil:
		row.Erros = append(row.Erros, "quantidade ausente ou inválida")
	case *qtd < 0:
		row.Erros = append(row.Erros, "quantidade negativa")
	default:
		row.Qtd = *qtd
	}

	row.Dimensoes = resolveDimensions(row.Nome,
		get(sheet.FieldLargura), get(sheet.FieldProfundidade), get(sheet.FieldAltura))
	row.Local = location.FromColumns(row.Setor, row.Coluna, row.Nivel, row.Area, row.Localizacao)

	row.Valido = len(row.Erros) == 0
	return row
}

// resolveStockState reconciles the warehouse column with the status column.
// An empty status with a recognized warehouse is silently promoted to
// confirmed; a confirmed status with no recognized warehouse defaults to
// Depósito with a warning.
func resolveStockState(rawDeposito, rawStatus string) (string, bool, []string) {
	var avisos []string

	warehouse := normalize.Warehouse(rawDeposito)
	status := normalize.Text(rawStatus)
	confirmed := normalize.IsConfirmedInStock(status)

	switch {
	case confirmed && warehouse == "":
		warehouse = domain.WarehouseDeposito
		avisos = append(avisos, "depósito não reconhecido: assumido Depósito")
	case !confirmed && status == "" && warehouse != "":
		confirmed = true
	case !confirmed && status != "":
		avisos = append(avisos, fmt.Sprintf("status %q não confirma estoque", rawStatus))
	}

	return warehouse, confirmed, avisos
}

// resolveDimensions prefers the dedicated dimension columns and falls back to
// extracting from the product name only for the fields the columns left empty.
func resolveDimensions(nome, largura, profundidade, altura string) domain.Dimensions {
	d := domain.Dimensions{
		LarguraCm:      normalize.Decimal(largura),
		ProfundidadeCm: normalize.Decimal(profundidade),
		AlturaCm:       normalize.Decimal(altura),
	}

	extracted, _, matched := dimension.Extract(nome)
	if matched == "" {
		return d
	}
	if d.LarguraCm == nil {
		d.LarguraCm = extracted.LarguraCm
	}
	if d.ProfundidadeCm == nil {
		d.ProfundidadeCm = extracted.ProfundidadeCm
	}
	if d.AlturaCm == nil {
		d.AlturaCm = extracted.AlturaCm
	}
	if d.DiametroCm == nil {
		d.DiametroCm = extracted.DiametroCm
	}
	return d
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if normalize.CollapseWhitespace(c) != "" {
			return false
		}
	}
	return true
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashRow(fileHash string, num int, parts ...string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", fileHash, num)
	for _, p := range parts {
		h.Write([]byte("|"))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
