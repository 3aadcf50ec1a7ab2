package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/catalog"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/dimension"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/ledger"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
)

// Result is the outcome of one processing run.
type Result struct {
	Sucesso              bool   `json:"sucesso"`
	DryRun               bool   `json:"dry_run"`
	GruposProcessados    int    `json:"grupos_processados"`
	MovimentacoesCriadas int    `json:"movimentacoes_criadas"`
	Erro                 string `json:"erro,omitempty"`
}

// TxRunner runs a function inside a single transaction, rolling back on error
// or when preview is set.
type TxRunner interface {
	WithTx(ctx context.Context, preview bool, fn func(tx *sqlx.Tx) error) error
}

// ImportStore is the slice of the import repository the processor consumes.
type ImportStore interface {
	GetImport(ctx context.Context, id int64) (*domain.Import, error)
	ListValidRows(ctx context.Context, importID int64) ([]domain.StagingRow, error)
	SetStatus(ctx context.Context, id int64, status domain.ImportStatus, resultado *string) error
}

// CatalogUpserter materializes one catalog entry per group.
type CatalogUpserter interface {
	Upsert(ctx context.Context, ext sqlx.ExtContext, in catalog.UpsertInput) (*domain.Product, *domain.Variation, error)
}

// CategoryStore resolves categories lazily during a run.
type CategoryStore interface {
	GetOrCreateCategory(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Category, error)
}

// StockStore manages warehouses, stock records and locations.
type StockStore interface {
	GetOrCreateWarehouse(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Warehouse, error)
	GetOrCreateStock(ctx context.Context, ext sqlx.ExtContext, variationID, warehouseID int64) (*domain.Stock, error)
	UpsertStockLocation(ctx context.Context, ext sqlx.ExtContext, stockID int64, loc domain.Location) error
}

// Processor reconciles a staged import into the catalog and stock tables in
// one transaction. A dry run performs the same work and rolls it back,
// leaving the import row itself untouched so the run can be repeated.
type Processor struct {
	db         TxRunner
	imports    ImportStore
	catalog    CatalogUpserter
	categories CategoryStore
	stock      StockStore
	ledger     ledger.MovementLedger
}

func NewProcessor(
	db TxRunner,
	imports ImportStore,
	cat CatalogUpserter,
	categories CategoryStore,
	stock StockStore,
	mv ledger.MovementLedger,
) *Processor {
	return &Processor{
		db:         db,
		imports:    imports,
		catalog:    cat,
		categories: categories,
		stock:      stock,
		ledger:     mv,
	}
}

// runCache avoids repeated get-or-create round trips for categories and
// warehouses within one processing run. It lives and dies with the run, so a
// dry-run rollback cannot leave stale IDs behind.
type runCache struct {
	categories map[string]*int64
	warehouses map[string]int64
}

func newRunCache() *runCache {
	return &runCache{
		categories: make(map[string]*int64),
		warehouses: make(map[string]int64),
	}
}

// Process reconciles the given import. Imports already done are refused with
// a structured result; failed imports may be retried.
func (p *Processor) Process(ctx context.Context, importID int64, dryRun bool, userID int64) (*Result, error) {
	res := &Result{DryRun: dryRun}

	imp, err := p.imports.GetImport(ctx, importID)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return res.refuse(fmt.Errorf("import %d not found", importID))
	}
	if imp.Status == domain.ImportStatusDone {
		return res.refuse(fmt.Errorf("import %d already processed", importID))
	}

	rows, err := p.imports.ListValidRows(ctx, importID)
	if err != nil {
		return nil, err
	}
	groups := BuildGroups(rows)

	log.Info().
		Int64("import_id", importID).
		Bool("dry_run", dryRun).
		Int("linhas", len(rows)).
		Int("grupos", len(groups)).
		Msg("processing import")

	if !dryRun {
		if err := p.imports.SetStatus(ctx, importID, domain.ImportStatusProcessing, nil); err != nil {
			return nil, err
		}
	}

	startedAt := time.Now()
	err = p.db.WithTx(ctx, dryRun, func(tx *sqlx.Tx) error {
		cache := newRunCache()
		for _, g := range groups {
			if err := p.applyGroup(ctx, tx, cache, g, imp, dryRun, userID, res); err != nil {
				return fmt.Errorf("group %s: %w", g.Key.Codigo, err)
			}
			res.GruposProcessados++
		}
		return nil
	})
	if err != nil {
		res.Erro = err.Error()
		if !dryRun {
			msg := err.Error()
			if stErr := p.imports.SetStatus(ctx, importID, domain.ImportStatusFailed, &msg); stErr != nil {
				log.Error().Err(stErr).Int64("import_id", importID).Msg("could not mark import as failed")
			}
		}
		return res, err
	}

	res.Sucesso = true
	if !dryRun {
		var resultado *string
		metrics, mErr := json.Marshal(map[string]any{
			"grupos_processados":    res.GruposProcessados,
			"movimentacoes_criadas": res.MovimentacoesCriadas,
			"duracao_ms":            time.Since(startedAt).Milliseconds(),
		})
		if mErr != nil {
			// The commit already happened; a metrics problem must not
			// leave the import stuck in processing.
			log.Error().Err(mErr).Int64("import_id", importID).Msg("could not marshal result metrics")
		} else {
			s := string(metrics)
			resultado = &s
		}
		if err := p.imports.SetStatus(ctx, importID, domain.ImportStatusDone, resultado); err != nil {
			return res, err
		}
	}

	log.Info().
		Int64("import_id", importID).
		Bool("dry_run", dryRun).
		Int("grupos", res.GruposProcessados).
		Int("movimentacoes", res.MovimentacoesCriadas).
		Msg("processing finished")

	return res, nil
}

// refuse fills the structured failure result so callers can surface it
// verbatim alongside the error.
func (r *Result) refuse(err error) (*Result, error) {
	r.Sucesso = false
	r.Erro = err.Error()
	return r, err
}

// applyGroup upserts one group's catalog entry and, for confirmed groups, its
// stock position and entry movement.
func (p *Processor) applyGroup(ctx context.Context, tx *sqlx.Tx, cache *runCache, g *Group, imp *domain.Import, dryRun bool, userID int64, res *Result) error {
	nomeCompleto := g.ChosenName()
	_, nomeLimpo, _ := dimension.Extract(nomeCompleto)
	if nomeLimpo == "" {
		nomeLimpo = normalize.CollapseWhitespace(nomeCompleto)
	}

	categoriaID, err := p.resolveCategory(ctx, tx, cache, g.Key.Categoria, g.Rows[0].Categoria)
	if err != nil {
		return err
	}

	_, variation, err := p.catalog.Upsert(ctx, tx, catalog.UpsertInput{
		NomeLimpo:    nomeLimpo,
		NomeCompleto: nomeCompleto,
		CategoriaID:  categoriaID,
		Dimensoes:    g.ResolveDimensions(),
		Codigo:       g.Key.Codigo,
		Atributos:    g.Attributes(),
	})
	if err != nil {
		return err
	}

	if g.Key.Deposito == "" {
		// Catalog-only group, nothing confirmed in stock.
		return nil
	}

	warehouseID, err := p.resolveWarehouse(ctx, tx, cache, g.Key.Deposito)
	if err != nil {
		return err
	}

	stock, err := p.stock.GetOrCreateStock(ctx, tx, variation.ID, warehouseID)
	if err != nil {
		return err
	}

	if loc := g.ResolveLocation(); loc.Tipo != domain.LocationTipoVazio {
		if err := p.stock.UpsertStockLocation(ctx, tx, stock.ID, loc); err != nil {
			return err
		}
	}

	qty := g.TotalQuantity()
	if qty <= 0 {
		return nil
	}

	if !dryRun {
		_, err = p.ledger.RegisterMovement(ctx, tx, ledger.MovementInput{
			VariacaoID:        variation.ID,
			DestinoDepositoID: warehouseID,
			Tipo:              ledger.KindEntradaDeposito,
			Quantidade:        qty,
			Observacao:        fmt.Sprintf("entrada por reconciliação da importação %s (código %s)", imp.Referencia, g.Key.Codigo),
		}, userID)
		if err != nil {
			return err
		}
	}
	res.MovimentacoesCriadas++
	return nil
}

func (p *Processor) resolveCategory(ctx context.Context, tx *sqlx.Tx, cache *runCache, key, rawName string) (*int64, error) {
	if key == "" {
		return nil, nil
	}
	if id, ok := cache.categories[key]; ok {
		return id, nil
	}

	cat, err := p.categories.GetOrCreateCategory(ctx, tx, normalize.CollapseWhitespace(rawName))
	if err != nil {
		return nil, err
	}
	cache.categories[key] = &cat.ID
	return &cat.ID, nil
}

func (p *Processor) resolveWarehouse(ctx context.Context, tx *sqlx.Tx, cache *runCache, nome string) (int64, error) {
	if id, ok := cache.warehouses[nome]; ok {
		return id, nil
	}

	w, err := p.stock.GetOrCreateWarehouse(ctx, tx, nome)
	if err != nil {
		return 0, err
	}
	cache.warehouses[nome] = w.ID
	return w.ID, nil
}
