package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/catalog"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/ledger"
)

type fakeTxRunner struct {
	called     bool
	preview    bool
	rolledBack bool
}

func (f *fakeTxRunner) WithTx(ctx context.Context, preview bool, fn func(tx *sqlx.Tx) error) error {
	f.called = true
	f.preview = preview
	if err := fn(nil); err != nil {
		f.rolledBack = true
		return err
	}
	if preview {
		f.rolledBack = true
	}
	return nil
}

type statusChange struct {
	status    domain.ImportStatus
	resultado *string
}

type fakeImports struct {
	imp      *domain.Import
	rows     []domain.StagingRow
	statuses []statusChange
}

func (f *fakeImports) GetImport(ctx context.Context, id int64) (*domain.Import, error) {
	return f.imp, nil
}

func (f *fakeImports) ListValidRows(ctx context.Context, importID int64) ([]domain.StagingRow, error) {
	return f.rows, nil
}

func (f *fakeImports) SetStatus(ctx context.Context, id int64, status domain.ImportStatus, resultado *string) error {
	f.statuses = append(f.statuses, statusChange{status, resultado})
	return nil
}

type fakeCatalog struct {
	nextID  int64
	upserts int
}

func (f *fakeCatalog) Upsert(ctx context.Context, ext sqlx.ExtContext, in catalog.UpsertInput) (*domain.Product, *domain.Variation, error) {
	f.nextID++
	f.upserts++
	return &domain.Product{ID: f.nextID, Nome: in.NomeLimpo},
		&domain.Variation{ID: f.nextID, ProdutoID: f.nextID, Codigo: in.Codigo}, nil
}

type fakeCategories struct{}

func (fakeCategories) GetOrCreateCategory(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Category, error) {
	return &domain.Category{ID: 1, Nome: nome}, nil
}

type fakeStock struct{}

func (fakeStock) GetOrCreateWarehouse(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Warehouse, error) {
	return &domain.Warehouse{ID: 1, Nome: nome}, nil
}

func (fakeStock) GetOrCreateStock(ctx context.Context, ext sqlx.ExtContext, variationID, warehouseID int64) (*domain.Stock, error) {
	return &domain.Stock{ID: variationID, VariacaoID: variationID, DepositoID: warehouseID}, nil
}

func (fakeStock) UpsertStockLocation(ctx context.Context, ext sqlx.ExtContext, stockID int64, loc domain.Location) error {
	return nil
}

type fakeLedger struct {
	calls  int
	failOn int // fail on the nth call, 0 never fails
	inputs []ledger.MovementInput
}

func (f *fakeLedger) RegisterMovement(ctx context.Context, ext sqlx.ExtContext, in ledger.MovementInput, actingUserID int64) (int64, error) {
	f.calls++
	if f.failOn != 0 && f.calls >= f.failOn {
		return 0, errors.New("ledger unavailable")
	}
	f.inputs = append(f.inputs, in)
	return int64(f.calls), nil
}

func pendingImport() *domain.Import {
	return &domain.Import{ID: 7, Referencia: "ref-7", Status: domain.ImportStatusPending}
}

func confirmedStagedRow(codigo string, qtd int) domain.StagingRow {
	return domain.StagingRow{
		Codigo:          codigo,
		Nome:            "Produto " + codigo,
		EmEstoque:       true,
		DepositoEfetivo: domain.WarehouseDeposito,
		Qtd:             qtd,
		Valido:          true,
	}
}

func newTestProcessor(runner *fakeTxRunner, imports *fakeImports, led *fakeLedger) *Processor {
	return NewProcessor(runner, imports, &fakeCatalog{}, fakeCategories{}, fakeStock{}, led)
}

func TestProcess_CommitsAndMarksDone(t *testing.T) {
	imports := &fakeImports{
		imp: pendingImport(),
		rows: []domain.StagingRow{
			confirmedStagedRow("X1", 2),
			confirmedStagedRow("X1", 3),
			{Codigo: "X2", Nome: "Produto X2", Valido: true},
		},
	}
	runner := &fakeTxRunner{}
	led := &fakeLedger{}

	res, err := newTestProcessor(runner, imports, led).Process(context.Background(), 7, false, 1)
	require.NoError(t, err)

	assert.True(t, res.Sucesso)
	assert.Equal(t, 2, res.GruposProcessados)
	assert.Equal(t, 1, res.MovimentacoesCriadas)

	require.Len(t, led.inputs, 1)
	assert.Equal(t, 5, led.inputs[0].Quantidade)
	assert.Equal(t, ledger.KindEntradaDeposito, led.inputs[0].Tipo)
	assert.Contains(t, led.inputs[0].Observacao, "ref-7")

	assert.False(t, runner.preview)
	assert.False(t, runner.rolledBack)
	require.Len(t, imports.statuses, 2)
	assert.Equal(t, domain.ImportStatusProcessing, imports.statuses[0].status)
	assert.Equal(t, domain.ImportStatusDone, imports.statuses[1].status)
	require.NotNil(t, imports.statuses[1].resultado)
	assert.Contains(t, *imports.statuses[1].resultado, "movimentacoes_criadas")
}

func TestProcess_DryRunSkipsLedgerAndImportRow(t *testing.T) {
	imports := &fakeImports{
		imp:  pendingImport(),
		rows: []domain.StagingRow{confirmedStagedRow("X1", 4)},
	}
	runner := &fakeTxRunner{}
	led := &fakeLedger{}

	res, err := newTestProcessor(runner, imports, led).Process(context.Background(), 7, true, 1)
	require.NoError(t, err)

	assert.True(t, res.Sucesso)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.MovimentacoesCriadas)
	assert.Zero(t, led.calls)
	assert.True(t, runner.preview)
	assert.True(t, runner.rolledBack)
	assert.Empty(t, imports.statuses)
}

func TestProcess_LedgerFailureAbortsBatch(t *testing.T) {
	imports := &fakeImports{
		imp: pendingImport(),
		rows: []domain.StagingRow{
			confirmedStagedRow("X1", 2),
			confirmedStagedRow("X2", 3),
		},
	}
	runner := &fakeTxRunner{}
	led := &fakeLedger{failOn: 2}

	res, err := newTestProcessor(runner, imports, led).Process(context.Background(), 7, false, 1)
	require.Error(t, err)

	assert.False(t, res.Sucesso)
	assert.Contains(t, res.Erro, "ledger unavailable")
	assert.True(t, runner.rolledBack)

	require.Len(t, imports.statuses, 2)
	assert.Equal(t, domain.ImportStatusFailed, imports.statuses[1].status)
	require.NotNil(t, imports.statuses[1].resultado)
	assert.Contains(t, *imports.statuses[1].resultado, "ledger unavailable")
}

func TestProcess_RefusesDoneImport(t *testing.T) {
	imp := pendingImport()
	imp.Status = domain.ImportStatusDone
	imports := &fakeImports{imp: imp}
	runner := &fakeTxRunner{}

	res, err := newTestProcessor(runner, imports, &fakeLedger{}).Process(context.Background(), 7, false, 1)
	require.Error(t, err)

	require.NotNil(t, res)
	assert.False(t, res.Sucesso)
	assert.Contains(t, res.Erro, "already processed")
	assert.False(t, runner.called)
	assert.Empty(t, imports.statuses)
}

func TestProcess_ImportNotFound(t *testing.T) {
	imports := &fakeImports{}
	runner := &fakeTxRunner{}

	res, err := newTestProcessor(runner, imports, &fakeLedger{}).Process(context.Background(), 99, false, 1)
	require.Error(t, err)

	require.NotNil(t, res)
	assert.False(t, res.Sucesso)
	assert.Contains(t, res.Erro, "not found")
	assert.False(t, runner.called)
}
