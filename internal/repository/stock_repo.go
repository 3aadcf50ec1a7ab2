package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

// StockRepository manages warehouses, stock records and their locations.
// Quantity changes are out of its reach; those flow through the movement
// ledger.
type StockRepository struct{}

func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

func (r *StockRepository) GetOrCreateWarehouse(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Warehouse, error) {
	query := `
		INSERT INTO depositos (nome)
		VALUES ($1)
		ON CONFLICT (nome)
		DO UPDATE SET nome = EXCLUDED.nome
		RETURNING id
	`

	w := &domain.Warehouse{Nome: nome}
	if err := ext.QueryRowxContext(ctx, query, nome).Scan(&w.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert warehouse: %w", err)
	}
	return w, nil
}

// GetOrCreateStock ensures a stock record exists for (variation, warehouse),
// initialized with zero quantity.
func (r *StockRepository) GetOrCreateStock(ctx context.Context, ext sqlx.ExtContext, variationID, warehouseID int64) (*domain.Stock, error) {
	query := `
		SELECT id, variacao_id, deposito_id, quantidade
		FROM estoques
		WHERE variacao_id = $1 AND deposito_id = $2
	`

	st := &domain.Stock{}
	err := ext.QueryRowxContext(ctx, query, variationID, warehouseID).StructScan(st)
	if err == nil {
		return st, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get stock record: %w", err)
	}

	insert := `
		INSERT INTO estoques (variacao_id, deposito_id, quantidade)
		VALUES ($1, $2, 0)
		RETURNING id
	`
	err = ext.QueryRowxContext(ctx, insert, variationID, warehouseID).Scan(&st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create stock record: %w", err)
	}
	st.VariacaoID = variationID
	st.DepositoID = warehouseID
	return st, nil
}

// UpsertStockLocation attaches the parsed location to a stock record,
// replacing any previous one.
func (r *StockRepository) UpsertStockLocation(ctx context.Context, ext sqlx.ExtContext, stockID int64, loc domain.Location) error {
	query := `
		INSERT INTO estoque_localizacoes (estoque_id, tipo, setor, coluna, nivel, area, codigo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (estoque_id)
		DO UPDATE SET
			tipo = EXCLUDED.tipo,
			setor = EXCLUDED.setor,
			coluna = EXCLUDED.coluna,
			nivel = EXCLUDED.nivel,
			area = EXCLUDED.area,
			codigo = EXCLUDED.codigo
	`

	if _, err := ext.ExecContext(ctx, query, stockID, loc.Tipo, loc.Setor, loc.Coluna, loc.Nivel, loc.Area, loc.Codigo); err != nil {
		return fmt.Errorf("failed to upsert stock location: %w", err)
	}
	return nil
}
