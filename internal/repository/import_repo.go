package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

// ImportRepository persists imports and their staging rows.
type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// CreateImport inserts a new import in pending status and fills its ID.
func (r *ImportRepository) CreateImport(ctx context.Context, imp *domain.Import) error {
	query := `
		INSERT INTO importacoes (
			referencia, arquivo, hash_arquivo, usuario_id, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, criado_em, atualizado_em
	`

	err := r.db.QueryRowContext(
		ctx, query,
		imp.Referencia, imp.Arquivo, imp.HashArquivo, imp.UsuarioID, imp.Status,
	).Scan(&imp.ID, &imp.CriadoEm, &imp.AtualizadoEm)
	if err != nil {
		return fmt.Errorf("failed to create import: %w", err)
	}
	return nil
}

// GetImport retrieves an import by ID, or nil when it does not exist.
func (r *ImportRepository) GetImport(ctx context.Context, id int64) (*domain.Import, error) {
	query := `
		SELECT id, referencia, arquivo, hash_arquivo, usuario_id, status,
		       total_linhas, linhas_validas, linhas_invalidas, resultado,
		       criado_em, atualizado_em
		FROM importacoes
		WHERE id = $1
	`

	imp := &domain.Import{}
	err := r.db.GetContext(ctx, imp, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import %d: %w", id, err)
	}
	return imp, nil
}

// UpdateCounts records the staging totals on the import.
func (r *ImportRepository) UpdateCounts(ctx context.Context, id int64, total, valid, invalid int) error {
	query := `
		UPDATE importacoes
		SET total_linhas = $1, linhas_validas = $2, linhas_invalidas = $3,
		    atualizado_em = NOW()
		WHERE id = $4
	`

	if _, err := r.db.ExecContext(ctx, query, total, valid, invalid, id); err != nil {
		return fmt.Errorf("failed to update import counts: %w", err)
	}
	return nil
}

// SetStatus transitions the import lifecycle status, optionally attaching a
// result payload (metrics JSON or the captured error message).
func (r *ImportRepository) SetStatus(ctx context.Context, id int64, status domain.ImportStatus, resultado *string) error {
	query := `
		UPDATE importacoes
		SET status = $1, resultado = COALESCE($2, resultado), atualizado_em = NOW()
		WHERE id = $3
	`

	if _, err := r.db.ExecContext(ctx, query, status, resultado, id); err != nil {
		return fmt.Errorf("failed to set import status: %w", err)
	}
	return nil
}

// InsertStagingRow persists one staging row. Each insert is independent on
// purpose: a failure partway through ingestion leaves the earlier rows
// available for inspection.
func (r *ImportRepository) InsertStagingRow(ctx context.Context, row *domain.StagingRow) error {
	dimensoes, err := json.Marshal(row.Dimensoes)
	if err != nil {
		return fmt.Errorf("failed to marshal dimensions: %w", err)
	}
	local, err := json.Marshal(row.Local)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}
	erros, err := json.Marshal(row.Erros)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}
	avisos, err := json.Marshal(row.Avisos)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO importacao_linhas (
			importacao_id, num_linha, hash_linha, codigo, nome, categoria,
			material, tecido_1, tecido_2, metal_vidro,
			deposito, deposito_efetivo, status_texto, em_estoque,
			localizacao, setor, coluna, nivel, area, qtd,
			dimensoes, local, valido, erros, avisos
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
		RETURNING id
	`

	err = r.db.QueryRowContext(
		ctx, query,
		row.ImportacaoID, row.NumLinha, row.HashLinha, row.Codigo, row.Nome, row.Categoria,
		row.Material, row.Tecido1, row.Tecido2, row.MetalVidro,
		row.Deposito, row.DepositoEfetivo, row.StatusTexto, row.EmEstoque,
		row.Localizacao, row.Setor, row.Coluna, row.Nivel, row.Area, row.Qtd,
		dimensoes, local, row.Valido, erros, avisos,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to insert staging row %d: %w", row.NumLinha, err)
	}
	return nil
}

// ListValidRows returns the valid staging rows of an import in sheet order.
// Invalid rows never reach grouping.
func (r *ImportRepository) ListValidRows(ctx context.Context, importID int64) ([]domain.StagingRow, error) {
	query := `
		SELECT id, importacao_id, num_linha, hash_linha, codigo, nome, categoria,
		       material, tecido_1, tecido_2, metal_vidro,
		       deposito, deposito_efetivo, status_texto, em_estoque,
		       localizacao, setor, coluna, nivel, area, qtd,
		       dimensoes, local, valido, erros, avisos
		FROM importacao_linhas
		WHERE importacao_id = $1 AND valido = TRUE
		ORDER BY num_linha
	`

	rows, err := r.db.QueryContext(ctx, query, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staging rows: %w", err)
	}
	defer rows.Close()

	var out []domain.StagingRow
	for rows.Next() {
		var row domain.StagingRow
		var dimensoes, local, erros, avisos []byte
		err := rows.Scan(
			&row.ID, &row.ImportacaoID, &row.NumLinha, &row.HashLinha, &row.Codigo, &row.Nome, &row.Categoria,
			&row.Material, &row.Tecido1, &row.Tecido2, &row.MetalVidro,
			&row.Deposito, &row.DepositoEfetivo, &row.StatusTexto, &row.EmEstoque,
			&row.Localizacao, &row.Setor, &row.Coluna, &row.Nivel, &row.Area, &row.Qtd,
			&dimensoes, &local, &row.Valido, &erros, &avisos,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging row: %w", err)
		}

		if err := json.Unmarshal(dimensoes, &row.Dimensoes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dimensions: %w", err)
		}
		if err := json.Unmarshal(local, &row.Local); err != nil {
			return nil, fmt.Errorf("failed to unmarshal location: %w", err)
		}
		if err := json.Unmarshal(erros, &row.Erros); err != nil {
			return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
		}
		if err := json.Unmarshal(avisos, &row.Avisos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
