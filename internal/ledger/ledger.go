package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// MovementKind classifies a stock movement.
type MovementKind string

const (
	// KindEntradaDeposito is a reconciliation entry into a warehouse.
	KindEntradaDeposito MovementKind = "ENTRADA_DEPOSITO"
)

// MovementInput describes one stock movement to be recorded.
type MovementInput struct {
	VariacaoID        int64
	OrigemDepositoID  *int64
	DestinoDepositoID int64
	Tipo              MovementKind
	Quantidade        int
	Observacao        string
	OcorridoEm        time.Time
}

// MovementLedger is the single writer of stock quantities. Every quantity
// change must go through RegisterMovement so the movement history stays the
// source of truth.
type MovementLedger interface {
	RegisterMovement(ctx context.Context, ext sqlx.ExtContext, in MovementInput, actingUserID int64) (int64, error)
}

// PostgresLedger records movements and applies their quantity effect in the
// caller's transaction.
type PostgresLedger struct{}

func NewPostgresLedger() *PostgresLedger {
	return &PostgresLedger{}
}

func (l *PostgresLedger) RegisterMovement(ctx context.Context, ext sqlx.ExtContext, in MovementInput, actingUserID int64) (int64, error) {
	if in.Quantidade <= 0 {
		return 0, fmt.Errorf("movement quantity must be positive, got %d", in.Quantidade)
	}

	insert := `
		INSERT INTO movimentacoes (
			variacao_id, origem_deposito_id, destino_deposito_id,
			tipo, quantidade, observacao, usuario_id, ocorrido_em
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	occurred := in.OcorridoEm
	if occurred.IsZero() {
		occurred = time.Now()
	}

	var id int64
	err := ext.QueryRowxContext(
		ctx, insert,
		in.VariacaoID, in.OrigemDepositoID, in.DestinoDepositoID,
		in.Tipo, in.Quantidade, in.Observacao, actingUserID, occurred,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record movement: %w", err)
	}

	apply := `
		UPDATE estoques
		SET quantidade = quantidade + $1, atualizado_em = NOW()
		WHERE variacao_id = $2 AND deposito_id = $3
	`
	if _, err := ext.ExecContext(ctx, apply, in.Quantidade, in.VariacaoID, in.DestinoDepositoID); err != nil {
		return 0, fmt.Errorf("failed to apply movement to stock: %w", err)
	}

	return id, nil
}
