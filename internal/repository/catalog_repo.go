package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

// CatalogRepository performs get-or-create access to categories, products,
// variations and attributes. All methods accept an ExtContext so they run
// inside the caller's transaction.
type CatalogRepository struct{}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) GetOrCreateCategory(ctx context.Context, ext sqlx.ExtContext, nome string) (*domain.Category, error) {
	cat := &domain.Category{}
	err := ext.QueryRowxContext(ctx, `SELECT id, nome FROM categorias WHERE nome = $1`, nome).StructScan(cat)
	if err == nil {
		return cat, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	err = ext.QueryRowxContext(ctx, `INSERT INTO categorias (nome) VALUES ($1) RETURNING id`, nome).Scan(&cat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	cat.Nome = nome
	return cat, nil
}

// GetOrCreateProduct looks a product up by its identity (clean name,
// category). The category may be nil for uncategorized products.
func (r *CatalogRepository) GetOrCreateProduct(ctx context.Context, ext sqlx.ExtContext, nome, nomeCompleto string, categoriaID *int64) (*domain.Product, error) {
	query := `
		SELECT id, nome, nome_completo, categoria_id
		FROM produtos
		WHERE nome = $1 AND categoria_id IS NOT DISTINCT FROM $2
	`

	prod := &domain.Product{}
	err := ext.QueryRowxContext(ctx, query, nome, categoriaID).
		Scan(&prod.ID, &prod.Nome, &prod.NomeCompleto, &prod.CategoriaID)
	if err == nil {
		return prod, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	insert := `
		INSERT INTO produtos (nome, nome_completo, categoria_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err = ext.QueryRowxContext(ctx, insert, nome, nomeCompleto, categoriaID).Scan(&prod.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	prod.Nome = nome
	prod.NomeCompleto = nomeCompleto
	prod.CategoriaID = categoriaID
	return prod, nil
}

// UpdateProductDimensions refreshes the stored dimensions from non-nil
// incoming values only; a known dimension is never overwritten with null.
func (r *CatalogRepository) UpdateProductDimensions(ctx context.Context, ext sqlx.ExtContext, productID int64, d domain.Dimensions) error {
	query := `
		UPDATE produtos
		SET largura_cm      = COALESCE($1, largura_cm),
		    profundidade_cm = COALESCE($2, profundidade_cm),
		    altura_cm       = COALESCE($3, altura_cm),
		    diametro_cm     = COALESCE($4, diametro_cm),
		    atualizado_em   = NOW()
		WHERE id = $5
	`

	if _, err := ext.ExecContext(ctx, query, d.LarguraCm, d.ProfundidadeCm, d.AlturaCm, d.DiametroCm, productID); err != nil {
		return fmt.Errorf("failed to update product dimensions: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetOrCreateVariation(ctx context.Context, ext sqlx.ExtContext, productID int64, codigo string) (*domain.Variation, error) {
	query := `
		SELECT id, produto_id, codigo, preco, custo
		FROM variacoes
		WHERE produto_id = $1 AND codigo = $2
	`

	v := &domain.Variation{}
	err := ext.QueryRowxContext(ctx, query, productID, codigo).StructScan(v)
	if err == nil {
		return v, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get variation: %w", err)
	}

	insert := `INSERT INTO variacoes (produto_id, codigo) VALUES ($1, $2) RETURNING id`
	err = ext.QueryRowxContext(ctx, insert, productID, codigo).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create variation: %w", err)
	}
	v.ProdutoID = productID
	v.Codigo = codigo
	return v, nil
}

// UpsertAttribute creates or overwrites one (variation, key) attribute.
// Attributes absent from a new import are deliberately left in place.
func (r *CatalogRepository) UpsertAttribute(ctx context.Context, ext sqlx.ExtContext, variationID int64, chave, valor string) error {
	query := `
		INSERT INTO atributos (variacao_id, chave, valor)
		VALUES ($1, $2, $3)
		ON CONFLICT (variacao_id, chave)
		DO UPDATE SET valor = EXCLUDED.valor
	`

	if _, err := ext.ExecContext(ctx, query, variationID, chave, valor); err != nil {
		return fmt.Errorf("failed to upsert attribute %s: %w", chave, err)
	}
	return nil
}
