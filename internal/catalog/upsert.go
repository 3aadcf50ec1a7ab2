package catalog

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/normalize"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/repository"
)

// UpsertInput carries everything needed to materialize one catalog entry.
type UpsertInput struct {
	NomeLimpo    string
	NomeCompleto string
	CategoriaID  *int64
	Dimensoes    domain.Dimensions
	Codigo       string
	Atributos    []domain.AttributePair
}

// Service upserts products, variations and attributes. It never deletes:
// attributes missing from a new import are kept as previously recorded.
type Service struct {
	repo *repository.CatalogRepository
}

func NewService(repo *repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// Upsert ensures the product and variation exist, refreshes dimensions from
// the non-nil incoming values and overwrites the provided attributes.
func (s *Service) Upsert(ctx context.Context, ext sqlx.ExtContext, in UpsertInput) (*domain.Product, *domain.Variation, error) {
	prod, err := s.repo.GetOrCreateProduct(ctx, ext, in.NomeLimpo, in.NomeCompleto, in.CategoriaID)
	if err != nil {
		return nil, nil, err
	}

	if !in.Dimensoes.Empty() {
		if err := s.repo.UpdateProductDimensions(ctx, ext, prod.ID, in.Dimensoes); err != nil {
			return nil, nil, err
		}
	}

	variation, err := s.repo.GetOrCreateVariation(ctx, ext, prod.ID, in.Codigo)
	if err != nil {
		return nil, nil, err
	}

	for _, attr := range in.Atributos {
		chave := strings.ToLower(strings.TrimSpace(attr.Chave))
		valor := normalize.CollapseWhitespace(attr.Valor)
		if chave == "" || valor == "" {
			continue
		}
		if err := s.repo.UpsertAttribute(ctx, ext, variation.ID, chave, valor); err != nil {
			return nil, nil, err
		}
	}

	return prod, variation, nil
}
