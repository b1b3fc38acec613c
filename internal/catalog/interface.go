package catalog

import (
	"context"
	"shop/pkg/domain"
)

//go:generate mockgen -package mockcatalog -source=interface.go -destination=mock/mockcatalog.go *
type Catalog interface {
	CreateCategory(ctx context.Context,
		name, description string,
		parentID *domain.CategoryID) (*domain.Category, error)
	RenameCategory(ctx context.Context, id domain.CategoryID, name string) (*domain.Category, error)
	MoveCategory(ctx context.Context,
		id domain.CategoryID,
		parentID *domain.CategoryID) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id domain.CategoryID) error
	CategoryTree(ctx context.Context) ([]*CategoryNode, error)

	CreateBrand(ctx context.Context, name string) (*domain.Brand, error)
	RenameBrand(ctx context.Context, id domain.BrandID, name string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id domain.BrandID) error
	Brands(ctx context.Context) ([]domain.Brand, error)

	CreateProduct(ctx context.Context, draft ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context,
		id domain.ProductID,
		changes ProductChanges) (*domain.Product, error)
	AdjustStock(ctx context.Context, id domain.ProductID, delta int) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
	ProductByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, string, error)
}
