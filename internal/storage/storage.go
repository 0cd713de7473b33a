package storage

import (
	"context"
	"errors"

	"github.com/catalogworks/catalog-service/internal/services/images"
	"github.com/catalogworks/catalog-service/internal/types"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Storage interface {
	CreateBrand(ctx context.Context, name, description string, active bool) (string, error)
	GetBrand(ctx context.Context, id string) (*types.Brand, error)
	UpdateBrand(ctx context.Context, brand *types.Brand) error
	DeleteBrand(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, name, description string, parentID *string, active bool) (string, error)
	GetCategory(ctx context.Context, id string) (*types.Category, error)
	UpdateCategory(ctx context.Context, category *types.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, product *types.Product) (string, error)
	GetProduct(ctx context.Context, id string) (*types.Product, error)
	UpdateProduct(ctx context.Context, product *types.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateUser(ctx context.Context, email, passwordHash string, role types.Role) (string, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, string, error)
	DeleteUser(ctx context.Context, id string) error

	images.ParentLookup
	images.ImageRepository
}
