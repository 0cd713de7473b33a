package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/catalogworks/catalog-service/internal/storage"
	"github.com/catalogworks/catalog-service/internal/types"
	"github.com/catalogworks/catalog-service/internal/utils/password"
)

// Service covers the plain CRUD surface of the catalog: brands, categories,
// products and users. Image reconciliation lives in the images package.
type Service struct {
	storage  storage.Storage
	validate *validator.Validate
}

func NewService(storage storage.Storage) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
	}
}

func (s *Service) CreateBrand(ctx context.Context, req types.BrandCreateRequest) (*types.Brand, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	id, err := s.storage.CreateBrand(ctx, req.Name, req.Description, req.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	slog.Info("Brand created", slog.String("brand_id", id))

	return s.storage.GetBrand(ctx, id)
}

func (s *Service) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	return s.storage.GetBrand(ctx, id)
}

func (s *Service) UpdateBrand(ctx context.Context, id string, req types.BrandUpdateRequest) (*types.Brand, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	brand, err := s.storage.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		brand.Name = *req.Name
	}
	if req.Description != nil {
		brand.Description = *req.Description
	}
	if req.Active != nil {
		brand.Active = *req.Active
	}

	if err := s.storage.UpdateBrand(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}

	return brand, nil
}

func (s *Service) DeleteBrand(ctx context.Context, id string) error {
	return s.storage.DeleteBrand(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, req types.CategoryCreateRequest) (*types.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.storage.GetCategory(ctx, *req.ParentID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("parent category: %w", storage.ErrNotFound)
			}
			return nil, err
		}
	}

	id, err := s.storage.CreateCategory(ctx, req.Name, req.Description, req.ParentID, req.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	slog.Info("Category created", slog.String("category_id", id))

	return s.storage.GetCategory(ctx, id)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*types.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req types.CategoryUpdateRequest) (*types.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	category, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, errors.New("category cannot be its own parent")
		}
		category.ParentID = req.ParentID
	}
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.storage.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.storage.DeleteCategory(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req types.ProductCreateRequest) (*types.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	product := &types.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active,
	}

	id, err := s.storage.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("sku already in use: %w", err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	slog.Info("Product created", slog.String("product_id", id), slog.String("sku", req.SKU))

	return s.storage.GetProduct(ctx, id)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	return s.storage.GetProduct(ctx, id)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req types.ProductUpdateRequest) (*types.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	product, err := s.storage.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.BrandID != nil {
		product.BrandID = req.BrandID
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.storage.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.storage.DeleteProduct(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, req types.UserCreateRequest) (*types.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := password.HashPassword(req.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	id, err := s.storage.CreateUser(ctx, req.Email, hashedPassword, req.Role)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("email already in use: %w", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("User created", slog.String("user_id", id))

	return s.storage.GetUser(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.storage.GetUser(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.storage.DeleteUser(ctx, id)
}
