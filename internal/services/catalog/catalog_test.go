package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/catalogworks/catalog-service/internal/services/images"
	"github.com/catalogworks/catalog-service/internal/storage"
	"github.com/catalogworks/catalog-service/internal/types"
	"github.com/catalogworks/catalog-service/internal/utils/password"
)

type memStorage struct {
	brands     map[string]*types.Brand
	categories map[string]*types.Category
	products   map[string]*types.Product
	users      map[string]*types.User
	passwords  map[string]string
	records    map[string][]images.Record
}

func newMemStorage() *memStorage {
	return &memStorage{
		brands:     make(map[string]*types.Brand),
		categories: make(map[string]*types.Category),
		products:   make(map[string]*types.Product),
		users:      make(map[string]*types.User),
		passwords:  make(map[string]string),
		records:    make(map[string][]images.Record),
	}
}

func (m *memStorage) CreateBrand(ctx context.Context, name, description string, active bool) (string, error) {
	id := uuid.New().String()
	m.brands[id] = &types.Brand{ID: id, Name: name, Description: description, Active: active, CreatedAt: time.Now()}
	return id, nil
}

func (m *memStorage) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	b, ok := m.brands[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memStorage) UpdateBrand(ctx context.Context, brand *types.Brand) error {
	if _, ok := m.brands[brand.ID]; !ok {
		return storage.ErrNotFound
	}
	copied := *brand
	m.brands[brand.ID] = &copied
	return nil
}

func (m *memStorage) DeleteBrand(ctx context.Context, id string) error {
	if _, ok := m.brands[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.brands, id)
	return nil
}

func (m *memStorage) CreateCategory(ctx context.Context, name, description string, parentID *string, active bool) (string, error) {
	id := uuid.New().String()
	m.categories[id] = &types.Category{ID: id, Name: name, Description: description, ParentID: parentID, Active: active, CreatedAt: time.Now()}
	return id, nil
}

func (m *memStorage) GetCategory(ctx context.Context, id string) (*types.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memStorage) UpdateCategory(ctx context.Context, category *types.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return storage.ErrNotFound
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *memStorage) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memStorage) CreateProduct(ctx context.Context, product *types.Product) (string, error) {
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return "", storage.ErrDuplicate
		}
	}
	id := uuid.New().String()
	copied := *product
	copied.ID = id
	copied.CreatedAt = time.Now()
	m.products[id] = &copied
	return id, nil
}

func (m *memStorage) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, storage.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memStorage) UpdateProduct(ctx context.Context, product *types.Product) error {
	existing, ok := m.products[product.ID]
	if !ok || existing.DeletedAt != nil {
		return storage.ErrNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memStorage) DeleteProduct(ctx context.Context, id string) error {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return storage.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func (m *memStorage) CreateUser(ctx context.Context, email, passwordHash string, role types.Role) (string, error) {
	for _, u := range m.users {
		if u.Email == email {
			return "", storage.ErrDuplicate
		}
	}
	id := uuid.New().String()
	m.users[id] = &types.User{ID: id, Email: email, Role: role, CreatedAt: time.Now()}
	m.passwords[id] = passwordHash
	return id, nil
}

func (m *memStorage) GetUser(ctx context.Context, id string) (*types.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, string, error) {
	for id, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, m.passwords[id], nil
		}
	}
	return nil, "", storage.ErrNotFound
}

func (m *memStorage) DeleteUser(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStorage) GetProductWithImages(ctx context.Context, productID string) (*types.Product, []images.Record, error) {
	p, err := m.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return p, append([]images.Record(nil), m.records[productID]...), nil
}

func (m *memStorage) SaveAll(ctx context.Context, records []images.Record) error {
	for _, r := range records {
		found := false
		existing := m.records[r.ProductID]
		for i := range existing {
			if existing[i].ID == r.ID {
				existing[i] = r
				found = true
				break
			}
		}
		if !found {
			m.records[r.ProductID] = append(existing, r)
		}
	}
	return nil
}

func (m *memStorage) FindAllForProduct(ctx context.Context, productID string) ([]images.Record, error) {
	return append([]images.Record(nil), m.records[productID]...), nil
}

func TestCreateBrand(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	brand, err := svc.CreateBrand(ctx, types.BrandCreateRequest{Name: "Acme", Description: "Tools", Active: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if brand.Name != "Acme" || !brand.Active {
		t.Errorf("Unexpected brand: %+v", brand)
	}

	if _, err := svc.CreateBrand(ctx, types.BrandCreateRequest{}); err == nil {
		t.Fatal("Expected validation error for missing name")
	}
}

func TestUpdateBrand_PartialPatch(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	brand, err := svc.CreateBrand(ctx, types.BrandCreateRequest{Name: "Acme", Description: "Tools", Active: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	newName := "Acme Corp"
	updated, err := svc.UpdateBrand(ctx, brand.ID, types.BrandUpdateRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Errorf("Name = %q", updated.Name)
	}
	if updated.Description != "Tools" || !updated.Active {
		t.Error("Omitted fields were changed")
	}
}

func TestCreateCategory_MissingParent(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	missing := uuid.New().String()
	_, err := svc.CreateCategory(ctx, types.CategoryCreateRequest{Name: "Drills", ParentID: &missing})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected not found for missing parent, got %v", err)
	}
}

func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, types.CategoryCreateRequest{Name: "Drills"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := svc.UpdateCategory(ctx, cat.ID, types.CategoryUpdateRequest{ParentID: &cat.ID}); err == nil {
		t.Fatal("Expected error for self-parenting category")
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	req := types.ProductCreateRequest{SKU: "SKU-1", Name: "Widget", Price: 1000, Stock: 3}
	if _, err := svc.CreateProduct(ctx, req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := svc.CreateProduct(ctx, req)
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("Expected duplicate error, got %v", err)
	}
}

func TestUpdateProduct_PartialPatch(t *testing.T) {
	svc := NewService(newMemStorage())
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, types.ProductCreateRequest{SKU: "SKU-1", Name: "Widget", Price: 1000, Stock: 3, Active: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stock := 7
	updated, err := svc.UpdateProduct(ctx, created.ID, types.ProductUpdateRequest{Stock: &stock})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Stock != 7 {
		t.Errorf("Stock = %d", updated.Stock)
	}
	if updated.Name != "Widget" || updated.Price != 1000 || !updated.Active {
		t.Error("Omitted fields were changed")
	}
}

func TestDeleteProduct_SoftDelete(t *testing.T) {
	store := newMemStorage()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, types.ProductCreateRequest{SKU: "SKU-1", Name: "Widget"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := svc.GetProduct(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected not found after delete, got %v", err)
	}
	// The row survives behind the marker.
	if store.products[created.ID] == nil || store.products[created.ID].DeletedAt == nil {
		t.Error("Expected the product row to remain with deleted_at set")
	}
}

func TestCreateUser(t *testing.T) {
	store := newMemStorage()
	svc := NewService(store)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, types.UserCreateRequest{Email: "admin@example.com", Password: "s3cret-pass", Role: types.RoleAdmin})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.Role != types.RoleAdmin {
		t.Errorf("Role = %s", user.Role)
	}

	// The stored credential is a hash, never the raw password.
	_, hash, err := store.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("Password stored in plain text")
	}
	if !password.CheckPasswordHash("s3cret-pass", hash) {
		t.Fatal("Stored hash does not verify")
	}

	if _, err := svc.CreateUser(ctx, types.UserCreateRequest{Email: "admin@example.com", Password: "other-pass", Role: types.RoleViewer}); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatal("Expected duplicate email to be rejected")
	}

	if _, err := svc.CreateUser(ctx, types.UserCreateRequest{Email: "x@example.com", Password: "s3cret-pass", Role: "superuser"}); err == nil {
		t.Fatal("Expected validation error for unknown role")
	}
}
