package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/catalogworks/catalog-service/internal/config"
	"github.com/catalogworks/catalog-service/internal/services/images"
	"github.com/catalogworks/catalog-service/internal/storage"
	"github.com/catalogworks/catalog-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS brands (
			id TEXT PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parent_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			sku VARCHAR(64) UNIQUE NOT NULL,
			name VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			brand_id TEXT REFERENCES brands(id) ON DELETE SET NULL,
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			price BIGINT NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role VARCHAR(50) NOT NULL CHECK (role IN ('admin', 'manager', 'viewer')),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS product_images (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			name VARCHAR(128) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			original_path TEXT NOT NULL,
			thumbnail_path TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			main BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMP
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON product_images(product_id);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// mapError translates driver errors into the storage sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrDuplicate
	}
	return err
}

func (p *Postgres) CreateBrand(ctx context.Context, name, description string, active bool) (string, error) {
	id := uuid.New().String()
	query := `
	INSERT INTO brands (id, name, description, active)
	VALUES ($1, $2, $3, $4)
	`

	if _, err := p.Db.ExecContext(ctx, query, id, name, description, active); err != nil {
		return "", mapError(err)
	}

	return id, nil
}

func (p *Postgres) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	var b types.Brand
	query := `
	SELECT id, name, description, active, created_at FROM brands WHERE id = $1
	`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Description, &b.Active, &b.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &b, nil
}

func (p *Postgres) UpdateBrand(ctx context.Context, brand *types.Brand) error {
	query := `
	UPDATE brands SET name = $2, description = $3, active = $4 WHERE id = $1
	`

	res, err := p.Db.ExecContext(ctx, query, brand.ID, brand.Name, brand.Description, brand.Active)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

func (p *Postgres) DeleteBrand(ctx context.Context, id string) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

func (p *Postgres) CreateCategory(ctx context.Context, name, description string, parentID *string, active bool) (string, error) {
	id := uuid.New().String()
	query := `
	INSERT INTO categories (id, name, description, parent_id, active)
	VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := p.Db.ExecContext(ctx, query, id, name, description, parentID, active); err != nil {
		return "", mapError(err)
	}

	return id, nil
}

func (p *Postgres) GetCategory(ctx context.Context, id string) (*types.Category, error) {
	var c types.Category
	var parentID sql.NullString
	query := `
	SELECT id, name, description, parent_id, active, created_at FROM categories WHERE id = $1
	`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &parentID, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}

	return &c, nil
}

func (p *Postgres) UpdateCategory(ctx context.Context, category *types.Category) error {
	query := `
	UPDATE categories SET name = $2, description = $3, parent_id = $4, active = $5 WHERE id = $1
	`

	res, err := p.Db.ExecContext(ctx, query, category.ID, category.Name, category.Description, category.ParentID, category.Active)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

func (p *Postgres) DeleteCategory(ctx context.Context, id string) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

func (p *Postgres) CreateProduct(ctx context.Context, product *types.Product) (string, error) {
	id := uuid.New().String()
	query := `
	INSERT INTO products (id, sku, name, description, brand_id, category_id, price, stock, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := p.Db.ExecContext(ctx, query, id, product.SKU, product.Name, product.Description,
		product.BrandID, product.CategoryID, product.Price, product.Stock, product.Active)
	if err != nil {
		return "", mapError(err)
	}

	return id, nil
}

func (p *Postgres) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	query := `
	SELECT id, sku, name, description, brand_id, category_id, price, stock, active, created_at, deleted_at
	FROM products WHERE id = $1 AND deleted_at IS NULL
	`

	return p.scanProduct(p.Db.QueryRowContext(ctx, query, id))
}

func (p *Postgres) scanProduct(row *sql.Row) (*types.Product, error) {
	var prod types.Product
	var brandID, categoryID sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(&prod.ID, &prod.SKU, &prod.Name, &prod.Description, &brandID, &categoryID,
		&prod.Price, &prod.Stock, &prod.Active, &prod.CreatedAt, &deletedAt)
	if err != nil {
		return nil, mapError(err)
	}

	if brandID.Valid {
		prod.BrandID = &brandID.String
	}
	if categoryID.Valid {
		prod.CategoryID = &categoryID.String
	}
	if deletedAt.Valid {
		prod.DeletedAt = &deletedAt.Time
	}

	return &prod, nil
}

func (p *Postgres) UpdateProduct(ctx context.Context, product *types.Product) error {
	query := `
	UPDATE products SET name = $2, description = $3, brand_id = $4, category_id = $5,
		price = $6, stock = $7, active = $8
	WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := p.Db.ExecContext(ctx, query, product.ID, product.Name, product.Description,
		product.BrandID, product.CategoryID, product.Price, product.Stock, product.Active)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

// DeleteProduct soft-deletes; the row and its images stay behind the
// deleted_at marker.
func (p *Postgres) DeleteProduct(ctx context.Context, id string) error {
	query := `
	UPDATE products SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := p.Db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

func (p *Postgres) CreateUser(ctx context.Context, email, passwordHash string, role types.Role) (string, error) {
	id := uuid.New().String()
	query := `
	INSERT INTO users (id, email, password, role)
	VALUES ($1, $2, $3, $4)
	`

	if _, err := p.Db.ExecContext(ctx, query, id, email, passwordHash, string(role)); err != nil {
		return "", mapError(err)
	}

	return id, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*types.User, error) {
	var u types.User
	query := `
	SELECT id, email, role, created_at FROM users WHERE id = $1
	`

	err := p.Db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*types.User, string, error) {
	var u types.User
	var hashedPassword string
	query := `
	SELECT id, email, password, role, created_at FROM users WHERE email = $1
	`

	err := p.Db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &hashedPassword, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, "", mapError(err)
	}

	return &u, hashedPassword, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	res, err := p.Db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return checkAffected(res)
}

// GetProductWithImages loads the product and its full image collection,
// soft-deleted images included; the reconciliation engine needs them to
// resolve references and recompute paths. A missing or soft-deleted product
// yields (nil, nil, nil).
func (p *Postgres) GetProductWithImages(ctx context.Context, productID string) (*types.Product, []images.Record, error) {
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	records, err := p.FindAllForProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	return product, records, nil
}

// SaveAll upserts the full record set in one transaction.
func (p *Postgres) SaveAll(ctx context.Context, records []images.Record) error {
	tx, err := p.Db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
	INSERT INTO product_images (id, product_id, name, description, original_path, thumbnail_path, active, main, deleted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		original_path = EXCLUDED.original_path,
		thumbnail_path = EXCLUDED.thumbnail_path,
		active = EXCLUDED.active,
		main = EXCLUDED.main,
		deleted_at = EXCLUDED.deleted_at
	`

	for _, r := range records {
		_, err := tx.ExecContext(ctx, query, r.ID, r.ProductID, r.Name, r.Description,
			r.OriginalPath, r.ThumbnailPath, r.Active, r.Main, r.DeletedAt)
		if err != nil {
			return mapError(err)
		}
	}

	return tx.Commit()
}

func (p *Postgres) FindAllForProduct(ctx context.Context, productID string) ([]images.Record, error) {
	query := `
	SELECT id, product_id, name, description, original_path, thumbnail_path, active, main, deleted_at
	FROM product_images WHERE product_id = $1
	ORDER BY name ASC, active ASC
	`

	rows, err := p.Db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []images.Record
	for rows.Next() {
		var r images.Record
		var deletedAt sql.NullTime

		err := rows.Scan(&r.ID, &r.ProductID, &r.Name, &r.Description,
			&r.OriginalPath, &r.ThumbnailPath, &r.Active, &r.Main, &deletedAt)
		if err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			r.DeletedAt = &deletedAt.Time
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
