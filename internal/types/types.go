package types

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          string     `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	BrandID     *string    `json:"brand_id,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Price       int64      `json:"price"`
	Stock       int        `json:"stock"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type BrandCreateRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=512"`
	Active      bool   `json:"active"`
}

type BrandUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=512"`
	Active      *bool   `json:"active,omitempty"`
}

type CategoryCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Description string  `json:"description" validate:"max=512"`
	ParentID    *string `json:"parent_id,omitempty" validate:"omitempty,uuid4"`
	Active      bool    `json:"active"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=512"`
	ParentID    *string `json:"parent_id,omitempty" validate:"omitempty,uuid4"`
	Active      *bool   `json:"active,omitempty"`
}

type ProductCreateRequest struct {
	SKU         string  `json:"sku" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=128"`
	Description string  `json:"description" validate:"max=512"`
	BrandID     *string `json:"brand_id,omitempty" validate:"omitempty,uuid4"`
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,uuid4"`
	Price       int64   `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Active      bool    `json:"active"`
}

type ProductUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=512"`
	BrandID     *string `json:"brand_id,omitempty" validate:"omitempty,uuid4"`
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,uuid4"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active,omitempty"`
}

type UserCreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=admin manager viewer"`
}
