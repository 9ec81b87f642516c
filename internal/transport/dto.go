package transport

import "github.com/Skotchmaster/storefront/internal/service"

type RegisterRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ProductRequest is bound from a multipart form or a JSON body. The image
// file itself travels in the "image" form field.
type ProductRequest struct {
	SKU        string  `json:"sku" form:"sku" validate:"required"`
	Name       string  `json:"name" form:"name" validate:"required"`
	CategoryID uint    `json:"category_id" form:"category_id" validate:"required"`
	MRP        float64 `json:"mrp" form:"mrp" validate:"gte=0"`
	Discount   float64 `json:"discount" form:"discount" validate:"gte=0,lte=100"`
	Quantity   int     `json:"quantity" form:"quantity" validate:"gte=0"`
	ImageURL   *string `json:"image_url" form:"image_url"`
	IsActive   *bool   `json:"is_active" form:"is_active"`
}

func (r ProductRequest) Input() service.ProductInput {
	in := service.ProductInput{
		SKU:        r.SKU,
		Name:       r.Name,
		CategoryID: r.CategoryID,
		MRP:        r.MRP,
		Discount:   r.Discount,
		Quantity:   r.Quantity,
		IsActive:   r.IsActive,
	}
	if r.ImageURL != nil && *r.ImageURL != "" {
		in.ImageURL = r.ImageURL
	}
	return in
}

type CategoryRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	IsActive *bool  `json:"is_active" form:"is_active"`
}

func (r CategoryRequest) Input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, IsActive: r.IsActive}
}
