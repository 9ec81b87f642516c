package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"          json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null"     json:"email"`
	PasswordHash string `gorm:"column:password;not null"          json:"-"`
	Role         string `gorm:"size:16;not null;default:customer" json:"role"`
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:255;not null"        json:"name"`
	IsActive bool   `gorm:"not null;default:true"    json:"is_active"`
}

type Product struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                        json:"id"`
	SKU        string    `gorm:"column:sku;uniqueIndex;size:64;not null"         json:"sku"`
	Name       string    `gorm:"size:255;not null"                               json:"name"`
	CategoryID uint      `gorm:"not null;index"                                  json:"category_id"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	MRP        float64   `gorm:"column:mrp;not null"                             json:"mrp"`
	Discount   float64   `gorm:"not null;default:0"                              json:"discount"`
	Quantity   int       `gorm:"not null;default:0"                              json:"quantity"`
	ImageURL   *string   `gorm:"size:512"                                        json:"image_url"`
	IsActive   bool      `gorm:"not null;default:true"                           json:"is_active"`
}

// ProductView is a listing row: the product joined with its category name
// and the effective price computed by the query.
type ProductView struct {
	ID             uint    `json:"id"`
	SKU            string  `gorm:"column:sku" json:"sku"`
	Name           string  `json:"name"`
	CategoryID     uint    `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	MRP            float64 `gorm:"column:mrp" json:"mrp"`
	Discount       float64 `json:"discount"`
	EffectivePrice float64 `json:"effective_price"`
	Quantity       int     `json:"quantity"`
	ImageURL       *string `json:"image_url"`
	IsActive       bool    `json:"is_active"`
}

// EffectivePrice is mrp minus the discount percentage.
func (p Product) EffectivePrice() float64 {
	return p.MRP - (p.MRP * p.Discount / 100)
}

func All() []any {
	return []any{&User{}, &Category{}, &Product{}}
}
