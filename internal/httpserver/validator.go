package httpserver

import "github.com/go-playground/validator/v10"

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}
