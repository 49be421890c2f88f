package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidators wires DTO-level validators into gin's binding engine.
// opamount accepts only strictly positive decimal amounts.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("opamount", func(fl validator.FieldLevel) bool {
			amount, ok := fl.Field().Interface().(decimal.Decimal)
			if !ok {
				return false
			}
			return amount.IsPositive()
		})
	}
}
