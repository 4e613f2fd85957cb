package handlers

import (
	"reflect"
	"sync"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the shop specific binding tags to gin's validator:
// datekey (YYYY-MM-DD), partitaiva and codicefiscale. Decimal fields are
// validated as numbers so that gte/lte work on amounts.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
			return domain.ValidateDate(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("partitaiva", func(fl validator.FieldLevel) bool {
			return domain.ValidVATNumber(fl.Field().String())
		})
		_ = v.RegisterValidation("codicefiscale", func(fl validator.FieldLevel) bool {
			code := fl.Field().String()
			// Companies use their partita IVA as codice fiscale.
			return domain.ValidTaxCode(code) || domain.ValidVATNumber(code)
		})
	})
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}
