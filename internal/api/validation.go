package api

import (
	"lessonhub/internal/domain"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by the request structs.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("lessonduration", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDuration(fl.Field().String())
			return err == nil
		})
	})
}
