package dto

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagTrimmedEmail accepts an email that is valid once surrounding whitespace is removed.
// The usecase normalizes emails the same way before using them.
const TagTrimmedEmail = "trimmedemail"

var plain = validator.New()

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation(TagTrimmedEmail, trimmedEmail)
	}
}

func trimmedEmail(fl validator.FieldLevel) bool {
	return plain.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
}
