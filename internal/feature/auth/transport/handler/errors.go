package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"agency_backend/internal/api"
	"agency_backend/internal/feature/auth/domain"
)

// bindingMessages maps "<json field>.<tag>" to the message shown to clients.
var bindingMessages = map[string]string{
	"email.required":     "Please provide a valid email",
	"email.trimmedemail": "Please provide a valid email",
	"password.required":  "Password is required",
	"password.min":       "Password must be at least 6 characters",
	"name.required":      "Name is required",
	"isActive.required":  "isActive is required",
}

// writeError translates a usecase error into a status code and response envelope.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ValidationFailed(toAPIFields(verr.Fields)))
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, api.Error("Validation failed"))
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, api.Error("Email already registered"))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.Error("Invalid email or password"))
	case errors.Is(err, domain.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, api.Error("Your account has been deactivated"))
	case errors.Is(err, domain.ErrSetupTokenNotConfigured):
		c.JSON(http.StatusForbidden, api.Error("ADMIN_SETUP_TOKEN is not configured on the server"))
	case errors.Is(err, domain.ErrInvalidSetupToken):
		c.JSON(http.StatusForbidden, api.Error("Invalid setup token"))
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.Error("User not found"))
	default:
		slog.Error("unexpected error", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.Error("Something went wrong"))
	}
}

// writeBindError reports a request binding failure. Field-level validator errors become
// entries in errors[]; a body over the size limit is 413; anything else is a generic 400.
func writeBindError(c *gin.Context, err error, req any) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, api.Error("Request body too large"))
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, api.Error("Invalid request body"))
		return
	}

	t := reflect.TypeOf(req)
	fields := make([]api.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonFieldName(t, fe.StructField())
		msg, ok := bindingMessages[name+"."+fe.Tag()]
		if !ok {
			msg = name + " is invalid"
		}
		fields = append(fields, api.FieldError{Field: name, Message: msg})
	}
	c.JSON(http.StatusBadRequest, api.ValidationFailed(fields))
}

func jsonFieldName(t reflect.Type, structField string) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(structField); ok {
			if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
				return tag
			}
		}
	}
	return structField
}

func toAPIFields(in []domain.FieldError) []api.FieldError {
	out := make([]api.FieldError, 0, len(in))
	for _, f := range in {
		out = append(out, api.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
