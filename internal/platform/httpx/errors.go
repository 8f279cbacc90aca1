package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/export"
	"github.com/quotadesk/quotadesk/internal/pricing"
)

// Sentinel errors shared by the domain layer.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("duplicate entry")
	ErrConflict  = errors.New("conflicting state")
)

// RespondError maps domain and core-computation errors to HTTP responses.
// Calculator and paginator errors surface immediately with no partial
// result; a render failure is a bad-gateway class failure and is always
// retryable by re-invoking the export from scratch.
func RespondError(w http.ResponseWriter, err error) {
	var (
		validationErr *pricing.ValidationError
		configErr     *document.ConfigError
		renderErr     *export.RenderError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &validationErr):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", validationErr.Error())
	case errors.As(err, &fieldErrs):
		Problem(w, http.StatusBadRequest, "Validation Failed", fieldErrs.Error())
	case errors.As(err, &configErr):
		Problem(w, http.StatusInternalServerError, "Configuration Error", configErr.Error())
	case errors.As(err, &renderErr):
		Problem(w, http.StatusBadGateway, "Export Failed", renderErr.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
