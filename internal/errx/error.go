package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

// SystemErrorMessage is the user-facing fallback when internal errors occur.
const SystemErrorMessage = "internal server error"

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// FromCatalog maps repository and domain errors to a status. Unknown errors
// become a 500 with SystemErrorMessage so driver details never leak.
func FromCatalog(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrBasketNotFound):
		return New(err, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrUnknownPriceType),
		errors.Is(err, catalog.ErrDuplicatePriceType):
		return New(err, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrPriceNotFound):
		return New(err, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrProductInUse):
		return New(err, http.StatusConflict, err.Error())
	default:
		return New(err, http.StatusInternalServerError, SystemErrorMessage)
	}
}
