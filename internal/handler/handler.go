package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/catalog"
	"github.com/dharmasatrya/tripbuilder/internal/files"
	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

func (v *RequestValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

// respondError maps a service error to its HTTP status. Anything it does
// not recognise is a collaborator failure and is reported as 503 so the
// client can retry.
func respondError(c echo.Context, log logrus.FieldLogger, err error) error {
	status, kind := http.StatusServiceUnavailable, "service_unavailable"

	var (
		validationErr models.ValidationError
		stepErr       *booking.StepError
		recordErr     *catalog.InvalidRecordError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case errors.As(err, &stepErr), errors.As(err, &validationErr),
		errors.As(err, &recordErr), errors.As(err, &fieldErrs):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, files.ErrTooLarge):
		status, kind = http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, files.ErrUnsupportedType):
		status, kind = http.StatusUnsupportedMediaType, "unsupported_file_type"
	case errors.Is(err, files.ErrEmpty):
		status, kind = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, booking.ErrDraftNotFound), errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrDocumentNotFound), errors.Is(err, storage.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, booking.ErrFinalizeInProgress):
		status, kind = http.StatusConflict, "conflict"
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
	}

	return c.JSON(status, models.ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Code:    status,
	})
}
