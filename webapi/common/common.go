// Package common holds the response envelope, problem details and request
// helpers shared by every webapi handler.
package common

import (
	"errors"
	"strings"
	"time"

	"github.com/fammee/finance/pkg/domain"
	"github.com/fammee/finance/pkg/domain/budget"
	"github.com/fammee/finance/pkg/domain/user"
	"github.com/fammee/finance/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// MIMEProblemJSON is the RFC 9457 media type.
const MIMEProblemJSON = "application/problem+json"

// SuccessResponseJSON writes data in the standard envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem. The status is derived from
// err unless an int is passed in args; a string in args replaces the detail.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusInternalServerError
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		case validator.ValidationErrors:
			pd.Errors = fieldErrors(v)
		}
	}
	if status == fiber.StatusInternalServerError && err != nil {
		pd.Detail = "an unexpected error occurred"
	}
	pd.Status = status
	return c.Status(status).JSON(pd, MIMEProblemJSON)
}

// ErrorToStatusCode maps domain error kinds to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, budget.ErrNotCreator):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrConsistency):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate parses the request body and validates it. On failure it
// writes the problem response and returns a nil input.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, ProblemDetailsJSON(c, "Validation failed", nil, verrs, "request validation failed", fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// ParseID reads a uuid path parameter.
func ParseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, domain.Validationf("%s must be a valid UUID", name)
	}
	return id, nil
}

// ParseOptionalID parses s, returning nil for an empty string.
func ParseOptionalID(s, name string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, domain.Validationf("%s must be a valid UUID", name)
	}
	return &id, nil
}

// ParseIDs parses a comma separated list of uuids.
func ParseIDs(s, name string) ([]uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, domain.Validationf("%s must be a comma separated list of UUIDs", name)
		}
		out = append(out, id)
	}
	return out, nil
}

// SplitList splits a comma separated query value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", time.DateOnly}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s, name string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Validationf("%s must be a date (YYYY-MM-DD or RFC 3339)", name)
}

// MustActor returns the caller resolved by the auth middleware, or
// ErrUserUnauthorized when none was resolved.
func MustActor(c *fiber.Ctx) (user.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return actor, user.ErrUserUnauthorized
	}
	return actor, nil
}
