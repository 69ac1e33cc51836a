package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// BindBody parses the JSON body into dst and validates its struct tags
func BindBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errs.Invalid("", "invalid request body: %v", err)
	}
	return Validate(dst)
}

// BindQuery parses query parameters into dst and validates its struct tags
func BindQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return errs.Invalid("", "invalid query parameters: %v", err)
	}
	return Validate(dst)
}

// Validate runs the struct validator and converts the first failure to a ValidationError
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Invalid("", "%v", err)
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return errs.Invalid(field, "is required")
	case "notblank":
		return errs.Invalid(field, "must not be blank")
	case "min", "max", "gte", "lte":
		return errs.Invalid(field, "must satisfy %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return errs.Invalid(field, "must be one of: %s", fe.Param())
	default:
		return errs.Invalid(field, "failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func init() {
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// rejects strings made only of whitespace
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ErrorHandler renders every error as {"error": message} with the status of its kind
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := messageFor(err, code)

	event := logger.Get().Warn()
	if code >= fiber.StatusInternalServerError {
		event = logger.Get().Error()
	}
	event.
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

func statusFor(err error) int {
	var (
		fe  *fiber.Error
		ve  *errs.ValidationError
		pe  *errs.ProviderError
		pre *errs.ParseError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &pe):
		return pe.HTTPStatus()
	case errors.As(err, &pre):
		return fiber.StatusInternalServerError
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, errs.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error, code int) string {
	var (
		fe  *fiber.Error
		ve  *errs.ValidationError
		pe  *errs.ProviderError
		pre *errs.ParseError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &pe):
		return pe.Error()
	case errors.As(err, &pre):
		return fmt.Sprintf("Failed to parse %s", pre.What)
	case errors.Is(err, errs.ErrNotFound):
		return "Not found"
	case errors.Is(err, errs.ErrStoreUnavailable):
		return "Database not configured"
	case errors.Is(err, errs.ErrUnauthorized):
		return "Invalid or missing API key"
	default:
		return "Internal server error"
	}
}
