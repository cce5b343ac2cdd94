package handler // handler defines the HTTP handlers for the storefront API

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arunprasath/shopcart/internal/repository"
)

// apiError writes the uniform failure envelope every error funnels into.
func apiError(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// getUserID extracts the authenticated user's object id from context,
// where the JWT middleware stored it as a hex string.
func getUserID(c echo.Context) (primitive.ObjectID, error) {
	s, ok := c.Get("user_id").(string)
	if !ok || s == "" {
		return primitive.NilObjectID, errors.New("no user in context")
	}
	return primitive.ObjectIDFromHex(s)
}

// objectIDParam parses a hex object id from a path or query value.
func objectIDParam(raw string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(raw)
}

// notFoundOr maps repository.ErrNotFound to the given message/status and
// anything else to a 500 with a generic body so provider and driver
// detail never leaks.
func notFoundOr(c echo.Context, err error, status int, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apiError(c, status, message)
	}
	return err
}

// Validator adapts go-playground/validator to Echo's Validator
// interface. Bind-then-Validate is the pattern on every mutating
// endpoint: payload shape is checked before data reaches the domain.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
