package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case models.IsValidation(err), models.IsIllegalTransition(err):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrConcurrencyConflict), errors.Is(err, models.ErrDuplicate):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("🔥 %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// parseBody decodes and validates the JSON body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return models.NewValidationError("body", "cannot parse JSON", err)
	}
	if err := validate.Struct(req); err != nil {
		return models.NewValidationError("body", err.Error(), err)
	}
	return nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, models.NewValidationError(name, "must be a valid UUID", err)
	}
	return id, nil
}

func uuidQuery(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError(name, "must be a valid UUID", err)
	}
	return id, nil
}

// timeQuery parses an RFC3339 query value. An unescaped "+hh:mm" offset
// arrives as a space and is restored first.
func timeQuery(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	raw = strings.ReplaceAll(raw, " ", "+")
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, models.NewValidationError(name, "must be an RFC3339 timestamp", models.ErrInvalidInterval)
	}
	return t, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.NewValidationError(field, "must be a decimal number", models.ErrInvalidAmount)
	}
	return d, nil
}

// currentUserID returns the user_id claim of the authenticated caller.
func currentUserID(c *fiber.Ctx) uuid.UUID {
	raw, _ := middleware.Claims(c)["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

type ActionRequest struct {
	Action string `json:"action" validate:"required"`
}
