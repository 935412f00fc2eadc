package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
)

// validate instancia compartida; validator.Validate es seguro para uso concurrente y cachea los structs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// errorMapping traduce un sentinel de dominio a status y código HTTP.
type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa solo si un error envuelve más de un sentinel.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrAlreadyValidated, fiber.StatusConflict, "ALREADY_VALIDATED"},
	{domain.ErrDocumentCanceled, fiber.StatusConflict, "DOCUMENT_CANCELED"},
	{domain.ErrDocumentLocked, fiber.StatusConflict, "DOCUMENT_LOCKED"},
	{domain.ErrMissingWarehouse, fiber.StatusUnprocessableEntity, "MISSING_WAREHOUSE"},
	{domain.ErrSameWarehouse, fiber.StatusUnprocessableEntity, "SAME_WAREHOUSE"},
	{domain.ErrUnknownDocumentType, fiber.StatusUnprocessableEntity, "UNKNOWN_DOCUMENT_TYPE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// handleError escribe la respuesta de error correspondiente a err.
func handleError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
			Details: dto.InsufficientStockDetails{
				ProductID:   insufficient.ProductID,
				WarehouseID: insufficient.WarehouseID,
				Available:   insufficient.Available,
				Requested:   insufficient.Requested,
			},
		})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// parseBody decodifica y valida el cuerpo JSON. Si falla ya escribió la respuesta 400 y devuelve false.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos de entrada inválidos",
			Details: validationDetails(err),
		})
	}
	return true, nil
}

// validationDetails lista campo y regla de cada error del validador.
func validationDetails(err error) []fiber.Map {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]fiber.Map, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fiber.Map{"field": fe.Namespace(), "rule": fe.Tag()})
	}
	return out
}

// pathID lee el parámetro :id; si falta ya escribió la respuesta 400.
func pathID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("id")
	if id == "" {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	return id, true, nil
}

// page lee limit/offset con los topes de listados (20 por defecto, máximo 100).
func page(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p.Limit, p.Offset
}
