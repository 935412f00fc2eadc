package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
)

// DocumentHandler maneja las peticiones HTTP de documentos de stock (protegido).
type DocumentHandler struct {
	docs       *inventory.DocumentUseCase
	validation *inventory.ValidateDocumentUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(docs *inventory.DocumentUseCase, validation *inventory.ValidateDocumentUseCase) *DocumentHandler {
	return &DocumentHandler{docs: docs, validation: validation}
}

// Create godoc
// @Summary      Crear documento
// @Description  RECEIPT, DELIVERY, TRANSFER o ADJUSTMENT. Nace en DRAFT (READY si es RECEIPT con comprobante).
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "Documento con sus líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.docs.Create(c.UserContext(), userID, in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar documento abierto
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var in dto.UpdateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.docs.Update(c.UserContext(), id, in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento por ID
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	out, err := h.docs.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "RECEIPT | DELIVERY | TRANSFER | ADJUSTMENT"
// @Param        status        query  string  false  "DRAFT | WAITING | READY | DONE | CANCELED"
// @Param        warehouse_id  query  string  false  "Bodega origen o destino"
// @Param        product_id    query  string  false  "Producto en alguna línea"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DocumentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.Limit, q.Offset = page(c)
	out, err := h.docs.List(c.UserContext(), q)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Validar documento
// @Description  Aplica el documento al stock de forma atómica y lo deja en DONE.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "ALREADY_VALIDATED, DOCUMENT_CANCELED o INSUFFICIENT_STOCK"
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/validate [post]
func (h *DocumentHandler) Validate(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	doc, err := h.validation.Validate(c.UserContext(), id, userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(inventory.ToDocumentResponse(doc))
}

// Cancel godoc
// @Summary      Cancelar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	out, err := h.docs.Cancel(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
