package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medsalud/almacen-api/internal/application/dto"
	"github.com/medsalud/almacen-api/internal/application/salidas"
	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// SalidaHandler maneja las peticiones HTTP del módulo de salidas (protegido).
type SalidaHandler struct {
	uc  *salidas.UseCase
	log *logger.Logger
}

// NewSalidaHandler construye el handler.
func NewSalidaHandler(uc *salidas.UseCase, log *logger.Logger) *SalidaHandler {
	return &SalidaHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar salidas
// @Tags         salidas
// @Security     Bearer
// @Produce      json
// @Param        search   query  string  false  "Busca en folio, observaciones y cliente"
// @Param        sort     query  string  false  "fecha | folio | total"
// @Param        dir      query  string  false  "asc | desc"
// @Param        page     query  int     false  "Página (1..n)"
// @Param        limit    query  int     false  "Tamaño de página (max 100)"
// @Success      200  {object}  dto.ListSalidasResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/salidas [get]
func (h *SalidaHandler) List(c *fiber.Ctx) error {
	var req dto.ListSalidasRequest
	if err := c.QueryParser(&req); err != nil {
		return respondError(c, h.log, domain.Validationf("query inválido"))
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, h.log, domain.Validationf("query inválido"))
	}
	resp, err := h.uc.List(c.Context(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary      Detalle de una salida
// @Tags         salidas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la salida"
// @Success      200  {object}  dto.SalidaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salidas/{id} [get]
func (h *SalidaHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary      Registrar una salida
// @Description  Valida stock y lotes en lote, asigna folio (consecutivo o
//               manual) y aplica los decrementos en una sola transacción.
// @Tags         salidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalidaRequest  true  "tipo_salida_id, detalles[], folio manual opcional"
// @Success      201  {object}  dto.SalidaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/salidas [post]
func (h *SalidaHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSalidaRequest
	if err := parseAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	resp, err := h.uc.Create(c.Context(), GetUserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Replace godoc
// @Summary      Reemplazar una salida completa
// @Description  Revierte los efectos de las líneas anteriores y aplica el
//               payload nuevo. Cambiar folio o fecha requiere rol con la
//               capacidad salidas/folio_edit.
// @Tags         salidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la salida"
// @Param        body  body  dto.ReplaceSalidaRequest  true  "payload completo"
// @Success      200  {object}  dto.SalidaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salidas/{id} [put]
func (h *SalidaHandler) Replace(c *fiber.Ctx) error {
	var req dto.ReplaceSalidaRequest
	if err := parseAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	resp, err := h.uc.Replace(c.Context(), GetUserID(c), GetRol(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary      Eliminar una salida
// @Description  Restaura stock y lotes de todas las líneas antes de borrar.
// @Tags         salidas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la salida"
// @Success      200  {object}  dto.DeleteSalidaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salidas/{id} [delete]
func (h *SalidaHandler) Delete(c *fiber.Ctx) error {
	resp, err := h.uc.Delete(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}

// PDF godoc
// @Summary      Vale de salida en PDF
// @Tags         salidas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la salida"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/salidas/{id}/pdf [get]
func (h *SalidaHandler) PDF(c *fiber.Ctx) error {
	pdfBytes, name, err := h.uc.RenderPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Send(pdfBytes)
}
