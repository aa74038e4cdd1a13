package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/application/dto"
	"github.com/almacenix/ledger-api/internal/application/ledger"
	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

// LedgerHandler maneja las peticiones HTTP del libro de inventario (protegido).
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "item_id, location_id, movement_type, quantity, reference_type, reference_id, reason"
// @Success      201   {object}  dto.StockMovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementType, err := entity.ParseMovementType(in.MovementType)
	if err != nil {
		return errorResponse(c, err)
	}
	referenceType, err := entity.ParseReferenceType(in.ReferenceType)
	if err != nil {
		return errorResponse(c, err)
	}
	movement, err := h.uc.RecordMovement(c.Context(), tenantID, ledger.MovementInput{
		ItemID:        in.ItemID,
		LocationID:    in.LocationID,
		MovementType:  movementType,
		Quantity:      in.Quantity,
		ReferenceType: referenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		CreatedBy:     userID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(movement))
}

// InitializeLevel godoc
// @Summary      Inicializar nivel de stock en cero (idempotente)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitializeLevelRequest  true  "item_id, location_id"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ledger/levels/initialize [post]
func (h *LedgerHandler) InitializeLevel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.InitializeLevelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.InitializeStockLevel(c.Context(), tenantID, in.ItemID, in.LocationID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "nivel inicializado"})
}

// GetLevel godoc
// @Summary      Nivel de stock de un par (item, ubicación)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/items/{item_id}/locations/{location_id}/level [get]
func (h *LedgerHandler) GetLevel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	level, err := h.uc.GetStockLevel(c.Context(), tenantID, c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if level == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nivel de stock no encontrado"})
	}
	return c.JSON(dto.FromLevel(level))
}

// GetItemLevels niveles de un item en todas sus ubicaciones.
func (h *LedgerHandler) GetItemLevels(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	levels, err := h.uc.GetItemStockLevels(c.Context(), tenantID, c.Params("item_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(levels), "levels": dto.FromLevels(levels)})
}

// GetLocationLevels niveles de todos los items de una ubicación.
func (h *LedgerHandler) GetLocationLevels(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	levels, err := h.uc.GetLocationStockLevels(c.Context(), tenantID, c.Params("location_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(levels), "levels": dto.FromLevels(levels)})
}

// GetItemTotal cantidad total disponible de un item sumando todas las ubicaciones.
func (h *LedgerHandler) GetItemTotal(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	itemID := c.Params("item_id")
	total, err := h.uc.GetTotalQuantityOnHand(c.Context(), tenantID, itemID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"item_id": itemID, "total_quantity_on_hand": total})
}

// GetItemMovements historial de un item (paginado, más reciente primero).
func (h *LedgerHandler) GetItemMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.GetItemMovements(c.Context(), tenantID, c.Params("item_id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": dto.FromMovements(movements)})
}

// GetLocationMovements historial de una ubicación (paginado, más reciente primero).
func (h *LedgerHandler) GetLocationMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.GetLocationMovements(c.Context(), tenantID, c.Params("location_id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": dto.FromMovements(movements)})
}

// GetPairMovements historial de un par (item, ubicación).
func (h *LedgerHandler) GetPairMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.GetStockMovements(c.Context(), tenantID, c.Params("item_id"), c.Params("location_id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": dto.FromMovements(movements)})
}

// ScanLevels scan por cursor de niveles del tenant; location_id opcional filtra
// una ubicación. Devuelve next_cursor vacío al agotar el scan.
func (h *LedgerHandler) ScanLevels(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var req dto.CursorRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	cursor, err := repository.ParseLevelCursor(req.Cursor)
	if err != nil {
		return errorResponse(c, err)
	}
	var (
		levels []*entity.StockLevel
		next   repository.LevelCursor
	)
	if locationID := c.Query("location_id"); locationID != "" {
		levels, next, err = h.uc.GetStockLevelsByLocation(c.Context(), tenantID, locationID, req.Limit, cursor)
	} else {
		levels, next, err = h.uc.GetAllStockLevels(c.Context(), tenantID, req.Limit, cursor)
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"levels":      dto.FromLevels(levels),
		"next_cursor": next.Encode(),
	})
}

// ScanLevelsBelowThreshold scan por cursor de niveles bajo el umbral dado.
func (h *LedgerHandler) ScanLevelsBelowThreshold(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	threshold, err := decimal.NewFromString(c.Query("threshold", "0"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold inválido"})
	}
	var req dto.CursorRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	cursor, err := repository.ParseLevelCursor(req.Cursor)
	if err != nil {
		return errorResponse(c, err)
	}
	levels, next, err := h.uc.GetStockLevelsBelowThreshold(c.Context(), tenantID, threshold, req.Limit, cursor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"threshold":   threshold,
		"levels":      dto.FromLevels(levels),
		"next_cursor": next.Encode(),
	})
}

// errorResponse mapea errores de dominio a códigos HTTP.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNegativeStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
