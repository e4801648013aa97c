package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/model"
	"github.com/hemolink/blood-bank-api/internal/repository"
)

// BloodBankHandler bundles dependencies for blood-bank management and
// inventory adjustments.
type BloodBankHandler struct {
	Store *repository.Store
	Banks *repository.BloodBankRepo
}

func NewBloodBankHandler(st *repository.Store, b *repository.BloodBankRepo) *BloodBankHandler {
	if st == nil || b == nil {
		panic("nil dependency passed to NewBloodBankHandler")
	}
	return &BloodBankHandler{Store: st, Banks: b}
}

type bankReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// CreateBank creates a bank with a zeroed inventory row for each of the
// eight canonical blood types.
func (h *BloodBankHandler) CreateBank(c echo.Context) error {
	var req bankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bank := model.BloodBank{Name: req.Name, Address: req.Address, Phone: req.Phone}
	err := h.Store.WithTx(ctx, func(ctx context.Context) error {
		return h.Banks.Create(ctx, &bank)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create bank failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"blood_bank_id": bank.ID})
}

// UpdateBank overwrites a bank's details.
func (h *BloodBankHandler) UpdateBank(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Banks.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Banks.Update(ctx, &model.BloodBank{ID: id, Name: req.Name, Address: req.Address, Phone: req.Phone}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update bank failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"blood_bank_id": id})
}

// DeleteBank removes a bank and its inventory rows in one transaction.
func (h *BloodBankHandler) DeleteBank(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := h.Banks.GetByID(ctx, id); err != nil {
			return err
		}
		return h.Banks.Delete(ctx, id)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete bank failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBanks returns every bank.
func (h *BloodBankHandler) ListBanks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	banks, err := h.Banks.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"blood_banks": banks})
}

// GetInventory returns the per-type unit counts for one bank, in canonical
// blood-type order.
func (h *BloodBankHandler) GetInventory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Banks.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	inv, err := h.Banks.Inventory(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inventory": inv})
}

type adjustInventoryReq struct {
	BloodType string `json:"blood_type"`
	Delta     int    `json:"delta"` // positive adds units, negative removes; counts clamp at zero
}

// AdjustInventory adds or removes whole units for one blood type at one
// bank. Removals clamp at zero rather than going negative.
func (h *BloodBankHandler) AdjustInventory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adjustInventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidBloodType(req.BloodType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown blood type"})
	}
	if req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delta must be non-zero"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Banks.AdjustInventory(ctx, id, req.BloodType, req.Delta); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "adjust inventory failed"})
	}
	inv, err := h.Banks.Inventory(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"inventory": inv})
}
