package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/shop"
)

func (h *Handler) listShops(c *gin.Context) {
	limit, offset, err := queryPage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	shops, err := h.k.ListShops(c.Request.Context(), shop.ListOpts{
		ActiveOnly: c.Query("active") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"shops": shops})
}

func (h *Handler) createShop(c *gin.Context) {
	var in khata.ShopInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.k.CreateShop(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) getShop(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.k.GetShop(c.Request.Context(), shopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, s)
}

func (h *Handler) updateShop(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var upd khata.ShopUpdate
	if err = bind(c, &upd); err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.k.UpdateShop(c.Request.Context(), shopID, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, s)
}

func (h *Handler) deleteShop(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err = h.k.DeleteShop(c.Request.Context(), shopID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) shopBalance(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	sum, err := h.k.Balance(c.Request.Context(), shopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, sum)
}

func (h *Handler) shopDayWise(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	days, err := h.k.DayWise(c.Request.Context(), shopID, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"days": days})
}

// ==================== Deposits & Payments ====================

func (h *Handler) recordDeposit(c *gin.Context) {
	shopID, in, err := entryRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.k.RecordDeposit(c.Request.Context(), shopID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) listDeposits(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	limit, offset, err := queryPage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	deps, err := h.k.ListDeposits(c.Request.Context(), shopID, deposit.ListOpts{
		From: from, To: to, Limit: limit, Offset: offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"deposits": deps})
}

func (h *Handler) recordPayment(c *gin.Context) {
	shopID, in, err := entryRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.k.RecordPayment(c.Request.Context(), shopID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) listPayments(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	limit, offset, err := queryPage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	pays, err := h.k.ListPayments(c.Request.Context(), shopID, payment.ListOpts{
		From: from, To: to, Limit: limit, Offset: offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"payments": pays})
}

func entryRequest(c *gin.Context) (id.ShopID, khata.EntryInput, error) {
	var in khata.EntryInput
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		return id.Nil, in, err
	}
	if err = bind(c, &in); err != nil {
		return id.Nil, in, err
	}
	return shopID, in, nil
}
