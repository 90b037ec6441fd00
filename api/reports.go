package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
	"github.com/xraph/khata/types"
)

func (h *Handler) dayWiseAll(c *gin.Context) {
	shopID, err := queryShop(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	groups, err := h.k.DayWiseAll(c.Request.Context(), khata.DayWiseOpts{ShopID: shopID, From: from, To: to})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"days": groups})
}

func (h *Handler) statistics(c *gin.Context) {
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.k.Statistics(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, stats)
}

func (h *Handler) exportStatistics(c *gin.Context) {
	from, to, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	contentType, err := h.k.ExportStatistics(c.Request.Context(), from, to, c.Param("format"), &buf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.k.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, d)
}

// ==================== Settings ====================

type settingsRequest struct {
	GunnyBagCost *types.Money `json:"gunny_bag_cost"`
}

func (h *Handler) getSettings(c *gin.Context) {
	s, err := h.k.Settings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, s)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.GunnyBagCost == nil {
		h.fail(c, khata.ValidationError{Field: "gunny_bag_cost", Message: "is required"})
		return
	}
	s, err := h.k.UpdateGunnyBagCost(c.Request.Context(), *req.GunnyBagCost)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, s)
}
