package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/id"
)

func (h *Handler) createBill(c *gin.Context) {
	shopID, err := pathID(c, id.ParseShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var draft khata.BillDraft
	if err = bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	draft.Items = dropBlankItems(draft.Items)
	b, err := h.k.CreateBill(c.Request.Context(), shopID, draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) listBills(c *gin.Context) {
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
	limit, offset, err := queryPage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	bills, err := h.k.ListBills(c.Request.Context(), bill.ListOpts{
		Query:  bill.Query{ShopID: shopID, From: from, To: to},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"bills": bills})
}

func (h *Handler) todaysBills(c *gin.Context) {
	shopID, err := queryShop(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	bills, err := h.k.TodaysBills(c.Request.Context(), shopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"date": h.k.Today(), "bills": bills})
}

func (h *Handler) getBill(c *gin.Context) {
	billID, err := pathID(c, id.ParseBillID)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.k.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, b)
}

func (h *Handler) editBill(c *gin.Context) {
	billID, err := pathID(c, id.ParseBillID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var edit khata.BillEdit
	if err = bind(c, &edit); err != nil {
		h.fail(c, err)
		return
	}
	edit.Items = dropBlankItems(edit.Items)
	b, err := h.k.EditBill(c.Request.Context(), billID, edit)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, b)
}

func (h *Handler) deleteBill(c *gin.Context) {
	billID, err := pathID(c, id.ParseBillID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err = h.k.DeleteBill(c.Request.Context(), billID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== Items ====================

func (h *Handler) addBillItem(c *gin.Context) {
	billID, err := pathID(c, id.ParseBillID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in khata.ItemInput
	if err = bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.k.AddBillItem(c.Request.Context(), billID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) updateBillItem(c *gin.Context) {
	itemID, err := pathID(c, id.ParseBillItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in khata.ItemInput
	if err = bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.k.UpdateBillItem(c.Request.Context(), itemID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, b)
}

func (h *Handler) removeBillItem(c *gin.Context) {
	itemID, err := pathID(c, id.ParseBillItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.k.RemoveBillItem(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, b)
}

// ==================== Export ====================

func (h *Handler) exportBill(c *gin.Context) {
	billID, err := pathID(c, id.ParseBillID)
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	contentType, err := h.k.ExportBill(c.Request.Context(), billID, c.Param("format"), &buf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
