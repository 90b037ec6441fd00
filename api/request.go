package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xraph/khata"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// pathID parses the ":id" route parameter with parse.
func pathID(c *gin.Context, parse func(string) (id.ID, error)) (id.ID, error) {
	v, err := parse(c.Param("id"))
	if err != nil {
		return id.Nil, invalid("id", err)
	}
	return v, nil
}

// queryShop parses the optional "shop" query parameter. An absent value
// yields id.Nil.
func queryShop(c *gin.Context) (id.ShopID, error) {
	s := c.Query("shop")
	if s == "" {
		return id.Nil, nil
	}
	v, err := id.ParseShopID(s)
	if err != nil {
		return id.Nil, invalid("shop", err)
	}
	return v, nil
}

// queryRange parses the optional "from" and "to" query parameters.
func queryRange(c *gin.Context) (from, to types.Date, err error) {
	if from, err = queryDate(c, "from"); err != nil {
		return
	}
	to, err = queryDate(c, "to")
	return
}

func queryDate(c *gin.Context, key string) (types.Date, error) {
	s := c.Query(key)
	if s == "" {
		return types.Date{}, nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, invalid(key, err)
	}
	return d, nil
}

// queryPage parses the optional "limit" and "offset" query parameters.
func queryPage(c *gin.Context) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit"); err != nil {
		return
	}
	offset, err = queryInt(c, "offset")
	return
}

func queryInt(c *gin.Context, key string) (int, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid(key, err)
	}
	if n < 0 {
		return 0, invalid(key, errors.New("must not be negative"))
	}
	return n, nil
}

// bind decodes the JSON body into v.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return invalid("body", err)
	}
	return nil
}

// dropBlankItems removes rows where nothing was entered, such as the empty
// trailing line of an item grid.
func dropBlankItems(items []khata.ItemInput) []khata.ItemInput {
	kept := items[:0]
	for _, it := range items {
		if it.NumberOfBags == 0 && it.WeightKg.IsZero() && it.RatePerKg.IsZero() {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
