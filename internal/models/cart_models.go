package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogID is a menu item identifier. The menu feed sends it either as a
// JSON number or as a numeric string; both decode to the same value.
type CatalogID int64

// ParseCatalogID converts a raw identifier into a CatalogID.
func ParseCatalogID(raw string) (CatalogID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid catalog id %q", raw)
	}
	return CatalogID(n), nil
}

func (id *CatalogID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseCatalogID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	parsed, err := ParseCatalogID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// CartItem is a line in the customer's cart. LineID is unique per line so the
// same product can appear twice with different instructions.
type CartItem struct {
	CatalogID           CatalogID       `json:"catalogId" validate:"required"`
	LineID              string          `json:"lineId"`
	Name                string          `json:"name" validate:"required"`
	Price               decimal.Decimal `json:"price"`
	Image               string          `json:"image,omitempty"`
	Quantity            int             `json:"quantity" validate:"gte=1"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// LineTotal is price × quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
