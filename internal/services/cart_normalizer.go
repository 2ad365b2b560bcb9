package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"storefront/internal/models/request_models"
	"storefront/pkg/utils"
)

const MaxLineQty = 99

type CartLine struct {
	ProductID string
	Qty       int64
}

// NormalizeCart coerces every qty into [0,99], drops empty lines and merges
// duplicate product ids by summing their quantities (capped at 99), keeping
// the order in which each product first appeared.
func NormalizeCart(items []request_models.CartLineInput) ([]CartLine, error) {
	if len(items) == 0 {
		return nil, utils.ErrEmptyCart
	}

	index := make(map[string]int, len(items))
	lines := make([]CartLine, 0, len(items))

	for _, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		qty := coerceQty(item.Qty)
		if productID == "" || qty <= 0 {
			continue
		}

		if i, ok := index[productID]; ok {
			lines[i].Qty = min(lines[i].Qty+qty, MaxLineQty)
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, CartLine{ProductID: productID, Qty: qty})
	}

	if len(lines) == 0 {
		return nil, utils.ErrEmptyCart
	}
	return lines, nil
}

// coerceQty floors numeric input and clamps it to [0,99]. Anything that is
// not a finite number counts as 0.
func coerceQty(v interface{}) int64 {
	var f float64
	switch q := v.(type) {
	case float64:
		f = q
	case float32:
		f = float64(q)
	case int:
		f = float64(q)
	case int64:
		f = float64(q)
	case json.Number:
		parsed, err := q.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Floor(f)
	if f <= 0 {
		return 0
	}
	if f >= MaxLineQty {
		return MaxLineQty
	}
	return int64(f)
}
