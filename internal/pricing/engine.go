// Package pricing evaluates catalog pricing rules. Every function here is
// pure: the evaluation date is always supplied by the caller, never read from
// the clock, so results are deterministic for a given catalog and cart.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/treatly/backend-treats/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// LineTotal computes the amount owed for qty units of the item on the given
// date. A sale whose recurrence matches the date fully supersedes bulk
// pricing; bulk pricing applies only from its bundle size upward; otherwise
// every unit is billed at the catalog price. Quantities at or below zero owe
// nothing.
func LineTotal(it catalog.Item, qty int, date time.Time) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	if it.Sale != nil && it.Sale.Date.Matches(date) {
		return salePrice(it.Sale.Price, qty, it.UnitPrice)
	}
	if bp := it.BulkPricing; bp != nil && qty >= bp.Amount {
		return bundleTotal(qty, bp.Amount, bp.TotalPrice, it.UnitPrice)
	}
	return decimal.NewFromInt(int64(qty)).Mul(it.UnitPrice)
}

func salePrice(d catalog.Discount, qty int, unit decimal.Decimal) decimal.Decimal {
	switch d.Kind {
	case catalog.DiscountQuantityForFixedPrice:
		return bundleTotal(qty, d.Amount, d.TotalPrice, unit)
	case catalog.DiscountPercentageOff:
		// Single division at the end keeps the arithmetic exact; Percent is
		// guaranteed to be within [0, 100] by catalog validation.
		remaining := hundred.Sub(decimal.NewFromInt(int64(d.Percent)))
		return decimal.NewFromInt(int64(qty)).Mul(unit).Mul(remaining).Div(hundred)
	case catalog.DiscountTwoForOne:
		// Both units of a pair are billed at full price, as is a lone
		// leftover unit, so this deal charges the same as no sale at all.
		// TODO: confirm with the catalog owners whether every second unit
		// was meant to be free before changing billed totals.
		pairs := qty / 2
		remainder := qty % 2
		return decimal.NewFromInt(int64(pairs) * 2).Mul(unit).
			Add(decimal.NewFromInt(int64(remainder)).Mul(unit))
	default:
		return decimal.NewFromInt(int64(qty)).Mul(unit)
	}
}

// bundleTotal bills full bundles at the bundle price and the remainder at the
// unit price. bundleSize is positive by construction.
func bundleTotal(qty, bundleSize int, bundlePrice, unit decimal.Decimal) decimal.Decimal {
	bundles := qty / bundleSize
	remainder := qty % bundleSize
	return decimal.NewFromInt(int64(bundles)).Mul(bundlePrice).
		Add(decimal.NewFromInt(int64(remainder)).Mul(unit))
}

// Total sums line totals across all cart entries, resolving each name against
// the catalog by first match. An entry naming an unknown product aborts the
// whole calculation. Iteration order does not matter; addition commutes and
// entries are independent. An empty cart owes zero.
func Total(entries map[string]int, items []catalog.Item, date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for name, qty := range entries {
		it, err := catalog.Find(items, name)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(LineTotal(it, qty, date))
	}
	return total, nil
}
