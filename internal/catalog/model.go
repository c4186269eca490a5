package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested item does not exist in the catalog.
var ErrNotFound = errors.New("catalog item not found")

// ErrInvalidCatalog is returned when catalog data fails validation at load time.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Item describes one catalog product. Pricing reads UnitPrice and the two
// optional rules; ID and ImageURL are carried for the API surface only.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageURL,omitempty"`
	UnitPrice   decimal.Decimal `json:"price"`
	BulkPricing *BulkPricing    `json:"bulkPricing,omitempty"`
	Sale        *Sale           `json:"sale,omitempty"`
}

// BulkPricing charges a fixed total for every Amount units bought together.
// Leftover units are billed at the item's unit price.
type BulkPricing struct {
	Amount     int             `json:"amount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Sale replaces normal and bulk pricing whenever its recurrence matches the
// evaluation date.
type Sale struct {
	Date  Recurrence `json:"date"`
	Price Discount   `json:"salePrice"`
}

// RecurrenceKind discriminates the closed set of sale date conditions.
type RecurrenceKind string

const (
	RecurrenceDayOfWeek   RecurrenceKind = "dayOfWeek"
	RecurrenceMonthAndDay RecurrenceKind = "monthAndDay"
)

// Recurrence is the date condition of a sale: a weekday that recurs weekly,
// or a month and day that recur annually.
type Recurrence struct {
	Kind    RecurrenceKind
	Weekday time.Weekday
	Month   time.Month
	Day     int
}

// Matches reports whether the recurrence is active on the given date. The
// year is never consulted.
func (r Recurrence) Matches(date time.Time) bool {
	switch r.Kind {
	case RecurrenceDayOfWeek:
		return date.Weekday() == r.Weekday
	case RecurrenceMonthAndDay:
		return date.Month() == r.Month && date.Day() == r.Day
	default:
		return false
	}
}

type recurrenceJSON struct {
	DayOfWeek   *string `json:"dayOfWeek,omitempty"`
	MonthAndDay *struct {
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"monthAndDay,omitempty"`
}

// UnmarshalJSON decodes exactly one recurrence variant and rejects anything
// else at load time.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	var raw recurrenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.DayOfWeek != nil && raw.MonthAndDay == nil:
		weekday, err := parseWeekday(*raw.DayOfWeek)
		if err != nil {
			return err
		}
		*r = Recurrence{Kind: RecurrenceDayOfWeek, Weekday: weekday}
		return nil
	case raw.MonthAndDay != nil && raw.DayOfWeek == nil:
		month, day := raw.MonthAndDay.Month, raw.MonthAndDay.Day
		if month < 1 || month > 12 {
			return fmt.Errorf("%w: sale month must be between 1 and 12, got %d", ErrInvalidCatalog, month)
		}
		if day < 1 || day > 31 {
			return fmt.Errorf("%w: sale day must be between 1 and 31, got %d", ErrInvalidCatalog, day)
		}
		*r = Recurrence{Kind: RecurrenceMonthAndDay, Month: time.Month(month), Day: day}
		return nil
	default:
		return fmt.Errorf("%w: sale date must carry exactly one of dayOfWeek or monthAndDay", ErrInvalidCatalog)
	}
}

// MarshalJSON encodes the active variant.
func (r Recurrence) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RecurrenceDayOfWeek:
		return json.Marshal(map[string]string{"dayOfWeek": r.Weekday.String()})
	case RecurrenceMonthAndDay:
		return json.Marshal(map[string]map[string]int{
			"monthAndDay": {"month": int(r.Month), "day": r.Day},
		})
	default:
		return nil, fmt.Errorf("%w: unknown recurrence kind %q", ErrInvalidCatalog, r.Kind)
	}
}

func parseWeekday(value string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(value, wd.String()) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidCatalog, value)
}

// DiscountKind discriminates the closed set of sale price formulas.
type DiscountKind string

const (
	DiscountQuantityForFixedPrice DiscountKind = "quantityForFixedPrice"
	DiscountPercentageOff         DiscountKind = "percentageOff"
	DiscountTwoForOne             DiscountKind = "twoForOne"
)

// Discount is the price formula applied while a sale is active. Amount and
// TotalPrice belong to the quantityForFixedPrice variant, Percent to
// percentageOff; twoForOne carries no fields.
type Discount struct {
	Kind       DiscountKind
	Amount     int
	TotalPrice decimal.Decimal
	Percent    int
}

type discountJSON struct {
	QuantityForFixedPrice *struct {
		Amount     int             `json:"amount"`
		TotalPrice decimal.Decimal `json:"totalPrice"`
	} `json:"quantityForFixedPrice,omitempty"`
	PercentageOff *int  `json:"percentageOff,omitempty"`
	TwoForOne     *bool `json:"twoForOne,omitempty"`
}

// UnmarshalJSON decodes exactly one discount variant. A percentageOff value
// outside [0, 100] is rejected here so it can never reach the evaluator.
func (d *Discount) UnmarshalJSON(data []byte) error {
	var raw discountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := 0
	if raw.QuantityForFixedPrice != nil {
		set++
	}
	if raw.PercentageOff != nil {
		set++
	}
	if raw.TwoForOne != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: salePrice must carry exactly one of quantityForFixedPrice, percentageOff or twoForOne", ErrInvalidCatalog)
	}
	switch {
	case raw.QuantityForFixedPrice != nil:
		q := raw.QuantityForFixedPrice
		if q.Amount <= 0 {
			return fmt.Errorf("%w: quantityForFixedPrice amount must be positive, got %d", ErrInvalidCatalog, q.Amount)
		}
		if q.TotalPrice.IsNegative() {
			return fmt.Errorf("%w: quantityForFixedPrice totalPrice must not be negative", ErrInvalidCatalog)
		}
		*d = Discount{Kind: DiscountQuantityForFixedPrice, Amount: q.Amount, TotalPrice: q.TotalPrice}
		return nil
	case raw.PercentageOff != nil:
		pct := *raw.PercentageOff
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: percentageOff must be between 0 and 100, got %d", ErrInvalidCatalog, pct)
		}
		*d = Discount{Kind: DiscountPercentageOff, Percent: pct}
		return nil
	default:
		if !*raw.TwoForOne {
			return fmt.Errorf("%w: twoForOne must be true when present", ErrInvalidCatalog)
		}
		*d = Discount{Kind: DiscountTwoForOne}
		return nil
	}
}

// MarshalJSON encodes the active variant.
func (d Discount) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DiscountQuantityForFixedPrice:
		return json.Marshal(map[string]any{
			"quantityForFixedPrice": map[string]any{
				"amount":     d.Amount,
				"totalPrice": d.TotalPrice,
			},
		})
	case DiscountPercentageOff:
		return json.Marshal(map[string]int{"percentageOff": d.Percent})
	case DiscountTwoForOne:
		return json.Marshal(map[string]bool{"twoForOne": true})
	default:
		return nil, fmt.Errorf("%w: unknown discount kind %q", ErrInvalidCatalog, d.Kind)
	}
}

// Validate checks the invariants the JSON decoders cannot see on their own:
// names present, prices non-negative, bulk bundle sizes positive.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%w: item %d has no name", ErrInvalidCatalog, it.ID)
	}
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %q price must not be negative", ErrInvalidCatalog, it.Name)
	}
	if bp := it.BulkPricing; bp != nil {
		if bp.Amount <= 0 {
			return fmt.Errorf("%w: item %q bulkPricing amount must be positive, got %d", ErrInvalidCatalog, it.Name, bp.Amount)
		}
		if bp.TotalPrice.IsNegative() {
			return fmt.Errorf("%w: item %q bulkPricing totalPrice must not be negative", ErrInvalidCatalog, it.Name)
		}
	}
	return nil
}

// Find returns the first item whose name equals the given name.
func Find(items []Item, name string) (Item, error) {
	for _, it := range items {
		if it.Name == name {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}
