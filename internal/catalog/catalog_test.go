package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseCatalog(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "treats.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	items, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	brownie := items[0]
	if brownie.ID != 1 || brownie.Name != "Brownie" {
		t.Fatalf("unexpected first item: %+v", brownie)
	}
	if !brownie.UnitPrice.Equal(decimal.RequireFromString("2.0")) {
		t.Fatalf("brownie price = %s", brownie.UnitPrice)
	}
	if brownie.BulkPricing == nil || brownie.BulkPricing.Amount != 4 {
		t.Fatalf("brownie bulk pricing = %+v", brownie.BulkPricing)
	}
	if !brownie.BulkPricing.TotalPrice.Equal(decimal.RequireFromString("7.0")) {
		t.Fatalf("brownie bulk total = %s", brownie.BulkPricing.TotalPrice)
	}

	cheesecake := items[1]
	if cheesecake.BulkPricing != nil {
		t.Fatalf("cheesecake should have no bulk pricing")
	}

	cookie := items[2]
	if cookie.BulkPricing == nil || cookie.BulkPricing.Amount != 6 {
		t.Fatalf("cookie bulk pricing = %+v", cookie.BulkPricing)
	}
}

func TestParseCatalogWithSales(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "treats_sales.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	items, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	cheesecake := items[1]
	if cheesecake.Sale == nil {
		t.Fatal("cheesecake sale missing")
	}
	if cheesecake.Sale.Date.Kind != RecurrenceMonthAndDay ||
		cheesecake.Sale.Date.Month != time.October || cheesecake.Sale.Date.Day != 1 {
		t.Fatalf("cheesecake sale date = %+v", cheesecake.Sale.Date)
	}
	if cheesecake.Sale.Price.Kind != DiscountPercentageOff || cheesecake.Sale.Price.Percent != 25 {
		t.Fatalf("cheesecake sale price = %+v", cheesecake.Sale.Price)
	}

	cookie := items[2]
	if cookie.Sale == nil || cookie.Sale.Date.Kind != RecurrenceDayOfWeek || cookie.Sale.Date.Weekday != time.Friday {
		t.Fatalf("cookie sale date = %+v", cookie.Sale)
	}
	if cookie.Sale.Price.Kind != DiscountQuantityForFixedPrice || cookie.Sale.Price.Amount != 8 {
		t.Fatalf("cookie sale price = %+v", cookie.Sale.Price)
	}

	donut := items[3]
	if donut.Sale == nil || donut.Sale.Price.Kind != DiscountTwoForOne {
		t.Fatalf("donut sale = %+v", donut.Sale)
	}
	if donut.Sale.Date.Weekday != time.Tuesday {
		t.Fatalf("donut sale weekday = %v", donut.Sale.Date.Weekday)
	}
}

func TestParseRejectsPercentOutOfRange(t *testing.T) {
	for _, pct := range []int{101, -1, 200} {
		doc := fmt.Sprintf(`{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday"},"salePrice":{"percentageOff":%d}}}]}`, pct)
		_, err := Parse([]byte(doc))
		if !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("percentageOff=%d: expected ErrInvalidCatalog, got %v", pct, err)
		}
	}
}

func TestParseAcceptsPercentBounds(t *testing.T) {
	for _, pct := range []int{0, 100} {
		doc := fmt.Sprintf(`{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday"},"salePrice":{"percentageOff":%d}}}]}`, pct)
		items, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("percentageOff=%d: %v", pct, err)
		}
		if items[0].Sale.Price.Percent != pct {
			t.Fatalf("percent = %d, want %d", items[0].Sale.Price.Percent, pct)
		}
	}
}

func TestParseRejectsMalformedVariants(t *testing.T) {
	cases := map[string]string{
		"both recurrence variants": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday","monthAndDay":{"month":1,"day":1}},"salePrice":{"twoForOne":true}}}]}`,
		"no recurrence variant": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{},"salePrice":{"twoForOne":true}}}]}`,
		"unknown weekday": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Froday"},"salePrice":{"twoForOne":true}}}]}`,
		"month out of range": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"monthAndDay":{"month":13,"day":1}},"salePrice":{"twoForOne":true}}}]}`,
		"day out of range": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"monthAndDay":{"month":1,"day":32}},"salePrice":{"twoForOne":true}}}]}`,
		"two discount variants": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday"},"salePrice":{"twoForOne":true,"percentageOff":10}}}]}`,
		"no discount variant": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday"},"salePrice":{}}}]}`,
		"zero bundle size": `{"treats":[{"id":1,"name":"Pie","price":3.0,
			"sale":{"date":{"dayOfWeek":"Monday"},"salePrice":{"quantityForFixedPrice":{"amount":0,"totalPrice":1.0}}}}]}`,
		"duplicate names":  `{"treats":[{"id":1,"name":"Pie","price":3.0},{"id":2,"name":"Pie","price":4.0}]}`,
		"negative price":   `{"treats":[{"id":1,"name":"Pie","price":-3.0}]}`,
		"missing name":     `{"treats":[{"id":1,"name":"","price":3.0}]}`,
		"zero bulk amount": `{"treats":[{"id":1,"name":"Pie","price":3.0,"bulkPricing":{"amount":0,"totalPrice":1.0}}]}`,
		"missing treats":   `{"items":[]}`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
	}
}

func TestRecurrenceMatches(t *testing.T) {
	friday := time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC)
	octoberFirst := time.Date(1999, time.October, 1, 0, 0, 0, 0, time.UTC)

	weekly := Recurrence{Kind: RecurrenceDayOfWeek, Weekday: time.Friday}
	if !weekly.Matches(friday) {
		t.Fatal("weekly recurrence should match a Friday")
	}
	if weekly.Matches(friday.AddDate(0, 0, 1)) {
		t.Fatal("weekly recurrence should not match a Saturday")
	}

	annual := Recurrence{Kind: RecurrenceMonthAndDay, Month: time.October, Day: 1}
	if !annual.Matches(octoberFirst) {
		t.Fatal("annual recurrence should match October 1 in any year")
	}
	if annual.Matches(octoberFirst.AddDate(0, 0, 1)) {
		t.Fatal("annual recurrence should not match October 2")
	}
}

func TestServiceLookup(t *testing.T) {
	items, err := LoadFile(filepath.Join("testdata", "treats.json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	svc, err := NewService(items)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Len() != 4 {
		t.Fatalf("len = %d", svc.Len())
	}
	it, err := svc.Lookup("Cookie")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if it.ID != 3 {
		t.Fatalf("cookie id = %d", it.ID)
	}
	if _, err := svc.Lookup("Croissant"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
