package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/treatly/backend-treats/internal/cart"
	"github.com/treatly/backend-treats/internal/catalog"
	"github.com/treatly/backend-treats/internal/obs"
)

// pricer prices a cart against a catalog document without running the API:
//
//	pricer -catalog treats.json -date 2024-10-01 "Cookie=8" "Key Lime Cheesecake=4"
func main() {
	catalogPath := flag.String("catalog", "treats.json", "path to the catalog JSON document")
	dateArg := flag.String("date", "", "evaluation date, YYYY-MM-DD (defaults to today)")
	flag.Parse()

	logger := obs.NewLogger("console", "info")

	date := time.Now()
	if strings.TrimSpace(*dateArg) != "" {
		parsed, err := time.Parse("2006-01-02", *dateArg)
		if err != nil {
			logger.Fatal().Err(err).Msg("date must be formatted YYYY-MM-DD")
		}
		date = parsed
	}

	items, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}
	logger.Info().Int("items", len(items)).Str("path", *catalogPath).Msg("catalog loaded")

	ctx := context.Background()
	c := cart.New(cart.NewMemoryStore())
	for _, arg := range flag.Args() {
		name, qty, err := parseEntry(arg)
		if err != nil {
			logger.Fatal().Err(err).Str("entry", arg).Msg("invalid cart entry")
		}
		if err := c.Add(ctx, name, qty); err != nil {
			logger.Fatal().Err(err).Str("entry", arg).Msg("add cart entry")
		}
	}

	total, err := c.Total(items, date)
	if err != nil {
		logger.Fatal().Err(err).Msg("price cart")
	}
	fmt.Fprintf(os.Stdout, "Total: %s\n", total.StringFixed(2))
}

// parseEntry splits "Product Name=qty" on the last equals sign so product
// names may contain spaces.
func parseEntry(arg string) (string, int, error) {
	idx := strings.LastIndex(arg, "=")
	if idx <= 0 || idx == len(arg)-1 {
		return "", 0, fmt.Errorf("expected NAME=QUANTITY, got %q", arg)
	}
	name := strings.TrimSpace(arg[:idx])
	qty, err := strconv.Atoi(strings.TrimSpace(arg[idx+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("quantity in %q is not an integer", arg)
	}
	return name, qty, nil
}
