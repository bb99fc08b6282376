package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// table implements Table over a merged, read-only rate map.
type table struct {
	rates  map[string]decimal.Decimal
	logger zerolog.Logger
	// No mutex needed - rates are read-only after initialisation
}

// TableConfig holds configuration for the coupon table.
type TableConfig struct {
	// FilePaths is the list of extra coupon files to load. Later files
	// override earlier ones and the defaults.
	FilePaths []string

	// Defaults are the built-in codes, always present unless overridden.
	Defaults map[string]decimal.Decimal
}

// DefaultRates returns the built-in storefront coupons.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"DULCE10": decimal.RequireFromString("0.10"),
		"PASTEL5": decimal.RequireFromString("0.05"),
	}
}

// DefaultTableConfig returns the default table configuration: built-in
// codes only, no files.
func DefaultTableConfig() *TableConfig {
	return &TableConfig{
		Defaults: DefaultRates(),
	}
}

// NewStaticTable returns a table holding only the given rates.
func NewStaticTable(rates map[string]decimal.Decimal) Table {
	t := &table{
		rates:  make(map[string]decimal.Decimal, len(rates)),
		logger: zerolog.Nop(),
	}
	for code, rate := range rates {
		t.rates[NormaliseCode(code)] = rate
	}
	return t
}

// NewTable creates a coupon table. Coupon files are loaded concurrently at
// initialisation time and merged over the defaults.
func NewTable(ctx context.Context, config *TableConfig, loader Loader, logger zerolog.Logger) (Table, error) {
	if config == nil {
		config = DefaultTableConfig()
	}

	logger = logger.With().Str("component", "coupon-table").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Int("default_count", len(config.Defaults)).
		Msg("initialising coupon table")

	t := &table{
		rates:  make(map[string]decimal.Decimal, len(config.Defaults)),
		logger: logger,
	}
	for code, rate := range config.Defaults {
		t.rates[NormaliseCode(code)] = rate
	}

	if len(config.FilePaths) > 0 && loader == nil {
		return nil, fmt.Errorf("coupon files configured but no loader provided")
	}

	type loadResult struct {
		index int
		set   CouponSet
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{
				index: index,
				set:   set,
				err:   err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order so that override precedence is deterministic
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load coupon file")
			return nil, fmt.Errorf("failed to load coupon file %s: %w", config.FilePaths[i], result.err)
		}
		result.set.Each(func(code string, rate decimal.Decimal) {
			t.rates[code] = rate
		})
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("coupon file merged")
	}

	logger.Info().
		Int("total_coupons", len(t.rates)).
		Msg("coupon table initialised successfully")

	return t, nil
}

// Rate returns the discount rate for a code.
func (t *table) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := t.rates[NormaliseCode(code)]
	if !ok {
		t.logger.Debug().Str("coupon_code", code).Msg("coupon code not recognised")
	}
	return rate, ok
}

// Size returns the number of known codes.
func (t *table) Size() int {
	return len(t.rates)
}

// Close marks the table as shut down. The rates are read-only after load,
// so lookups that are still in flight keep working.
func (t *table) Close() error {
	t.logger.Info().Msg("coupon table closed")
	return nil
}
