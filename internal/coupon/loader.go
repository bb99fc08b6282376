package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fileLoader implements Loader for reading gzipped coupon files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon file and returns a CouponSet.
// The file is expected to contain one "CODE,RATE" pair per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) (CouponSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := readCouponSet(ctx, file, l.logger.With().Str("file", filePath).Logger())
	if err != nil {
		return nil, fmt.Errorf("coupon file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", set.Size()).
		Msg("coupon file loaded successfully")

	return set, nil
}

// readCouponSet decompresses r and parses "CODE,RATE" lines. Blank lines and
// lines starting with '#' are ignored; malformed lines are skipped.
func readCouponSet(ctx context.Context, r io.Reader, logger zerolog.Logger) (CouponSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	set := NewMapCouponSet(64).(*mapCouponSet)

	scanner := bufio.NewScanner(gzipReader)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Msg("coupon loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, rate, err := parseCouponLine(line)
		if err == nil {
			err = set.Add(code, rate)
		}
		if err != nil {
			skipped++
			logger.Warn().Err(err).Int("line", lineNo).Msg("skipping malformed coupon line")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("error reading coupon file")
		return nil, fmt.Errorf("error reading coupon file: %w", err)
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("some coupon lines were skipped")
	}

	return set, nil
}

func parseCouponLine(line string) (string, decimal.Decimal, error) {
	code, rawRate, ok := strings.Cut(line, ",")
	if !ok {
		return "", decimal.Zero, fmt.Errorf("expected CODE,RATE")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("invalid rate %q: %w", rawRate, err)
	}
	return code, rate, nil
}
