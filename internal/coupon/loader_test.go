package coupon

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gzipLines returns the gzipped content of the given lines.
func gzipLines(t *testing.T, lines []string) []byte {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())
	return buf.Bytes()
}

// createTestCouponFile creates a gzipped test coupon file.
func createTestCouponFile(t *testing.T, filename string, lines []string) string {
	filePath := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(filePath, gzipLines(t, lines), 0o644))
	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "coupons.gz", []string{
		"# seasonal codes",
		"NAVIDAD20,0.20",
		"",
		"  otono15 , 0.15 ",
		"CUMPLE5,0.05",
	})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 3, set.Size())

	rate, ok := set.Rate("OTONO15")
	require.True(t, ok)
	assert.Equal(t, "0.15", rate.String())
}

func TestFileLoader_Load_SkipsMalformedLines(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "coupons.gz", []string{
		"GOOD10,0.10",
		"NORATE",
		"BADRATE,ten",
		"TOOBIG,1.5",
		"NEGATIVE,-0.2",
	})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, 1, set.Size())
	_, ok := set.Rate("GOOD10")
	assert.True(t, ok)
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	set, err := loader.Load(context.Background(), "/nonexistent/coupons.gz")

	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), "failed to open coupon file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("DULCE10,0.10\n"), 0o644))

	set, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), "gzip")
}

func TestFileLoader_Load_EmptyFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "empty.gz", []string{})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, 0, set.Size())
}

func TestParseCouponLine(t *testing.T) {
	code, rate, err := parseCouponLine("DULCE10,0.10")
	require.NoError(t, err)
	assert.Equal(t, "DULCE10", code)
	assert.Equal(t, "0.1", rate.String())

	_, _, err = parseCouponLine("DULCE10")
	assert.Error(t, err)

	_, _, err = parseCouponLine("DULCE10,abc")
	assert.Error(t, err)
}
