package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// generateSampleCoupons creates sample coupon files for local runs. Each line
// is CODE,RATE. Files listed later in COUPON_FILES override earlier ones, so
// loading both files makes VERANO15 worth 0.20.
func main() {
	dataDir := "data/coupons"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	coupons := map[string]map[string]string{
		"seasonal.gz": {
			"VERANO15":     "0.15",
			"FIESTAS20":    "0.20",
			"CUMPLE12":     "0.12",
			"PRIMAVERA8":   "0.08",
			"DIADELAMADRE": "0.10",
		},
		"partners.gz": {
			"VERANO15":   "0.20",
			"EMPRESA7":   "0.07",
			"VECINOS5":   "0.05",
			"BIENVENIDA": "0.10",
		},
	}

	for filename, rates := range coupons {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, rates); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(rates))
	}

	fmt.Println("\nSample coupon files created successfully!")
	fmt.Printf("\nLoad them with:\n  COUPON_FILES=%s,%s\n",
		filepath.Join(dataDir, "seasonal.gz"),
		filepath.Join(dataDir, "partners.gz"))
}

func createCouponFile(filePath string, rates map[string]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if _, err := fmt.Fprintln(gzipWriter, "# CODE,RATE"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, code := range codes {
		if _, err := fmt.Fprintf(gzipWriter, "%s,%s\n", code, rates[code]); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	return nil
}
