package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ZoneOther is the catch-all zone for comunas outside the central tier.
const ZoneOther = "other"

const (
	// CentralZoneFee applies to the comunas closest to the bakery.
	CentralZoneFee int64 = 2500
	// DefaultZoneFee applies to every other comuna.
	DefaultZoneFee int64 = 4500
)

// ZoneTable maps a normalised comuna name to its delivery fee.
type ZoneTable struct {
	fees     map[string]int64
	fallback int64
}

// NewZoneTable builds a zone table. Keys are normalised on insert.
func NewZoneTable(fees map[string]int64, fallback int64) ZoneTable {
	normalised := make(map[string]int64, len(fees))
	for zone, fee := range fees {
		normalised[NormaliseZone(zone)] = fee
	}
	return ZoneTable{fees: normalised, fallback: fallback}
}

// DefaultZoneTable returns the static Santiago fee table.
func DefaultZoneTable() ZoneTable {
	return NewZoneTable(map[string]int64{
		"santiago":    CentralZoneFee,
		"providencia": CentralZoneFee,
		"nunoa":       CentralZoneFee,
	}, DefaultZoneFee)
}

// Fee returns the delivery fee for a zone, falling back to the "other" fee
// for anything unrecognised.
func (z ZoneTable) Fee(zone string) int64 {
	if fee, ok := z.fees[NormaliseZone(zone)]; ok {
		return fee
	}
	return z.fallback
}

// Known reports whether the zone has its own entry in the table.
func (z ZoneTable) Known(zone string) bool {
	_, ok := z.fees[NormaliseZone(zone)]
	return ok
}

// NormaliseZone lower-cases a comuna name and strips diacritics, so that
// "Ñuñoa" and "nunoa" resolve to the same zone.
func NormaliseZone(zone string) string {
	zone = strings.TrimSpace(zone)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, zone)
	if err != nil {
		folded = zone
	}
	return strings.ToLower(folded)
}
