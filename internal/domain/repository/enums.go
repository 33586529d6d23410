package repository

import "TrendPulse/internal/domain/models"

// IsValidRegion returns true if r is a supported region.
func IsValidRegion(r models.Region) bool {
	switch r {
	case models.RegionUS, models.RegionEU, models.RegionAsia, models.RegionGlobal:
		return true
	default:
		return false
	}
}

// DefaultRegion returns the default region.
func DefaultRegion() models.Region { return models.RegionGlobal }

// NormalizeRegion converts raw string to a valid region (or default).
func NormalizeRegion(s string) models.Region {
	if s == "" {
		return DefaultRegion()
	}
	r := models.Region(s)
	if IsValidRegion(r) {
		return r
	}
	return DefaultRegion()
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf models.Timeframe) bool {
	switch tf {
	case models.TFDaily, models.TFWeekly, models.TFMonthly, models.TFQuarterly, models.TFYearly:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() models.Timeframe { return models.TFWeekly }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) models.Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := models.Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// LookbackDays maps a timeframe to the number of days of history it covers.
func LookbackDays(tf models.Timeframe) int {
	switch tf {
	case models.TFDaily:
		return 1
	case models.TFWeekly:
		return 7
	case models.TFMonthly:
		return 30
	case models.TFQuarterly:
		return 90
	case models.TFYearly:
		return 365
	default:
		return 7
	}
}
