package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
)

// formatAmount renders base units as a decimal coin amount.
func formatAmount(units uint64) string {
	return fmt.Sprintf("%d.%0*d", units/config.Coin, config.Decimals, units%config.Coin)
}

// parseAmount converts a decimal coin string to base units.
func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	whole, fracStr, hasFrac := strings.Cut(s, ".")
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if hasFrac {
		if len(fracStr) == 0 || len(fracStr) > config.Decimals {
			return 0, fmt.Errorf("fractional part must have 1 to %d digits", config.Decimals)
		}
		fracStr += strings.Repeat("0", config.Decimals-len(fracStr))
		frac, err = strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fractional part: %w", err)
		}
	}

	if w > math.MaxUint64/config.Coin {
		return 0, fmt.Errorf("amount too large")
	}
	units := w * config.Coin
	if units > math.MaxUint64-frac {
		return 0, fmt.Errorf("amount too large")
	}
	return units + frac, nil
}

// formatDeadline renders a unix-seconds deadline relative to now.
func formatDeadline(deadline uint64, now time.Time) string {
	if deadline == 0 {
		return "none"
	}
	at := time.Unix(int64(deadline), 0)
	if d := at.Sub(now).Truncate(time.Second); d > 0 {
		return fmt.Sprintf("%s (in %s)", at.UTC().Format(time.RFC3339), d)
	}
	return fmt.Sprintf("%s (passed)", at.UTC().Format(time.RFC3339))
}
