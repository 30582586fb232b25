// Package usage turns raw usage records into canonical events and derives
// their presentation: cost tier, icon, labels, and tooltip text.
package usage

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/cursorusage/internal/core"
)

const (
	unknownValue = "Unknown"
	zeroDisplay  = "$0.00"
)

// costFieldCandidates are probed in order when the cost arrives as an object.
var costFieldCandidates = []string{"cost", "totalCost", "amount", "price", "value"}

var tokenFields = []string{"cacheWriteTokens", "cacheReadTokens", "inputTokens", "outputTokens"}

// leadingNumber matches the numeric prefix of a currency string once "$" and
// "," are gone, so "0.05 USD" still reads as 0.05.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

type costShape int

const (
	costAbsent costShape = iota
	costString
	costNumber
	costObject
	costArray
	costOther
)

func shapeOf(r gjson.Result) costShape {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return costAbsent
	case r.Type == gjson.String:
		if r.Str == "" {
			return costAbsent
		}
		return costString
	case r.Type == gjson.Number:
		return costNumber
	case r.IsArray():
		return costArray
	case r.IsObject():
		return costObject
	default:
		return costOther
	}
}

// normalizedCost is the canonical numeric+display pair. amount is nil when
// the cost is structurally unknown.
type normalizedCost struct {
	amount  *float64
	display string
}

func knownCost(v float64, display string) normalizedCost {
	return normalizedCost{amount: &v, display: display}
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Normalize converts one raw usage record into a UsageEvent. It never fails:
// missing or malformed fields fall back to defaults.
func Normalize(raw gjson.Result) core.UsageEvent {
	cost := normalizeCost(raw.Get("usageBasedCosts"))
	return core.UsageEvent{
		TimestampMs: numericInt(raw.Get("timestamp")),
		Model:       stringOr(raw.Get("model"), unknownValue),
		Tokens:      sumTokens(raw.Get("tokenUsage")),
		Cost:        cost.amount,
		CostDisplay: cost.display,
		Kind:        stringOr(raw.Get("kind"), unknownValue),
	}
}

// NormalizeAll normalizes every record and orders the result newest first.
func NormalizeAll(records []gjson.Result) []core.UsageEvent {
	events := lo.Map(records, func(r gjson.Result, _ int) core.UsageEvent {
		return Normalize(r)
	})
	SortNewestFirst(events)
	return events
}

// SortNewestFirst orders events by descending timestamp. Ties keep their
// input order.
func SortNewestFirst(events []core.UsageEvent) {
	slices.SortStableFunc(events, func(a, b core.UsageEvent) int {
		switch {
		case a.TimestampMs > b.TimestampMs:
			return -1
		case a.TimestampMs < b.TimestampMs:
			return 1
		}
		return 0
	})
}

func normalizeCost(r gjson.Result) normalizedCost {
	switch shapeOf(r) {
	case costAbsent:
		return knownCost(0, zeroDisplay)
	case costString:
		return knownCost(parseCurrency(r.Str), r.Str)
	case costNumber:
		return knownCost(r.Num, formatUSD(r.Num))
	case costObject:
		for _, field := range costFieldCandidates {
			v := r.Get(field)
			switch shapeOf(v) {
			case costString, costNumber:
				return normalizeCost(v)
			}
		}
		return normalizedCost{display: zeroDisplay}
	case costArray:
		return sumCosts(lo.Map(r.Array(), func(item gjson.Result, _ int) normalizedCost {
			return normalizeCost(item)
		}))
	default:
		return knownCost(0, zeroDisplay)
	}
}

func sumCosts(parts []normalizedCost) normalizedCost {
	if len(parts) == 0 {
		return knownCost(0, zeroDisplay)
	}
	known := lo.Filter(parts, func(p normalizedCost, _ int) bool { return p.amount != nil })
	if len(known) == 0 {
		return normalizedCost{display: zeroDisplay}
	}

	total := lo.SumBy(known, func(p normalizedCost) float64 { return *p.amount })
	displays := lo.FilterMap(parts, func(p normalizedCost, _ int) (string, bool) {
		return p.display, p.display != zeroDisplay
	})
	if len(displays) == 0 {
		return knownCost(total, formatUSD(total))
	}
	return knownCost(total, strings.Join(displays, " + "))
}

func parseCurrency(s string) float64 {
	clean := strings.NewReplacer("$", "", ",", "").Replace(s)
	m := leadingNumber.FindString(strings.TrimSpace(clean))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// sumTokens saturates at math.MaxInt64 instead of wrapping.
func sumTokens(usage gjson.Result) int64 {
	var total int64
	for _, field := range tokenFields {
		n := max(numericInt(usage.Get(field)), 0)
		total += min(n, math.MaxInt64-total)
	}
	return total
}

// numericInt reads a JSON number or numeric string; anything else is 0.
// Values outside the int64 range saturate.
func numericInt(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		return floatToInt64(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return floatToInt64(f)
		}
	}
	return 0
}

func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt64):
		return math.MaxInt64
	case f <= float64(math.MinInt64):
		return math.MinInt64
	}
	return int64(f)
}

func stringOr(r gjson.Result, fallback string) string {
	if r.Type != gjson.String {
		return fallback
	}
	if s := strings.TrimSpace(r.Str); s != "" {
		return s
	}
	return fallback
}
