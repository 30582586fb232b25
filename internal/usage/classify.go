package usage

import (
	"fmt"
	"strings"

	"github.com/janekbaraniewski/cursorusage/internal/core"
)

type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierIncluded Tier = "included"
	TierErrored  Tier = "errored"
	TierFree     Tier = "free"
	TierUnknown  Tier = "unknown"
)

const (
	mediumCostFrom = 0.20
	highCostAbove  = 0.50

	includedKindMarker = "INCLUDED"
	erroredKindMarker  = "ERRORED_NOT_CHARGED"
)

// Classification is everything a consumer needs to render one event.
type Classification struct {
	Tier  Tier
	Icon  string
	Label string // cost text without the icon
	// CostLine is Icon + " " + Label.
	CostLine string
	// StatusLabel is the shorter wording used on the one-line status.
	StatusLabel string
	Tooltip     string
}

type tierStyle struct {
	icon   string
	status string // tooltip headline; paid tiers append the amount
}

var tierStyles = map[Tier]tierStyle{
	TierLow:      {icon: "✅", status: "Low Cost"},
	TierMedium:   {icon: "⚠️", status: "Medium Cost"},
	TierHigh:     {icon: "🚨", status: "High Cost"},
	TierIncluded: {icon: "💎", status: "Included in Plan"},
	TierErrored:  {icon: "❌", status: "Error — Not Charged"},
	TierFree:     {icon: "🆓", status: "Free"},
	TierUnknown:  {icon: "❓", status: "Unknown Cost"},
}

// TierOf applies the decision order: a positive cost wins over the kind tag,
// which wins over a zero cost. The order matters: an INCLUDED event that still
// reports a positive cost is shown as paid.
func TierOf(ev core.UsageEvent) Tier {
	cost, known := ev.CostValue()
	switch {
	case known && cost > 0:
		switch {
		case cost < mediumCostFrom:
			return TierLow
		case cost <= highCostAbove:
			return TierMedium
		default:
			return TierHigh
		}
	case strings.Contains(ev.Kind, includedKindMarker):
		return TierIncluded
	case strings.Contains(ev.Kind, erroredKindMarker):
		return TierErrored
	case known && cost == 0:
		return TierFree
	default:
		return TierUnknown
	}
}

// Icon returns the emoji for a tier.
func (t Tier) Icon() string {
	return tierStyles[t].icon
}

// Paid reports whether the tier is one of the cost-severity buckets.
func (t Tier) Paid() bool {
	return t == TierLow || t == TierMedium || t == TierHigh
}

// Classify derives presentation fields for an event. It is total over any
// UsageEvent.
func Classify(ev core.UsageEvent) Classification {
	tier := TierOf(ev)
	style := tierStyles[tier]

	var label, statusLabel string
	switch tier {
	case TierLow, TierMedium, TierHigh:
		label = ev.CostDisplay
		statusLabel = ev.CostDisplay
	case TierIncluded:
		label, statusLabel = "Included", "Included"
	case TierErrored:
		label, statusLabel = "Error — Not Charged", "Error"
	case TierFree:
		label, statusLabel = "Free", "Free"
	default:
		label, statusLabel = "Unknown", "Unknown"
	}

	return Classification{
		Tier:        tier,
		Icon:        style.icon,
		Label:       label,
		CostLine:    style.icon + " " + label,
		StatusLabel: statusLabel,
		Tooltip:     tooltip(ev, tier),
	}
}

func tooltip(ev core.UsageEvent, tier Tier) string {
	style := tierStyles[tier]
	headline := style.icon + " " + style.status
	if cost, ok := ev.CostValue(); ok && tier.Paid() {
		headline = fmt.Sprintf("%s: $%.3f", headline, cost)
	}
	return strings.Join([]string{
		headline,
		"🕐 Time: " + FormatClock(ev.TimestampMs),
		"🔢 Tokens: " + FormatTokenTotal(ev.Tokens),
		"🤖 Model: " + ev.Model,
		"📊 Type: " + ev.Kind,
	}, "\n")
}
