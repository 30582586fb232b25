package core

import "time"

// UsageEvent is one billed or billable interaction in canonical form.
// Values are built once by the normalizer and never mutated afterwards.
type UsageEvent struct {
	TimestampMs int64    `json:"timestamp_ms"`
	Model       string   `json:"model"`
	Tokens      int64    `json:"tokens"`
	Cost        *float64 `json:"cost,omitempty"` // nil when the upstream cost is structurally unknown
	CostDisplay string   `json:"cost_display"`
	Kind        string   `json:"kind"`
}

// CostValue returns the numeric cost, or 0 and false when unknown.
func (e UsageEvent) CostValue() (float64, bool) {
	if e.Cost == nil {
		return 0, false
	}
	return *e.Cost, true
}

type Mode string

const (
	ModeLoading Mode = "LOADING"
	ModeReady   Mode = "READY"
	ModeNoToken Mode = "NO_TOKEN"
	ModeError   Mode = "ERROR"
)

// PresentationState is the single snapshot consumers render. It is replaced
// wholesale at the end of each refresh cycle.
type PresentationState struct {
	Mode      Mode         `json:"mode"`
	Latest    *UsageEvent  `json:"latest,omitempty"` // only meaningful in ModeReady
	Recent    []UsageEvent `json:"recent"`           // newest first
	UpdatedAt time.Time    `json:"updated_at"`
}

func LoadingState() PresentationState {
	return PresentationState{Mode: ModeLoading}
}

// Clone returns a deep copy so subscribers can hold on to it safely.
func (s PresentationState) Clone() PresentationState {
	out := s
	if s.Latest != nil {
		latest := *s.Latest
		out.Latest = &latest
	}
	if s.Recent != nil {
		out.Recent = make([]UsageEvent, len(s.Recent))
		copy(out.Recent, s.Recent)
	}
	return out
}
