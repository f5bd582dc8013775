// Package posture turns body and face landmarks into a leaning/upright verdict.
package posture

import "postured/pkg/types"

// Verdict is the outcome of classifying one frame.
type Verdict int

const (
	// Indeterminate means the landmarks needed for a decision were not found.
	Indeterminate Verdict = iota
	Upright
	Leaning
)

func (v Verdict) String() string {
	switch v {
	case Upright:
		return types.PostureUpright
	case Leaning:
		return types.PostureLeaning
	default:
		return "indeterminate"
	}
}

// Determinate reports whether v is Upright or Leaning.
func (v Verdict) Determinate() bool { return v == Upright || v == Leaning }

// IsLeaning reports whether v is Leaning.
func (v Verdict) IsLeaning() bool { return v == Leaning }
