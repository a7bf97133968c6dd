package align

import (
	"fmt"
	"log/slog"
	"strings"

	"dubmix/internal/audio"
	"dubmix/internal/segment"
)

// Policy names an alignment strategy.
type Policy string

const (
	PolicyStretch Policy = "stretch"
	PolicySlotFit Policy = "slot_fit"
)

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyStretch, "":
		return PolicyStretch, nil
	case PolicySlotFit, "slotfit", "slot-fit":
		return PolicySlotFit, nil
	default:
		return "", fmt.Errorf("align: unknown policy %q (want %q or %q)", value, PolicyStretch, PolicySlotFit)
	}
}

// Aligner turns segments and their synthesized audio into placed chunks.
type Aligner interface {
	Align(segments []segment.Segment, audios []audio.Buffer) ([]AlignedChunk, error)
}

// NewAligner builds the aligner for policy.
func NewAligner(policy Policy, opts Options, slot SlotFitOptions, logger *slog.Logger) (Aligner, error) {
	switch policy {
	case PolicyStretch:
		return NewPlanner(opts, logger)
	case PolicySlotFit:
		return NewSlotFitter(slot, logger)
	default:
		return nil, fmt.Errorf("align: unknown policy %q", policy)
	}
}
