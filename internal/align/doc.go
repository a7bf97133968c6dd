// Package align places synthesized clips on the output timeline.
//
// Two policies share the AlignedChunk output type:
//   - stretch (Planner): widen each segment window by the transition padding
//     and compute the time-stretch factor that fits the clip into it, snapping
//     near-matches to exactly 1.0.
//   - slot_fit (SlotFitter): pad the clip with head/tail silence and trim or
//     pad it to the segment's slot without stretching.
//
// Both policies keep chunks strictly non-overlapping and monotonically
// ordered: original segment timing is treated as a hint, and a window never
// starts before the previous one ended. Failures that belong to one segment
// are reported as *SegmentError so callers can substitute or re-synthesize
// that segment alone.
package align
