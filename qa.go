package godc

import "github.com/samber/lo"

// qa.go collects the cross-slot consistency checks a header scan (spec
// §4.1.2 shape B) can run before trusting a logbook ring, grounded on the
// teacher's qa.go: the teacher uses lo.Min/lo.Max to establish a domain
// over per-ping beam counts and lo.FindDuplicates to flag repeated
// timestamps; here the same helpers answer the equivalent questions over
// per-slot dive lengths and fingerprints.

// ProfileLengthDomain reports the minimum and maximum ProfileLength
// across slots, the way the teacher's QInfo establishes a beam-count
// domain before deciding whether a file's schema is "consistent."
func ProfileLengthDomain(slots []HeaderSlot) (min, max uint32) {
	if len(slots) == 0 {
		return 0, 0
	}
	lengths := lo.Map(slots, func(s HeaderSlot, _ int) uint32 { return s.ProfileLength })
	return lo.Min(lengths), lo.Max(lengths)
}

// AggregateProfileLength sums ProfileLength across slots, the way the
// teacher's QInfo reduces per-ping values into one file-level total before
// reporting progress for the whole read.
func AggregateProfileLength(slots []HeaderSlot) uint64 {
	return lo.SumBy(slots, func(s HeaderSlot) uint64 { return uint64(s.ProfileLength) })
}

// DuplicateFingerprints returns every fingerprint value that appears more
// than once among slots, flattened to its hex form. A logbook ring should
// never repeat a fingerprint across live slots; seeing one usually means
// the ring wrapped without the device updating an internal counter (spec
// §8's ring-pointer-bounds family of invariants).
func DuplicateFingerprints(slots []HeaderSlot) []string {
	hexed := lo.FilterMap(slots, func(s HeaderSlot, _ int) (string, bool) {
		if len(s.Fingerprint) == 0 {
			return "", false
		}
		return HexASCII(s.Fingerprint), true
	})
	return lo.FindDuplicates(hexed)
}

// LayoutFieldGap reports which of the declared-nonzero fields in want are
// zero in got, the way the dispatcher can sanity-check a live-probed
// Layout (spec §4.3/§4.4: model probing "may need a live probe, not just
// the declared family") against the table's static expectations before
// trusting it.
func LayoutFieldGap(want, got []string) []string {
	return lo.Without(lo.Union(want, got), got...)
}
