package godc

import "time"

// Parser is the polymorphic decode-side entity (spec §4.2). A Parser is
// stateless until SetData is called; every subsequent query operates on
// the blob handed to SetData until the next call invalidates the cache.
//
// Implementations are returned already bound to one Family by the
// dispatcher (BuildParser); callers normally only see this interface, but may
// recover family-specific extensions via As.
type Parser interface {
	// Family reports the immutable family tag this Parser decodes.
	Family() Family

	// SetData binds the parser to a new blob, invalidating any cached
	// header/derived fields (spec §4.2.1). data is borrowed: its lifetime
	// must cover every subsequent call until the next SetData.
	SetData(data []byte) error

	// GetDateTime returns the dive's start time.
	GetDateTime() (time.Time, error)

	// GetField returns one canonical field (spec §3). index selects among
	// repeated fields (GasMix, Tank, String); it is ignored otherwise.
	GetField(ft FieldType, index int) (FieldValue, error)

	// SamplesForeach streams the dive's canonical samples in non-decreasing
	// Time order (spec §3, §8). Samples borrow from the blob passed to
	// SetData; see SamplesForeachCopy for an owning variant.
	SamplesForeach(cb SampleCallback) error
}

// CopyableParser adds no methods to Parser, so every Parser satisfies it;
// SamplesForeachCopy accepts any Parser, so no family reimplements the
// copy.
type CopyableParser interface {
	Parser
}

// SamplesForeachCopy streams p's samples through cb, but first clones any
// VendorSample.Data so the callback may retain samples beyond the
// lifetime of the blob passed to SetData (spec §9 design note: "An owning
// alternative is a copy-on-emit variant for consumers that need
// longer-lived samples").
func SamplesForeachCopy(p Parser, cb SampleCallback) error {
	return p.SamplesForeach(func(s Sample) error {
		if s.Type == SampleVendor && s.Vendor.Data != nil {
			cloned := make([]byte, len(s.Vendor.Data))
			copy(cloned, s.Vendor.Data)
			s.Vendor.Data = cloned
		}
		return cb(s)
	})
}

// As recovers a family-specific extension interface/type from an abstract
// Parser, the Go equivalent of spec §4.2's "instance check [...] recover
// family-specific extension methods safely".
func As[T any](p Parser) (T, bool) {
	v, ok := p.(T)
	return v, ok
}

// headerCache holds the lazily computed, SetData-invalidated fields every
// family's parser shares (spec §4.2.1): offsets into the blob, dive mode,
// gas-mix table, and the derived fields that require a full walk of the
// sample stream to compute (DiveTime, MaxDepth, AvgDepth). Family parsers
// embed headerCache and call reset() from their own SetData.
type headerCache struct {
	valid bool

	sampleStart int
	diveMode    DiveMode
	gasMixes    []GasMix

	derivedValid bool
	diveTime     uint32
	maxDepth     float64
	avgDepth     float64

	tempValid   bool
	tempSurface float64
	tempMin     float64
	tempMax     float64
}

func (h *headerCache) reset() {
	h.valid = false
	h.derivedValid = false
	h.sampleStart = 0
	h.gasMixes = nil
}
