package tar

// Config parameterizes a Reader's parsing behavior. The zero value is the
// default: two-zero-block (or one, leniently) termination, and coalesced
// (non-raw) iteration.
type Config struct {
	// IgnoreZeros, when true, treats an all-zero block as padding to skip
	// rather than as the end of the archive — the behavior needed to read
	// multiple tar archives concatenated back to back.
	IgnoreZeros bool

	// Raw, when true, disables coalescing: every physical entry is
	// emitted, including GNU long-name/long-link and PAX auxiliary
	// entries.
	Raw bool
}
