package tar

// Entry is one logical, coalesced archive member: a header plus whatever
// GNU long-name/long-link and PAX overrides applied to it, and a lazily
// readable body. It is only valid until the next call to Reader.Next;
// reading it after that yields undefined results, since the iterator owns
// the shared source cursor (see package doc).
type Entry struct {
	Header Header

	// Name and Linkname are Header.Name/Header.Linkname with any GNU
	// long-name/long-link/PAX override applied (§4.2, §4.4).
	Name     string
	Linkname string

	// Size is the effective payload size: Header.Size, a PAX "size"
	// override when Header.Size was zero, or the sparse real-size.
	Size int64

	// HeaderOffset and BodyOffset are absolute byte positions in the
	// archive stream.
	HeaderOffset int64
	BodyOffset   int64

	// PAXRecords holds the entry's PAX extended attributes, if any were
	// coalesced ahead of this entry. Nil when none were present.
	PAXRecords map[string]string

	body *bodyReader
}

// Read reads from the entry's body. It returns io.EOF once the logical
// size has been delivered; sparse holes are synthesized as zero bytes
// transparently.
func (e *Entry) Read(p []byte) (int, error) {
	return e.body.Read(p)
}

// Digest returns the entry's streaming content digest (xxhash64 over every
// byte — real and sparse-synthesized — delivered by Read) and whether the
// body has been fully drained, making the digest final. Before the body is
// fully read, ok is false.
func (e *Entry) Digest() (digest uint64, ok bool) {
	return e.body.digestValue()
}

// IsDir reports whether this entry describes a directory.
func (e *Entry) IsDir() bool {
	return e.Header.Typeflag == KindDir
}

// Xattrs returns the SCHILY.xattr.* PAX records as a plain name -> value
// map (prefix stripped), or nil if none are present.
func (e *Entry) Xattrs() map[string]string {
	return paxXattrs(e.PAXRecords)
}
