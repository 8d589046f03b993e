package tar

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// bodyReader is a bounded reader over a logical entry's body plan: a
// sequence of segments, each either real data pulled from the shared
// archive source or synthesized zero bytes for a sparse hole. Reading past
// the plan returns io.EOF without touching the source further.
//
// Every byte delivered (real or synthesized) is folded into a running
// xxhash64 digest, available via digest() once the body has been fully
// drained; this never forces a read the caller didn't ask for.
type bodyReader struct {
	src       *source
	plan      []bodySegment
	idx       int
	curZero   bool
	remaining int64

	h      xxhash.Digest
	done   bool
	digest uint64
}

func newBodyReader(src *source, plan []bodySegment) *bodyReader {
	br := &bodyReader{src: src, plan: plan}
	br.h.Reset()
	return br
}

func (br *bodyReader) Read(p []byte) (int, error) {
	for {
		if br.remaining == 0 {
			if br.idx >= len(br.plan) {
				if !br.done {
					br.done = true
					br.digest = br.h.Sum64()
				}
				return 0, io.EOF
			}
			seg := br.plan[br.idx]
			br.idx++
			br.remaining = seg.n
			br.curZero = seg.zero
			if br.remaining == 0 {
				continue
			}
		}

		n := len(p)
		if int64(n) > br.remaining {
			n = int(br.remaining)
		}
		if n == 0 {
			return 0, nil
		}

		if br.curZero {
			for i := 0; i < n; i++ {
				p[i] = 0
			}
		} else {
			read, err := br.src.Read(p[:n])
			n = read
			if n == 0 && err != nil {
				return 0, err
			}
		}
		br.h.Write(p[:n])
		br.remaining -= int64(n)
		return n, nil
	}
}

// digestValue returns the entry's running content digest and whether the
// body has been fully drained (and the digest therefore final).
func (br *bodyReader) digestValue() (uint64, bool) {
	return br.digest, br.done
}
