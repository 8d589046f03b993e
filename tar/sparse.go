package tar

import "github.com/cockroachdb/errors"

// bodySegment is one piece of a logical entry's body plan: either n bytes
// drawn from the archive stream, or n synthesized zero bytes. Never
// materialized — the body reader advances through these lazily.
type bodySegment struct {
	zero bool
	n    int64
}

// buildSparsePlan turns a GNU sparse header's descriptor list (plus any
// chained extension blocks read via next) into a body plan, per the
// cursor/remaining algorithm of §4.5. headerSize is the entry's on-wire
// size (the sum of all data segment lengths); realSize is the GNU header's
// declared logical size. next is called once per extension block needed
// and must return that block's 21 additional descriptors and whether
// another extension block follows.
func buildSparsePlan(descriptors []sparseDescriptor, headerSize, realSize int64, extended bool, next func() ([]sparseDescriptor, bool, error)) ([]bodySegment, int64, error) {
	var plan []bodySegment
	var cur, remaining = int64(0), headerSize

	add := func(d sparseDescriptor) error {
		if d.Offset == 0 && d.Length == 0 {
			return nil
		}
		if d.Length > 0 && (headerSize-remaining)%blockSize != 0 {
			return errors.New("tar: sparse: previous block not aligned to a 512-byte boundary")
		}
		if d.Offset < cur {
			return errors.New("tar: sparse: out of order or overlapping sparse blocks")
		}
		if d.Offset > cur {
			plan = append(plan, bodySegment{zero: true, n: d.Offset - cur})
		}
		newCur := d.Offset + d.Length
		if newCur < d.Offset {
			return errors.New("tar: sparse: more bytes than can be represented")
		}
		cur = newCur
		if d.Length > remaining {
			return errors.New("tar: sparse: consumed more than header listed")
		}
		remaining -= d.Length
		plan = append(plan, bodySegment{zero: false, n: d.Length})
		return nil
	}

	for _, d := range descriptors {
		if err := add(d); err != nil {
			return nil, 0, err
		}
	}

	for extended {
		more, hasNext, err := next()
		if err != nil {
			return nil, 0, err
		}
		for _, d := range more {
			if err := add(d); err != nil {
				return nil, 0, err
			}
		}
		extended = hasNext
	}

	if cur != realSize {
		return nil, 0, errors.New("tar: sparse: mismatch in sparse file chunks and size in header")
	}
	if remaining != 0 {
		return nil, 0, errors.New("tar: sparse: mismatch in sparse file chunks and entry size in header")
	}
	return plan, cur, nil
}
