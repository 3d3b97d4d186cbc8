package retention

import (
	"errors"
	"fmt"
)

var ErrRetentionUnderflow = errors.New("validator: retention mark moved backwards")

// Tracker holds the process wide low-water mark. Transactions at or below
// the mark will no longer be validated against.
type Tracker struct {
	mark uint64
	set  bool
}

func (t *Tracker) Mark() (uint64, bool) { return t.mark, t.set }

// Advance moves the mark to ref. It reports whether the mark moved. A lower
// ref leaves the mark unchanged and returns ErrRetentionUnderflow.
func (t *Tracker) Advance(ref uint64) (bool, error) {
	if !t.set {
		t.mark = ref
		t.set = true
		return true, nil
	}
	if ref < t.mark {
		return false, fmt.Errorf("mark %d below %d: %w", ref, t.mark, ErrRetentionUnderflow)
	}
	if ref == t.mark {
		return false, nil
	}
	t.mark = ref
	return true, nil
}

// Covers reports whether ts has been given up by the mark.
func (t *Tracker) Covers(ts uint64) bool {
	return t.set && ts <= t.mark
}

func (t *Tracker) String() string {
	if !t.set {
		return "RETENTION[unset]"
	}
	return fmt.Sprintf("RETENTION[%d]", t.mark)
}
