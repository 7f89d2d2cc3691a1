package rib

import (
	"errors"
	"fmt"
)

// ErrInsufficientData means a capture holds no usable track points: after
// dropping the lead-in record nothing would remain.
var ErrInsufficientData = errors.New("rib: no track points")

// RawRecord is one fixed-size record. Its length is always the Size of the
// layout that produced it.
type RawRecord []byte

// Extract splits buf into raw records using the layout of mode.
//
// Records are sliced back to back from the layout start. A trailing partial
// record is dropped without error.
func Extract(buf []byte, mode Mode) ([]RawRecord, error) {
	l, err := LayoutFor(mode)
	if err != nil {
		return nil, err
	}
	return ExtractLayout(buf, l), nil
}

// ExtractLayout is Extract for an already resolved layout.
func ExtractLayout(buf []byte, l Layout) []RawRecord {
	start, stride := l.Start(), l.Stride()
	if start+stride > len(buf) {
		return nil
	}

	// One backing array for every record; the prefix is computed once.
	prefix := l.Prefix(buf)
	n := (len(buf) - start) / stride
	size := len(prefix) + stride
	backing := make([]byte, n*size)

	out := make([]RawRecord, 0, n)
	for pos := start; pos+stride <= len(buf); pos += stride {
		rec := backing[:size:size]
		backing = backing[size:]
		copy(rec, prefix)
		copy(rec[len(prefix):], buf[pos:pos+stride])
		out = append(out, RawRecord(rec))
	}
	return out
}

// DropLeadIn removes the first record of a capture, which the firmware
// writes as boilerplate rather than a sample.
func DropLeadIn(raws []RawRecord) ([]RawRecord, error) {
	if len(raws) < 2 {
		return nil, fmt.Errorf("%w (raw records=%d)", ErrInsufficientData, len(raws))
	}
	return raws[1:], nil
}
