package rib

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode selects the device family a capture came from.
type Mode int

const (
	ModeSnow2         Mode = 1
	ModeZealTranscend Mode = 2
)

// ErrUnknownMode is returned for a mode other than Snow2 or Zeal Transcend.
var ErrUnknownMode = errors.New("rib: unknown device mode")

func (m Mode) String() string {
	switch m {
	case ModeSnow2:
		return "snow2"
	case ModeZealTranscend:
		return "zeal-transcend"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode accepts the numeric selector ("1", "2") or the mode name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "1", "snow2":
		return ModeSnow2, nil
	case "2", "zeal-transcend", "zeal", "transcend":
		return ModeZealTranscend, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Layout describes where records live in a capture and how to make every
// record present the same schema.
type Layout interface {
	Mode() Mode
	// Start is the byte offset of the first record.
	Start() int
	// Stride is the number of buffer bytes each record occupies.
	Stride() int
	// Size is the length of a RawRecord after prefix synthesis.
	Size() int
	// Prefix returns the bytes prepended to every record of buf.
	Prefix(buf []byte) []byte
}

// LayoutFor returns the record layout of m.
func LayoutFor(m Mode) (Layout, error) {
	switch m {
	case ModeSnow2:
		return snow2Layout{}, nil
	case ModeZealTranscend:
		return transcendLayout{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
}

type snow2Layout struct{}

func (snow2Layout) Mode() Mode             { return ModeSnow2 }
func (snow2Layout) Start() int             { return 14 }
func (snow2Layout) Stride() int            { return 32 }
func (snow2Layout) Size() int              { return 32 }
func (snow2Layout) Prefix(_ []byte) []byte { return nil }

// transcendLayout records lack the leading timestamp. The session date is
// read from the three bytes at the start of the record stream and stored
// in each record as midnight UTC.
type transcendLayout struct{}

const transcendStart = 9

func (transcendLayout) Mode() Mode  { return ModeZealTranscend }
func (transcendLayout) Start() int  { return transcendStart }
func (transcendLayout) Stride() int { return 20 }
func (transcendLayout) Size() int   { return 24 }

func (transcendLayout) Prefix(buf []byte) []byte {
	ts := [4]byte{}
	if len(buf) >= transcendStart+3 {
		ts = EncodeTimestamp(SessionDate(buf[transcendStart], buf[transcendStart+1], buf[transcendStart+2]))
	}
	return ts[:]
}

// SessionDate decodes a Transcend header date triple. Out-of-range month
// or day values are normalized by time.Date.
func SessionDate(year, month, day byte) time.Time {
	return time.Date(2000+int(year&0x7F), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}
