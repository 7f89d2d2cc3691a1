package rawlog

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ribgpx/internal/rib"
)

// Log format: line-oriented text, one raw record per line.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
// - "MODE <n>" names the device mode; it must precede the first record.
// - Data lines are: <index>,<hex>
//   where index is the record's position in the capture (strictly
//   increasing) and hex is the raw record bytes, including the
//   synthesized timestamp prefix for Transcend captures.
//
// Dumps are meant to be diffed and hand-edited while reverse-engineering
// record fields, then fed back through the converter.

type Log struct {
	Mode    rib.Mode
	Indexes []int
	Records []rib.RawRecord
}

// HasLeadIn reports whether the dump still holds record 0, the lead-in
// record decoding discards.
func (l Log) HasLeadIn() bool {
	return len(l.Indexes) > 0 && l.Indexes[0] == 0
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (rr *Reader) ReadAll() (Log, error) {
	s := bufio.NewScanner(rr.r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		out     Log
		layout  rib.Layout
		lastIdx = -1
		lineNo  int
	)
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "MODE "); ok {
			if layout != nil {
				return Log{}, fmt.Errorf("rawlog: line %d: duplicate MODE", lineNo)
			}
			m, err := rib.ParseMode(rest)
			if err != nil {
				return Log{}, fmt.Errorf("rawlog: line %d: %w", lineNo, err)
			}
			if layout, err = rib.LayoutFor(m); err != nil {
				return Log{}, err
			}
			out.Mode = m
			continue
		}
		if layout == nil {
			return Log{}, fmt.Errorf("rawlog: line %d: record before MODE", lineNo)
		}

		idxStr, hexStr, ok := strings.Cut(line, ",")
		if !ok {
			return Log{}, fmt.Errorf("rawlog: line %d: invalid line (missing comma): %q", lineNo, line)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil {
			return Log{}, fmt.Errorf("rawlog: line %d: invalid index: %w", lineNo, err)
		}
		if idx <= lastIdx {
			return Log{}, fmt.Errorf("rawlog: line %d: index %d not after %d", lineNo, idx, lastIdx)
		}
		b, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(hexStr), " ", ""))
		if err != nil {
			return Log{}, fmt.Errorf("rawlog: line %d: invalid hex payload: %w", lineNo, err)
		}
		if len(b) != layout.Size() {
			return Log{}, fmt.Errorf("rawlog: line %d: record is %d bytes, %s records are %d", lineNo, len(b), out.Mode, layout.Size())
		}

		lastIdx = idx
		out.Indexes = append(out.Indexes, idx)
		out.Records = append(out.Records, rib.RawRecord(b))
	}
	if err := s.Err(); err != nil {
		return Log{}, err
	}
	if layout == nil {
		return Log{}, errors.New("rawlog: missing MODE line")
	}
	return out, nil
}

// ReadFile reads a dump from path.
func ReadFile(path string) (Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return Log{}, err
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

type Writer struct {
	f      *os.File
	w      *bufio.Writer
	next   int
	closed bool
}

// NewWriter writes a dump header for mode to w. Close flushes but does not
// close w.
func NewWriter(w io.Writer, mode rib.Mode) (*Writer, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	if _, err := fmt.Fprintf(bw, "# ribgpx raw records (%s)\nMODE %d\n", mode, int(mode)); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

func CreateWriter(path string, mode rib.Mode) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	ww, err := NewWriter(f, mode)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	ww.f = f
	return ww, nil
}

// WriteRecord appends rec with the next capture index.
func (ww *Writer) WriteRecord(rec rib.RawRecord) error {
	if ww.closed {
		return errors.New("rawlog writer is closed")
	}
	if rec == nil {
		return errors.New("record is nil")
	}
	if _, err := fmt.Fprintf(ww.w, "%d,%s\n", ww.next, hex.EncodeToString(rec)); err != nil {
		return err
	}
	ww.next++
	return nil
}

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if err := ww.w.Flush(); err != nil {
		if ww.f != nil {
			_ = ww.f.Close()
		}
		return err
	}
	if ww.f != nil {
		return ww.f.Close()
	}
	return nil
}

// WriteFile dumps every record of a capture to path.
func WriteFile(path string, mode rib.Mode, raws []rib.RawRecord) error {
	w, err := CreateWriter(path, mode)
	if err != nil {
		return err
	}
	for _, r := range raws {
		if err := w.WriteRecord(r); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
