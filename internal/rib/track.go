package rib

// Track is one decoded recording session.
type Track struct {
	Mode Mode
	// Raw holds the sample records (lead-in removed), parallel to Points.
	Raw    []RawRecord
	Points []Record
}

// Decode runs the full pipeline on a capture: extract, drop the lead-in
// record, interpret.
func (in Interpreter) Decode(buf []byte, mode Mode) (Track, error) {
	raws, err := Extract(buf, mode)
	if err != nil {
		return Track{}, err
	}
	return in.FromRaw(mode, raws)
}

// FromRaw builds a Track from already extracted records, including the
// lead-in record.
func (in Interpreter) FromRaw(mode Mode, raws []RawRecord) (Track, error) {
	samples, err := DropLeadIn(raws)
	if err != nil {
		return Track{}, err
	}
	return Track{
		Mode:   mode,
		Raw:    samples,
		Points: in.InterpretAll(samples),
	}, nil
}

// Decode runs the pipeline with the default Interpreter.
func Decode(buf []byte, mode Mode) (Track, error) {
	return Interpreter{}.Decode(buf, mode)
}
