package rib

import (
	"fmt"
	"time"
)

// Byte offsets within a RawRecord. Both layouts share them once the
// Transcend timestamp prefix is in place.
const (
	offTimestamp   = 0
	offHour        = 4
	offMinute      = 5
	offSecond      = 6
	offLatitude    = 7
	offLongitude   = 11
	offSpeed       = 15
	offElevation   = 17
	offTemperature = 21

	// MinRecordLen is the shortest record Interpret can read.
	MinRecordLen = offTemperature + 1
)

// Record is one decoded track point.
type Record struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	LatDeg     float64
	LonDeg     float64
	ElevationM uint16
	SpeedMps   float64
	TempC      int
}

// Time joins the record's date and time-of-day fields as UTC, the zone the
// GPX output labels them with. Out-of-range fields are normalized.
func (r Record) Time() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, r.Hour, r.Minute, r.Second, 0, time.UTC)
}

// Interpreter maps raw records to Records.
type Interpreter struct {
	// Location is the zone the per-record Unix timestamp is viewed in to
	// obtain the calendar date. Nil means time.Local.
	Location *time.Location
}

// Interpret decodes r with the default Interpreter.
func Interpret(r RawRecord) Record {
	return Interpreter{}.Interpret(r)
}

// Interpret decodes one raw record. It panics if r is shorter than
// MinRecordLen; Extract never produces such records.
func (in Interpreter) Interpret(r RawRecord) Record {
	if len(r) < MinRecordLen {
		panic(fmt.Sprintf("rib: raw record too short: %d < %d", len(r), MinRecordLen))
	}

	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	date := DecodeTimestamp(quad(r, offTimestamp)).In(loc)

	return Record{
		Year:   date.Year(),
		Month:  int(date.Month()),
		Day:    date.Day(),
		Hour:   int(r[offHour]),
		Minute: int(r[offMinute]),
		Second: int(r[offSecond]),

		LatDeg:     DecodeCoordinate(quad(r, offLatitude)),
		LonDeg:     DecodeCoordinate(quad(r, offLongitude)),
		SpeedMps:   DecodeSpeed(r[offSpeed], r[offSpeed+1]),
		ElevationM: DecodeElevation(r[offElevation], r[offElevation+1]),
		TempC:      DecodeTemperature(r[offTemperature]),
	}
}

// InterpretAll decodes raws in order.
func (in Interpreter) InterpretAll(raws []RawRecord) []Record {
	out := make([]Record, len(raws))
	for i, r := range raws {
		out[i] = in.Interpret(r)
	}
	return out
}

func quad(r RawRecord, off int) [4]byte {
	return [4]byte{r[off], r[off+1], r[off+2], r[off+3]}
}
