package rib

import (
	"encoding/binary"
	"time"
)

const (
	// Coordinates carry arc-minutes scaled by 10^4 in three 7-bit digit groups.
	minutesPerDegree = 60 * 10000

	signBit   = 0x80
	digitMask = 0x7F

	// Speed is stored in tenths of km/h.
	kmhPerUnit = 0.1
	mpsPerKmh  = 1000.0 / 3600.0

	temperatureOffset = 40
)

// DecodeCoordinate converts a 4-byte rib coordinate into signed decimal
// degrees.
//
// b[0] is whole degrees. The low 7 bits of b[1], b[2], b[3] are the
// ten-thousands, hundreds and units digit groups of minutes*10^4. The high
// bit of b[1] is the sign (set = south/west).
func DecodeCoordinate(b [4]byte) float64 {
	minutes := int(b[1]&digitMask)*10000 +
		int(b[2]&digitMask)*100 +
		int(b[3]&digitMask)
	deg := float64(b[0]) + float64(minutes)/minutesPerDegree
	if b[1]&signBit != 0 {
		return -deg
	}
	return deg
}

// DecodeTimestamp interprets b as big-endian Unix seconds.
// The result is in the local zone, matching how the goggles' companion
// software read per-record dates.
func DecodeTimestamp(b [4]byte) time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(b[:])), 0)
}

// EncodeTimestamp is the inverse of DecodeTimestamp. Seconds outside the
// uint32 range wrap.
func EncodeTimestamp(t time.Time) [4]byte {
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], uint32(t.Unix()))
	return out
}

// DecodeSpeed converts a big-endian count of 0.1 km/h into meters/second.
func DecodeSpeed(hi, lo byte) float64 {
	raw := binary.BigEndian.Uint16([]byte{hi, lo})
	return float64(raw) * kmhPerUnit * mpsPerKmh
}

// DecodeElevation returns the big-endian elevation in meters.
func DecodeElevation(hi, lo byte) uint16 {
	return binary.BigEndian.Uint16([]byte{hi, lo})
}

// DecodeTemperature returns the temperature in degrees Celsius.
func DecodeTemperature(b byte) int {
	return int(b) - temperatureOffset
}
