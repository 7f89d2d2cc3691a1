package rib

import (
	"encoding/binary"
	"time"
)

// sample holds the field bytes of one synthetic record.
type sample struct {
	ts         time.Time
	hour       byte
	minute     byte
	second     byte
	lat, lon   [4]byte
	speed, ele uint16
	temp       byte
}

// body returns the record bytes from offset 4 (hour) through offset 31.
func (s sample) body() []byte {
	b := make([]byte, 28)
	b[0], b[1], b[2] = s.hour, s.minute, s.second
	copy(b[3:7], s.lat[:])
	copy(b[7:11], s.lon[:])
	binary.BigEndian.PutUint16(b[11:13], s.speed)
	binary.BigEndian.PutUint16(b[13:15], s.ele)
	b[17] = s.temp
	return b
}

func snow2Bytes(s sample) []byte {
	ts := EncodeTimestamp(s.ts)
	return append(ts[:], s.body()...)
}

func transcendBytes(s sample) []byte {
	return s.body()[:20]
}

func snow2Capture(samples ...sample) []byte {
	buf := make([]byte, 14)
	for _, s := range samples {
		buf = append(buf, snow2Bytes(s)...)
	}
	return buf
}

func transcendCapture(samples ...sample) []byte {
	buf := make([]byte, 9)
	for _, s := range samples {
		buf = append(buf, transcendBytes(s)...)
	}
	return buf
}

var goldenSample = sample{
	ts:     time.Date(2023, time.February, 14, 9, 0, 0, 0, time.UTC),
	hour:   10,
	minute: 11,
	second: 12,
	lat:    [4]byte{46, 0x03, 0x0C, 0x22},       // 46 deg 3.1234 min
	lon:    [4]byte{7, 0x80 | 0x01, 0x02, 0x03}, // -(7 deg 1.0203 min)
	speed:  0x000A,
	ele:    0x07D0,
	temp:   0x28,
}
