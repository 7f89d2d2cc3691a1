package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ribgpx/internal/rib"
)

// Document is the subset of a GPX file the tools here care about: track
// points of every track and segment, flattened in document order.
type Document struct {
	Creator string
	Name    string
	Points  []Point
}

// Point is one parsed <trkpt>. Optional elements that were absent leave
// their Has* flag false.
type Point struct {
	LatDeg float64
	LonDeg float64

	ElevationM float64
	HasEle     bool

	Time time.Time

	SpeedMps float64
	HasSpeed bool

	TempC   float64
	HasTemp bool
}

type xmlDocument struct {
	XMLName  xml.Name `xml:"gpx"`
	Creator  string   `xml:"creator,attr"`
	Metadata struct {
		Name string `xml:"name"`
	} `xml:"metadata"`
	Tracks []struct {
		Name     string `xml:"name"`
		Segments []struct {
			Points []xmlPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

// Element names without a namespace match any namespace, so the Garmin
// extension is found whatever prefix the producer chose.
type xmlPoint struct {
	Lat   float64  `xml:"lat,attr"`
	Lon   float64  `xml:"lon,attr"`
	Ele   *float64 `xml:"ele"`
	Time  string   `xml:"time"`
	Speed *float64 `xml:"speed"`
	ATemp *float64 `xml:"extensions>TrackPointExtension>atemp"`
}

// Read parses a GPX document.
func Read(r io.Reader) (Document, error) {
	var raw xmlDocument
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("gpx: decode: %w", err)
	}

	doc := Document{Creator: raw.Creator, Name: raw.Metadata.Name}
	for ti, trk := range raw.Tracks {
		if doc.Name == "" {
			doc.Name = trk.Name
		}
		for si, seg := range trk.Segments {
			for pi, xp := range seg.Points {
				p, err := xp.point()
				if err != nil {
					return Document{}, fmt.Errorf("gpx: trk %d seg %d pt %d: %w", ti, si, pi, err)
				}
				doc.Points = append(doc.Points, p)
			}
		}
	}
	return doc, nil
}

func (xp xmlPoint) point() (Point, error) {
	p := Point{LatDeg: xp.Lat, LonDeg: xp.Lon}
	if xp.Ele != nil {
		p.ElevationM, p.HasEle = *xp.Ele, true
	}
	if xp.Speed != nil {
		p.SpeedMps, p.HasSpeed = *xp.Speed, true
	}
	if xp.ATemp != nil {
		p.TempC, p.HasTemp = *xp.ATemp, true
	}
	if s := strings.TrimSpace(xp.Time); s != "" {
		t, err := parseTime(s)
		if err != nil {
			return Point{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
		p.Time = t
	}
	return p, nil
}

// recordTime matches the layout FormatTime writes. Its fields may be out of
// range, e.g. hour 24, so they are read as plain numbers.
var recordTime = regexp.MustCompile(`^(\d{1,9})-(\d{1,9})-(\d{1,9})T(\d{1,9}):(\d{1,9}):(\d{1,9})Z$`)

// parseTime normalizes FormatTime output the way rib.Record.Time does and
// accepts any other RFC 3339 time.
func parseTime(s string) (time.Time, error) {
	m := recordTime.FindStringSubmatch(s)
	if m == nil {
		return time.Parse(time.RFC3339, s)
	}
	var f [6]int
	for i := range f {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, err
		}
		f[i] = n
	}
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, time.UTC), nil
}

// PointFromRecord converts a decoded record to the form Read returns.
func PointFromRecord(r rib.Record) Point {
	return Point{
		LatDeg:     r.LatDeg,
		LonDeg:     r.LonDeg,
		ElevationM: float64(r.ElevationM),
		HasEle:     true,
		Time:       r.Time(),
		SpeedMps:   r.SpeedMps,
		HasSpeed:   true,
		TempC:      float64(r.TempC),
		HasTemp:    true,
	}
}
