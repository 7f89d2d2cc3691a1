package gpx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"ribgpx/internal/rib"
)

func requireWellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("document is not well-formed: %v\n%s", err, doc)
		}
	}
}

func point(i int) rib.Record {
	return rib.Record{
		Year: 2023, Month: 2, Day: 14,
		Hour: 10, Minute: 11, Second: i % 60,
		LatDeg:     45.5 + float64(i)/1000,
		LonDeg:     -122.5,
		ElevationM: uint16(2000 + i),
		SpeedMps:   2.5,
		TempC:      i - 3,
	}
}

func TestMarshal_WellFormedForAnyCount(t *testing.T) {
	for _, n := range []int{0, 1, 25} {
		pts := make([]rib.Record, n)
		for i := range pts {
			pts[i] = point(i)
		}
		doc, err := Marshal(Meta{}, pts)
		if err != nil {
			t.Fatalf("Marshal(%d) error: %v", n, err)
		}
		requireWellFormed(t, doc)
		if got := bytes.Count(doc, []byte("<trkpt ")); got != n {
			t.Fatalf("trkpt count=%d want %d", got, n)
		}
		if !bytes.HasPrefix(doc, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
			t.Fatalf("missing xml declaration: %.60s", doc)
		}
	}
}

func TestMarshal_TrackPointFields(t *testing.T) {
	doc, err := Marshal(Meta{Name: "day 90"}, []rib.Record{point(0)})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	out := string(doc)
	for _, want := range []string{
		`version="1.1"`,
		`xmlns="` + NamespaceGPX + `"`,
		`xmlns:ns3="` + NamespaceTPX + `"`,
		`creator="ribgpx"`,
		`<name>day 90</name>`,
		`<trkpt lat="45.5" lon="-122.5">`,
		`<ele>2000</ele>`,
		`<time>2023-02-14T10:11:00Z</time>`,
		`<speed>2.5</speed>`,
		`<ns3:atemp>-3.0</ns3:atemp>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatTime_PadsEveryField(t *testing.T) {
	got := FormatTime(rib.Record{Year: 2023, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5})
	if got != "2023-01-02T03:04:05Z" {
		t.Fatalf("FormatTime=%q", got)
	}
}

func TestFormatFloat_NoExponent(t *testing.T) {
	cases := map[float64]string{
		0:           "0",
		-0.5:        "-0.5",
		0.000001:    "0.000001",
		1.0 / 3.0:   "0.3333333333333333",
		46.05205667: "46.05205667",
	}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v)=%q want %q", in, got, want)
		}
	}
}

func TestWriteRead_PreservesOrderAndValues(t *testing.T) {
	pts := make([]rib.Record, 10)
	for i := range pts {
		pts[i] = point(9 - i)
	}
	doc, err := Marshal(Meta{Name: "A & B <run>"}, pts)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	got, err := Read(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.Name != "A & B <run>" {
		t.Fatalf("name=%q", got.Name)
	}
	if len(got.Points) != len(pts) {
		t.Fatalf("points=%d want %d", len(got.Points), len(pts))
	}
	for i, p := range got.Points {
		want := pts[i]
		if p.LatDeg != want.LatDeg || p.LonDeg != want.LonDeg {
			t.Fatalf("point %d lat/lon=%v/%v want %v/%v", i, p.LatDeg, p.LonDeg, want.LatDeg, want.LonDeg)
		}
		if !p.HasEle || p.ElevationM != float64(want.ElevationM) {
			t.Fatalf("point %d ele=%v want %d", i, p.ElevationM, want.ElevationM)
		}
		if !p.HasSpeed || math.Abs(p.SpeedMps-want.SpeedMps) > 1e-12 {
			t.Fatalf("point %d speed=%v want %v", i, p.SpeedMps, want.SpeedMps)
		}
		if !p.HasTemp || p.TempC != float64(want.TempC) {
			t.Fatalf("point %d temp=%v want %d", i, p.TempC, want.TempC)
		}
		if !p.Time.Equal(want.Time()) {
			t.Fatalf("point %d time=%s want %s", i, p.Time, want.Time())
		}
	}
}

func TestWriteRead_OutOfRangeTimeFields(t *testing.T) {
	r := point(0)
	r.Year, r.Month, r.Day = 2016, 3, 30
	r.Hour, r.Minute, r.Second = 24, 5, 9
	doc, err := Marshal(Meta{}, []rib.Record{r})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Contains(doc, []byte("<time>2016-03-30T24:05:09Z</time>")) {
		t.Fatalf("raw time fields not written:\n%s", doc)
	}

	got, err := Read(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := time.Date(2016, time.March, 31, 0, 5, 9, 0, time.UTC)
	if len(got.Points) != 1 || !got.Points[0].Time.Equal(want) {
		t.Fatalf("points=%+v want time %s", got.Points, want)
	}
	if !got.Points[0].Time.Equal(r.Time()) {
		t.Fatalf("time=%s want %s", got.Points[0].Time, r.Time())
	}
}

func TestRead_TimeWithOffset(t *testing.T) {
	const doc = `<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>2020-05-06T09:08:09.5+02:00</time></trkpt></trkseg></trk></gpx>`
	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := time.Date(2020, 5, 6, 7, 8, 9, 5e8, time.UTC)
	if !got.Points[0].Time.Equal(want) {
		t.Fatalf("time=%s want %s", got.Points[0].Time, want)
	}
}

func TestRead_ForeignDocument(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<gpx version="1.1" creator="other" xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
  <trk><name>walk</name>
    <trkseg>
      <trkpt lat="1.5" lon="2.5"><time>2020-05-06T07:08:09Z</time>
        <extensions><gpxtpx:TrackPointExtension><gpxtpx:atemp>21.5</gpxtpx:atemp></gpxtpx:TrackPointExtension></extensions>
      </trkpt>
    </trkseg>
    <trkseg><trkpt lat="3" lon="4"><ele>12.5</ele></trkpt></trkseg>
  </trk>
</gpx>`
	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.Name != "walk" || got.Creator != "other" {
		t.Fatalf("name=%q creator=%q", got.Name, got.Creator)
	}
	if len(got.Points) != 2 {
		t.Fatalf("points=%d want 2", len(got.Points))
	}
	p0, p1 := got.Points[0], got.Points[1]
	if !p0.HasTemp || p0.TempC != 21.5 || p0.HasEle || p0.HasSpeed {
		t.Fatalf("p0=%+v", p0)
	}
	if !p0.Time.Equal(time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)) {
		t.Fatalf("p0 time=%s", p0.Time)
	}
	if !p1.HasEle || p1.ElevationM != 12.5 || !p1.Time.IsZero() {
		t.Fatalf("p1=%+v", p1)
	}
}

func TestRead_RejectsBadTime(t *testing.T) {
	const doc = `<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>yesterday</time></trkpt></trkseg></trk></gpx>`
	if _, err := Read(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRead_RejectsMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("<gpx><trk>")); err == nil {
		t.Fatalf("expected error")
	}
}
