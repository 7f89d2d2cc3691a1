package gpx

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"ribgpx/internal/rib"
)

const (
	NamespaceGPX   = "http://www.topografix.com/GPX/1/1"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceTPX   = "http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
	schemaLocation = NamespaceGPX + " http://www.topografix.com/GPX/1/1/gpx.xsd " +
		NamespaceTPX + " http://www.garmin.com/xmlschemas/TrackPointExtensionv1.xsd"

	DefaultCreator = "ribgpx"
	DefaultName    = "rib track"
)

// Meta is the document-level information written ahead of the track.
type Meta struct {
	Name    string
	Creator string
}

func (m Meta) withDefaults() Meta {
	if m.Name == "" {
		m.Name = DefaultName
	}
	if m.Creator == "" {
		m.Creator = DefaultCreator
	}
	return m
}

type trkpt struct {
	XMLName    xml.Name   `xml:"trkpt"`
	Lat        string     `xml:"lat,attr"`
	Lon        string     `xml:"lon,attr"`
	Ele        uint16     `xml:"ele"`
	Time       string     `xml:"time"`
	Speed      string     `xml:"speed"`
	Extensions extensions `xml:"extensions"`
}

// encoding/xml writes prefixed names verbatim; ns3 is declared on <gpx>.
type extensions struct {
	TPX trackPointExtension `xml:"ns3:TrackPointExtension"`
}

type trackPointExtension struct {
	ATemp string `xml:"ns3:atemp"`
}

// Write renders points as one GPX 1.1 track with a single segment, in
// input order. Points are encoded one at a time so large tracks are
// streamed to w.
func Write(w io.Writer, meta Meta, points []rib.Record) error {
	meta = meta.withDefaults()

	bw := bufio.NewWriterSize(w, 64*1024)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "gpx"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: "1.1"},
			{Name: xml.Name{Local: "creator"}, Value: meta.Creator},
			{Name: xml.Name{Local: "xmlns"}, Value: NamespaceGPX},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: NamespaceXSI},
			{Name: xml.Name{Local: "xmlns:ns3"}, Value: NamespaceTPX},
			{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schemaLocation},
		},
	}
	metadata := xml.StartElement{Name: xml.Name{Local: "metadata"}}
	trk := xml.StartElement{Name: xml.Name{Local: "trk"}}
	trkseg := xml.StartElement{Name: xml.Name{Local: "trkseg"}}

	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if err := enc.EncodeToken(metadata); err != nil {
		return err
	}
	if err := encodeName(enc, meta.Name); err != nil {
		return err
	}
	if err := enc.EncodeToken(metadata.End()); err != nil {
		return err
	}
	if err := enc.EncodeToken(trk); err != nil {
		return err
	}
	if err := encodeName(enc, meta.Name); err != nil {
		return err
	}
	if err := enc.EncodeToken(trkseg); err != nil {
		return err
	}
	for i, p := range points {
		if err := enc.Encode(trackPoint(p)); err != nil {
			return fmt.Errorf("gpx: encode point %d: %w", i, err)
		}
	}
	for _, end := range []xml.EndElement{trkseg.End(), trk.End(), root.End()} {
		if err := enc.EncodeToken(end); err != nil {
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal returns the document Write would produce.
func Marshal(meta Meta, points []rib.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, meta, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeName(enc *xml.Encoder, name string) error {
	return enc.EncodeElement(name, xml.StartElement{Name: xml.Name{Local: "name"}})
}

func trackPoint(r rib.Record) trkpt {
	return trkpt{
		Lat:   FormatFloat(r.LatDeg),
		Lon:   FormatFloat(r.LonDeg),
		Ele:   r.ElevationM,
		Time:  FormatTime(r),
		Speed: FormatFloat(r.SpeedMps),
		Extensions: extensions{
			TPX: trackPointExtension{ATemp: strconv.FormatFloat(float64(r.TempC), 'f', 1, 64)},
		},
	}
}

// FormatFloat is the shortest decimal that round-trips v. GPX coordinates
// are xsd:decimal, so exponent notation is never used.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatTime renders the record's date and time fields, each zero-padded
// to at least two digits, with a literal Z suffix.
func FormatTime(r rib.Record) string {
	return fmt.Sprintf("%02d-%02d-%02dT%02d:%02d:%02dZ", r.Year, r.Month, r.Day, r.Hour, r.Minute, r.Second)
}
