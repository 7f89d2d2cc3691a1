package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ribgpx/internal/gpx"
	"ribgpx/internal/tracksum"
)

func printTrackSummary(path, name string, pts []gpx.Point, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "path: %s\n", path); err != nil {
		return err
	}
	if name != "" {
		if _, err := fmt.Fprintf(w, "name: %s\n", name); err != nil {
			return err
		}
	}
	return tracksum.Summarize(pts).Print(w)
}

// printGPXSummary summarizes an existing GPX file, e.g. a reference output
// from an earlier conversion.
func printGPXSummary(path string, w io.Writer) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := gpx.Read(f)
	if err != nil {
		return err
	}
	return printTrackSummary(path, doc.Name, doc.Points, w)
}
