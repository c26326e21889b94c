package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Row is one parsed input line: coordinates in degrees plus the raw
// line bytes that become the point's opaque record handle.
type Row struct {
	Lon, Lat float64
	Line     []byte
}

// ParseCSV parses lines of the form "lon,lat[,extra...]" from data.
// Longitude must be in [-360, 360]; negatives are normalized into
// [0, 360). Latitude must be in [-90, 90]. Each Row.Line is a subslice
// of data (not a copy), trimmed of its line ending.
func ParseCSV(data []byte, delim rune) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	var rows []Row
	offset := int64(0)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, fmt.Errorf("ingest: line %d: %w", len(rows)+1, err)
		}
		end := r.InputOffset()
		line := trimLineEnding(data[offset:end])
		offset = end

		if len(rec) < 2 {
			return nil, fmt.Errorf("ingest: line %d does not begin with lon,lat fields: %q", len(rows)+1, line)
		}
		lon, err := parseLon(rec[0])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", len(rows)+1, err)
		}
		lat, err := parseLat(rec[1])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, Row{Lon: lon, Lat: lat, Line: line})
	}
}

// trimLineEnding strips line endings on both sides: the reader skips
// blank lines, so the byte range of a record can start with the
// newlines that ended them.
func trimLineEnding(line []byte) []byte {
	return bytes.Trim(line, "\r\n")
}

func parseLon(field string) (float64, error) {
	lon, err := strconv.ParseFloat(field, 64)
	if err != nil || !(lon >= -360 && lon <= 360) {
		return 0, fmt.Errorf("%q is not a valid longitude", field)
	}
	if lon < 0 {
		lon += 360
	}
	return lon, nil
}

func parseLat(field string) (float64, error) {
	lat, err := strconv.ParseFloat(field, 64)
	if err != nil || !(lat >= -90 && lat <= 90) {
		return 0, fmt.Errorf("%q is not a valid latitude", field)
	}
	return lat, nil
}
