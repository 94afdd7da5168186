package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// hitColumns is the canonical column order of a hit table.
var hitColumns = []string{
	"run_id",
	"origin_id",
	"compound_id",
	"compound_name",
	"predicate",
	"object_id",
	"object_name",
	"data_source",
	"search_key",
	"weight",
}

// WriteHits writes hits as a tab-separated table with a header row.
func WriteHits(w io.Writer, hits []Hit) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(hitColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, h := range hits {
		row := []string{
			h.RunID,
			h.OriginID,
			h.CompoundID,
			h.CompoundName,
			h.Predicate,
			h.ObjectID,
			h.ObjectName,
			h.DataSource,
			h.SearchKey,
			strconv.FormatFloat(h.Weight, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadHits reads a tab-separated hit table written by WriteHits.
// The header row is required and validated.
func ReadHits(r io.Reader) ([]Hit, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(hitColumns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range hitColumns {
		if header[i] != col {
			return nil, fmt.Errorf("read header: column %d is %q, want %q", i, header[i], col)
		}
	}

	var hits []Hit
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		weight, err := strconv.ParseFloat(row[9], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse weight %q: %w", line, row[9], err)
		}
		hits = append(hits, Hit{
			RunID:        row[0],
			OriginID:     row[1],
			CompoundID:   row[2],
			CompoundName: row[3],
			Predicate:    row[4],
			ObjectID:     row[5],
			ObjectName:   row[6],
			DataSource:   row[7],
			SearchKey:    row[8],
			Weight:       weight,
		})
	}
	return hits, nil
}

// ReadHitsFile reads a hit table from path.
func ReadHitsFile(path string) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hit table: %w", err)
	}
	defer f.Close()
	return ReadHits(f)
}

// WriteHitsFile writes a hit table to path.
func WriteHitsFile(path string, hits []Hit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create hit table: %w", err)
	}
	if err := WriteHits(f, hits); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
