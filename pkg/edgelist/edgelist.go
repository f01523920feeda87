// Package edgelist reads dated snapshot graphs from tab-separated edge list
// files. Each file starts with a header row; every following row names the
// two endpoints of an undirected edge. The snapshot date is the
// second-to-last dot-separated component of the file name, as in
// graph.2020-01-01.tsv or graph.2020-01.tsv.
package edgelist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-evolution/pkg/snapshot"
)

// Sentinel errors
var (
	ErrNoDate        = errors.New("file name carries no snapshot date")
	ErrDuplicateDate = errors.New("two edge lists share a snapshot date")
)

// dateLayouts are tried in order when parsing a file name date
var dateLayouts = []string{snapshot.DateLayout, "2006-01"}

// ParseError reports a malformed row in an edge list
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseDate extracts the snapshot date from a file name
func ParseDate(path string) (time.Time, error) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoDate, path)
	}

	candidate := parts[len(parts)-2]
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrNoDate, path)
}

// Read loads one edge list through a read-only memory map
func Read(path string) (*snapshot.Graph, error) {
	date, err := ParseDate(path)
	if err != nil {
		return nil, err
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge list: %w", err)
	}
	defer func() { _ = reader.Close() }()

	edges, err := parse(path, io.NewSectionReader(reader, 0, int64(reader.Len())))
	if err != nil {
		return nil, err
	}

	return snapshot.NewGraph(date, edges), nil
}

// parse reads the header row and then one edge per row. Columns after the
// second are ignored.
func parse(path string, r io.Reader) ([]snapshot.Edge, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	// skip header
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Line: 1, Err: err}
	}

	var edges []snapshot.Edge
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, &ParseError{Path: path, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if len(record) < 2 {
			return nil, &ParseError{Path: path, Line: line,
				Err: fmt.Errorf("expected 2 columns, got %d", len(record))}
		}

		from := strings.TrimSpace(record[0])
		to := strings.TrimSpace(record[1])
		if from == "" || to == "" {
			return nil, &ParseError{Path: path, Line: line, Err: errors.New("empty vertex name")}
		}
		edges = append(edges, snapshot.Edge{From: from, To: to})
	}

	return edges, nil
}
