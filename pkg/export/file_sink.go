package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-evolution/pkg/logging"
)

// CompressedExt is appended to every file written with compression on
const CompressedExt = ".sz"

// EvolutionFile holds the identity maps and matchings as JSON
const EvolutionFile = "evolution.json"

// FileSink writes each table to its own file under Dir. With Compress set
// every file is snappy-framed and gets the CompressedExt suffix.
type FileSink struct {
	Dir      string
	Compress bool
	logger   logging.Logger
}

// NewFileSink creates the output directory if needed
func NewFileSink(dir string, compress bool, logger logging.Logger) (*FileSink, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileSink{
		Dir:      dir,
		Compress: compress,
		logger:   logger.With(logging.Component("export.file")),
	}, nil
}

// Write implements Sink
func (s *FileSink) Write(ctx context.Context, r *Report) error {
	tables, err := Tables(r)
	if err != nil {
		return err
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := s.writeTable(t)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", t.Name, err)
		}
		s.logger.Debug("table written", logging.Path(path), logging.Count(len(t.Rows)))
	}

	path, err := s.writeFile(EvolutionFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newEvolutionDocument(r))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", EvolutionFile, err)
	}

	s.logger.Info("report written", logging.Path(s.Dir), logging.RunID(r.RunID))
	s.logger.Debug("evolution document written", logging.Path(path))
	return nil
}

// Close implements Sink
func (s *FileSink) Close() error { return nil }

func (s *FileSink) writeTable(t Table) (string, error) {
	return s.writeFile(t.File, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = delimiterFor(t.File)

		if err := cw.Write(t.Header()); err != nil {
			return err
		}
		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i, v := range row {
				record[i] = formatValue(v)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// writeFile creates name under Dir and streams fill into it, through a
// snappy framed writer when compressing
func (s *FileSink) writeFile(name string, fill func(w io.Writer) error) (path string, err error) {
	path = filepath.Join(s.Dir, name)
	if s.Compress {
		path += CompressedExt
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if s.Compress {
		sw := snappy.NewBufferedWriter(f)
		if err := fill(sw); err != nil {
			return "", err
		}
		return path, sw.Close()
	}

	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		return "", err
	}
	return path, bw.Flush()
}

// ReadTable reads a file written by FileSink, header row included.
// Files ending in CompressedExt are decompressed.
func ReadTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(path, CompressedExt) {
		r = snappy.NewReader(f)
		name = strings.TrimSuffix(path, CompressedExt)
	}

	cr := csv.NewReader(r)
	cr.Comma = delimiterFor(name)
	return cr.ReadAll()
}

func delimiterFor(name string) rune {
	if filepath.Ext(name) == ".csv" {
		return ','
	}
	return '\t'
}

// evolutionDocument is the JSON rendering of the identity maps. Matchings
// map "from_to" date pairs to prev community -> next community.
type evolutionDocument struct {
	RunID       string                        `json:"run_id"`
	Plain       map[string]int                `json:"plain"`
	Stable      map[string]int                `json:"stable"`
	Matchings   map[string]map[string]int     `json:"matchings"`
	Distances   map[string]map[string]float64 `json:"distances"`
	PlainCount  int                           `json:"plain_count"`
	StableCount int                           `json:"stable_count"`
}

func newEvolutionDocument(r *Report) evolutionDocument {
	doc := evolutionDocument{
		RunID:       r.RunID,
		Plain:       make(map[string]int, len(r.Result.Plain)),
		Stable:      make(map[string]int, len(r.Result.Stable)),
		Matchings:   make(map[string]map[string]int, len(r.Result.Matchings)),
		Distances:   make(map[string]map[string]float64, len(r.Result.Matchings)),
		PlainCount:  r.Result.PlainCount,
		StableCount: r.Result.StableCount,
	}
	for k, id := range r.Result.Plain {
		doc.Plain[k.String()] = id
	}
	for k, id := range r.Result.Stable {
		doc.Stable[k.String()] = id
	}
	for _, m := range r.Result.Matchings {
		pairs := make(map[string]int, len(m.Pairs))
		distances := make(map[string]float64, len(m.Pairs))
		for _, p := range m.Pairs {
			pairs[strconv.Itoa(p.Row)] = p.Col
			distances[strconv.Itoa(p.Row)] = p.Cost
		}
		doc.Matchings[m.Key()] = pairs
		doc.Distances[m.Key()] = distances
	}
	return doc
}
