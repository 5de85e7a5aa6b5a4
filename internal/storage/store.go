// Package storage writes diagnostics of headless runs to disk. Records are
// read back only for plotting and export; no simulator is ever restored
// from them.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/dpsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	traceFile    = "trace.csv"
)

// ErrInvalidName is returned for run names and ids that are not a single
// path element.
var ErrInvalidName = errors.New("invalid run name")

var seriesHeader = []string{"frame", "time", "a1", "a2", "a1_v", "a2_v", "kinetic", "potential", "total", "chaos"}

type Store struct {
	baseDir string
	logger  *slog.Logger
	now     func() time.Time
}

func New(baseDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{baseDir: baseDir, logger: logger, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Size      int                `json:"size"`
	Frames    int                `json:"frames"`
	Dt        float64            `json:"dt"`
	Substeps  int                `json:"substeps"`
	TimeScale float64            `json:"time_scale"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is the state of the primary pendulum and the batch diagnostics
// after one frame. Chaos is NaN for single-pendulum runs.
type Sample struct {
	Frame     uint64
	Time      float64
	A1, A2    float64
	A1V, A2V  float64
	Kinetic   float64
	Potential float64
	Chaos     float64
}

func (s Sample) Total() float64 { return s.Kinetic + s.Potential }

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, samples []Sample, trace []dynamo.Vec2) (string, error) {
	if strings.ContainsAny(meta.Name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, meta.Name)
	}
	now := s.now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = finite(meta.Metrics)
	runDir, err := s.runDir(meta.ID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, seriesFile), func(w io.Writer) error {
		return WriteSeriesCSV(w, samples)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, traceFile), func(w io.Writer) error {
		return writeTraceCSV(w, trace)
	}); err != nil {
		return "", err
	}

	s.logger.Info("run saved", "id", meta.ID, "frames", len(samples), "trace", len(trace))
	return meta.ID, nil
}

// finite drops values JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// WriteSeriesCSV writes samples with a header row.
func WriteSeriesCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.FormatUint(smp.Frame, 10),
			formatFloat(smp.Time),
			formatFloat(smp.A1),
			formatFloat(smp.A2),
			formatFloat(smp.A1V),
			formatFloat(smp.A2V),
			formatFloat(smp.Kinetic),
			formatFloat(smp.Potential),
			formatFloat(smp.Total()),
			formatFloat(smp.Chaos),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeTraceCSV(w io.Writer, trace []dynamo.Vec2) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range trace {
		if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// runDir resolves the directory of runID inside the store.
func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads the per-frame samples of a run. Rows that fail to parse
// are skipped.
func (s *Store) LoadSeries(runID string) ([]Sample, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(dir, seriesFile))
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(records))
	for _, rec := range records {
		if len(rec) < len(seriesHeader) {
			continue
		}
		frame, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			continue
		}

		vals, ok := parseFloats(rec[1:])
		if !ok {
			continue
		}
		samples = append(samples, Sample{
			Frame:     frame,
			Time:      vals[0],
			A1:        vals[1],
			A2:        vals[2],
			A1V:       vals[3],
			A2V:       vals[4],
			Kinetic:   vals[5],
			Potential: vals[6],
			Chaos:     vals[8],
		})
	}
	return samples, nil
}

// LoadTrace reads the final tip trace of the primary pendulum, oldest first.
func (s *Store) LoadTrace(runID string) ([]dynamo.Vec2, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(dir, traceFile))
	if err != nil {
		return nil, err
	}

	trace := make([]dynamo.Vec2, 0, len(records))
	for _, rec := range records {
		vals, ok := parseFloats(rec)
		if !ok || len(vals) < 2 {
			continue
		}
		trace = append(trace, dynamo.Vec2{X: vals[0], Y: vals[1]})
	}
	return trace, nil
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, bool) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}
