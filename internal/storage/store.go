package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/san-kum/navcore/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

var traceHeader = []string{
	"time", "x", "y", "z", "vx", "vy", "vz", "speed", "state", "goal_distance", "thrust",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Layout     string             `json:"layout"`
	Mission    string             `json:"mission"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Ticks      int                `json:"ticks"`
	Integrator string             `json:"integrator"`
	Done       bool               `json:"done"`
	Status     string             `json:"status"`
	Metrics    map[string]float64 `json:"metrics"`
	// Environment is kept so that exports can draw obstacles and ports.
	Environment sim.Environment `json:"environment"`
}

// Save writes a run under a fresh id: metadata.json plus trace.csv with one
// row per sample.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now()
	meta.Ticks = result.Ticks
	meta.Done = result.Done
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := ExportCSV(csvFile, result.Samples); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func traceRow(s sim.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		f(s.Time),
		f(s.Position.X), f(s.Position.Y), f(s.Position.Z),
		f(s.Velocity.X), f(s.Velocity.Y), f(s.Velocity.Z),
		f(s.Speed),
		s.State,
		f(s.GoalDistance),
		f(s.Thrust),
	}
}

// List returns every readable run, newest first.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads a run's samples. Rows that do not parse are skipped.
func (s *Store) LoadTrace(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) != len(traceHeader) {
			continue
		}
		smp, ok := parseRow(record)
		if !ok {
			continue
		}
		smp.Tick = len(samples)
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseRow(record []string) (sim.Sample, bool) {
	var v [10]float64
	cols := []int{0, 1, 2, 3, 4, 5, 6, 7, 9, 10}
	for i, c := range cols {
		f, err := strconv.ParseFloat(record[c], 64)
		if err != nil {
			return sim.Sample{}, false
		}
		v[i] = f
	}
	return sim.Sample{
		Time:         v[0],
		Position:     r3.Vector{X: v[1], Y: v[2], Z: v[3]},
		Velocity:     r3.Vector{X: v[4], Y: v[5], Z: v[6]},
		Speed:        v[7],
		State:        record[8],
		GoalDistance: v[8],
		Thrust:       v[9],
	}, true
}
