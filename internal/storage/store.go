// Package storage keeps finished runs on disk. Each run is a directory under
// the store's base directory holding metadata.json, states.csv and the
// config.yaml it was produced from.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/rungekutta/internal/config"
	"github.com/san-kum/rungekutta/internal/experiment"
	"github.com/san-kum/rungekutta/internal/ode"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	configFile   = "config.yaml"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Method     string             `json:"method"`
	Kind       string             `json:"kind"`
	Model      string             `json:"model"`
	Params     map[string]float64 `json:"params,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	StepSize   float64            `json:"step_size"`
	T0         float64            `json:"t0"`
	StepsTaken int                `json:"steps_taken"`
	Rows       int                `json:"rows"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes run under a new id and returns the id.
func (s *Store) Save(run *experiment.Run) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	runID, err := s.newRunDir(fmt.Sprintf("%s_%s_%d", run.Model, run.Method, now.Unix()))
	if err != nil {
		return "", err
	}
	runDir := s.Dir(runID)

	meta := RunMetadata{
		ID:         runID,
		Method:     run.Method,
		Kind:       string(run.Kind),
		Model:      run.Model,
		Params:     run.Config.Params,
		Timestamp:  now,
		StepSize:   run.Config.StepSize,
		T0:         run.Config.T0,
		StepsTaken: run.Result.StepsTaken,
		Rows:       len(run.Result.States),
		Elapsed:    run.Elapsed.Seconds(),
		Metrics:    finiteOnly(run.Metrics),
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), run.Config); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, run.Result); err != nil {
		return "", err
	}
	return runID, f.Close()
}

// newRunDir creates base, or base_2, base_3... if runs were saved within the
// same second.
func (s *Store) newRunDir(base string) (string, error) {
	id := base
	for n := 2; ; n++ {
		err := os.Mkdir(s.Dir(id), 0755)
		if err == nil {
			return id, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// finiteOnly drops metrics JSON cannot encode.
func finiteOnly(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the configuration the run was produced from.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(s.Dir(runID), configFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return cfg, err
}

// LoadStates reads the recorded rows of a run.
func (s *Store) LoadStates(runID string) (*ode.Result, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	res, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	if meta, err := s.Load(runID); err == nil {
		res.StepsTaken = meta.StepsTaken
	}
	return res, nil
}
