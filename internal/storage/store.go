package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/experiment"
	"github.com/san-kum/lorenz/internal/logger"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
)

// ErrRunNotFound is returned when a run ID has no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Params mirrors the system parameters of a run.
type Params struct {
	Sigma float64 `json:"sigma"`
	Beta  float64 `json:"beta"`
	Rho   float64 `json:"rho"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Params    Params             `json:"params"`
	Initial   []float64          `json:"initial"`
	Perturbed []float64          `json:"perturbed"`
	Horizon   dynamo.Horizon     `json:"horizon"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func metadataOf(res *experiment.Result) RunMetadata {
	return RunMetadata{
		Params:    Params{res.System.Sigma(), res.System.Beta(), res.System.Rho()},
		Initial:   res.Initial.Clone(),
		Perturbed: res.Perturbed.Clone(),
		Horizon:   res.Horizon,
		Steps:     res.Steps(),
	}
}

// Save writes the run metadata and both trajectories under a fresh run
// directory and returns its ID.
func (s *Store) Save(res *experiment.Result, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("lorenz_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := metadataOf(res)
	meta.ID = runID
	meta.Timestamp = now
	meta.Metrics = metrics

	data, err := sonic.ConfigStd.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeCSVFile(filepath.Join(runDir, trajectoriesFile), res.Base, res.Pert); err != nil {
		return "", err
	}

	log := logger.With("storage")
	log.Info().Str("run", runID).Int("steps", meta.Steps).Msg("run saved")
	return runID, nil
}

func writeCSVFile(path string, base, pert *dynamo.Trajectory) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return WriteCSV(f, base, pert)
}

// WriteCSV writes one row per sample: t followed by x, y, z of each
// trajectory in order. All trajectories must share the time grid of the
// first. Values keep full float64 precision.
func WriteCSV(w io.Writer, trs ...*dynamo.Trajectory) error {
	if len(trs) == 0 {
		return fmt.Errorf("no trajectories to write")
	}
	for _, tr := range trs[1:] {
		if err := dynamo.SameGrid(trs[0], tr); err != nil {
			return err
		}
	}

	header := []string{"t"}
	for k := range trs {
		suffix := ""
		if len(trs) > 1 {
			suffix = strconv.Itoa(k + 1)
		}
		header = append(header, "x"+suffix, "y"+suffix, "z"+suffix)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < trs[0].Len(); i++ {
		row[0] = formatFloat(trs[0].T[i])
		for k, tr := range trs {
			row[1+3*k] = formatFloat(tr.X[i])
			row[2+3*k] = formatFloat(tr.Y[i])
			row[3+3*k] = formatFloat(tr.Z[i])
		}
		if err := cw.Write(row); err != nil {
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := sonic.ConfigStd.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectories reads back the base and perturbed trajectories of a run.
func (s *Store) LoadTrajectories(runID string) (*dynamo.Trajectory, *dynamo.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()

	trs, err := ReadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", runID, err)
	}
	if len(trs) != 2 {
		return nil, nil, fmt.Errorf("read %s: expected 2 trajectories, found %d", runID, len(trs))
	}
	return trs[0], trs[1], nil
}

// ReadCSV parses the layout produced by WriteCSV.
func ReadCSV(r io.Reader) ([]*dynamo.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	cols := len(records[0])
	if cols < 4 || (cols-1)%3 != 0 {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	n := len(records) - 1
	trs := make([]*dynamo.Trajectory, (cols-1)/3)
	for k := range trs {
		trs[k] = dynamo.NewTrajectory(n)
	}

	for i, rec := range records[1:] {
		vals := make([]float64, cols)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			vals[j] = v
		}
		for k, tr := range trs {
			tr.T[i] = vals[0]
			tr.X[i] = vals[1+3*k]
			tr.Y[i] = vals[2+3*k]
			tr.Z[i] = vals[3+3*k]
		}
	}
	return trs, nil
}
