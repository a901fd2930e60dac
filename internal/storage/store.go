package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

const (
	metadataFile = "metadata.json"
	outputFile   = "output.npy"
)

// Store keeps one directory per run holding the sampled positions and a
// metadata sidecar.
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
	ID            string             `json:"id"`
	Algorithm     string             `json:"algorithm"`
	Timestamp     time.Time          `json:"timestamp"`
	Input         string             `json:"input,omitempty"`
	Bodies        int                `json:"bodies"`
	Workers       int                `json:"workers"`
	BlockSize     int                `json:"block_size"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	Outputs       int                `json:"outputs"`
	Steps         int                `json:"steps"`
	Rows          int                `json:"rows"`
	ElapsedSecs   float64            `json:"elapsed_secs"`
	MomentumDrift float64            `json:"momentum_drift"`
	EnergyDrift   float64            `json:"energy_drift"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a new run directory and returns its id.
func (s *Store) Save(meta RunMetadata, output mat.Matrix) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Algorithm, meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := SaveOutput(filepath.Join(runDir, outputFile), output); err != nil {
		return "", err
	}
	if err := SaveMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	return meta.ID, nil
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
		meta, err := LoadMetadata(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	return LoadMetadata(filepath.Join(s.baseDir, runID, metadataFile))
}

func (s *Store) LoadOutput(runID string) (*mat.Dense, error) {
	return LoadMatrix(filepath.Join(s.baseDir, runID, outputFile))
}

func SaveMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func LoadMetadata(path string) (*RunMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
