package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
)

var (
	ErrColumns = errors.New("storage: input must have 7 columns (mass, x, y, z, vx, vy, vz)")
	ErrEmpty   = errors.New("storage: input holds no bodies")
)

// LoadMatrix reads a 2-D float64 .npy array.
func LoadMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("storage: reading %s: %w", path, err)
	}
	return &m, nil
}

// LoadInput reads an n x 7 body table.
func LoadInput(path string) (*mat.Dense, error) {
	m, err := LoadMatrix(path)
	if err != nil {
		if m == nil && isEmptyArray(path) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	if err := CheckInput(m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func CheckInput(m mat.Matrix) error {
	rows, cols := m.Dims()
	if cols != body.NumColumns {
		return fmt.Errorf("%w, got %d", ErrColumns, cols)
	}
	if rows == 0 {
		return ErrEmpty
	}
	return nil
}

// SaveOutput writes m as .npy. The data goes to a temporary file in the
// target directory first, so a failed write never leaves a partial file
// under path.
func SaveOutput(path string, m mat.Matrix) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := npyio.Write(tmp, m); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// isEmptyArray reports whether path holds a valid header with a zero-size
// shape, which gonum cannot represent as a matrix.
func isEmptyArray(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return false
	}
	for _, d := range r.Header.Descr.Shape {
		if d == 0 {
			return true
		}
	}
	return false
}
