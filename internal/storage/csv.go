package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ExportCSV writes an output matrix as CSV with a header x0,y0,z0,x1,...
// and one line per sampled row prefixed by the row index.
func ExportCSV(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	cw := csv.NewWriter(w)

	header := make([]string, 0, cols+1)
	header = append(header, "row")
	axes := [3]string{"x", "y", "z"}
	for c := 0; c < cols; c++ {
		header = append(header, fmt.Sprintf("%s%d", axes[c%3], c/3))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, cols+1)
	for r := 0; r < rows; r++ {
		record[0] = strconv.Itoa(r)
		for c := 0; c < cols; c++ {
			record[c+1] = strconv.FormatFloat(m.At(r, c), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
