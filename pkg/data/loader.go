package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ReadCSV loads a CSV file with a header row into a Frame.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("read " + path + ": missing header row")
	}
	return NewFrame(rows[0], rows[1:])
}

// WriteCSV writes the frame with its header, creating parent directories.
func WriteCSV(path string, f *Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(f.Header); err != nil {
		file.Close()
		return err
	}
	if err := writer.WriteAll(f.Records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FromMatrix renders a numeric matrix as a frame, one column per header entry.
func FromMatrix(header []string, m mat.Matrix) (*Frame, error) {
	r, c := m.Dims()
	if len(header) != c {
		return nil, fmt.Errorf("frame: %d header names for %d columns", len(header), c)
	}
	records := make([][]string, r)
	for i := 0; i < r; i++ {
		rec := make([]string, c)
		for j := 0; j < c; j++ {
			rec[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		records[i] = rec
	}
	return NewFrame(header, records)
}
