package utils

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/facette/natsort"
)

type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}
func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

// WriteCSV writes the header rows followed by data sorted naturally by its
// first column.
func WriteCSV(w io.Writer, data CSV, header ...[]string) error {
	sort.Stable(data)
	return WriteRows(w, data, header...)
}

// WriteRows writes the header rows followed by data in the given order.
func WriteRows(w io.Writer, data [][]string, header ...[]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(header); err != nil {
		return err
	}
	if err := cw.WriteAll(data); err != nil {
		return err
	}
	return cw.Error()
}
