package model

import (
	"fmt"
	"strconv"

	"github.com/wildstyl3r/effenergy/internal/config"
	"github.com/wildstyl3r/effenergy/internal/material"
	"github.com/wildstyl3r/effenergy/internal/utils"
)

// DataExtractor collects the outcome of one material analysis for output.
type DataExtractor struct {
	Name       string
	Parameters config.MaterialParameters
	Series     material.Series
	Sweep      Sweep
	Points     []Point
}

func NewDataExtractor(name string, parameters config.MaterialParameters, series material.Series, sweep Sweep, points []Point) *DataExtractor {
	return &DataExtractor{
		Name:       name,
		Parameters: parameters,
		Series:     series,
		Sweep:      sweep,
		Points:     points,
	}
}

// Table formats the rows of item in output units.
func (de *DataExtractor) Table(item SequentialDataItem) [][]string {
	outputUnits := de.Parameters.OutputUnits()
	var rows [][]string
	for _, values := range item.values(de) {
		row := make([]string, len(values))
		for i, v := range values {
			if i < len(item.units) && item.units[i] != nil {
				v = config.Base(v, item.units[i], outputUnits, false)
			}
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

// Save writes every enabled table to the output path and returns the names
// of the saved tables.
func (de *DataExtractor) Save(df DataFlags) (saved []string, err error) {
	for _, name := range df.Enabled() {
		item := df.sequentials[name]
		file, err := utils.OpenFile(de.Parameters.MakeDir, df.outputPath, item.fileSuffix, de.Name)
		if err != nil {
			return saved, fmt.Errorf("unable to save %s: %w", name, err)
		}
		header := item.header(de.Parameters.OutputUnits())
		rows := de.Table(item)
		if item.natural {
			err = utils.WriteCSV(file, rows, header)
		} else {
			err = utils.WriteRows(file, rows, header)
		}
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return saved, fmt.Errorf("error writing %s: %w", name, err)
		}
		saved = append(saved, name)
	}
	return saved, nil
}
