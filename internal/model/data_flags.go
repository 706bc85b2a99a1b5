package model

import (
	"flag"
	"fmt"

	"github.com/wildstyl3r/effenergy/internal/config"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) [][]float64
	units       [][]config.UnitElement // per column, nil for dimensionless
	natural     bool                   // sort rows naturally by the first column
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

var energyUnit = []config.UnitElement{{Class: config.Energy, Power: 1}}

func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all: fs.Bool("all", false, "save every available table"),
		sequentials: map[string]SequentialDataItem{
			"Effective energy": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("results", false, "save effective energy per kVp"),
					fileSuffix: "results",
				},
				columnNames: []string{"kVp (kV)", "I/I0", "I/I0 std", "mu/rho (cm^2/g)", "mu/rho std (cm^2/g)",
					"E_eff (%s)", "E_eff lower (%s)", "E_eff upper (%s)", "status (0 in range, 1 low, 2 high)"},
				values: func(de *DataExtractor) (rows [][]float64) {
					for _, p := range de.Points {
						rows = append(rows, []float64{
							p.KVp,
							p.Intensity.Value, p.Intensity.Sigma,
							p.MuOverRho.Value, p.MuOverRho.Sigma,
							p.Effective.Energy, p.Effective.Lower, p.Effective.Upper,
							float64(p.Effective.Status),
						})
					}
					return rows
				},
				units:   [][]config.UnitElement{nil, nil, nil, nil, nil, energyUnit, energyUnit, energyUnit, nil},
				natural: true,
			},
			"Fitted curve": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("curve", false, "save fitted curve over the inversion grid"),
					fileSuffix: "curve",
				},
				columnNames: []string{"E (%s)", "mu/rho (cm^2/g)"},
				values: func(de *DataExtractor) (rows [][]float64) {
					for i := range de.Sweep.Energy {
						rows = append(rows, []float64{de.Sweep.Energy[i], de.Sweep.MuOverRho[i]})
					}
					return rows
				},
				units: [][]config.UnitElement{energyUnit, nil},
			},
			"Reference series": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("series", false, "save combined reference attenuation series"),
					fileSuffix: "series",
				},
				columnNames: []string{"E (%s)", "mu/rho (cm^2/g)"},
				values: func(de *DataExtractor) (rows [][]float64) {
					for i := range de.Series.Energy {
						rows = append(rows, []float64{de.Series.Energy[i], de.Series.MuOverRho[i]})
					}
					return rows
				},
				units: [][]config.UnitElement{energyUnit, nil},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	df.outputPath = path
}

func (df DataFlags) OutputPath() string {
	return df.outputPath
}

// Enabled lists the names of the tables selected on the command line.
func (df DataFlags) Enabled() (names []string) {
	for name, item := range df.sequentials {
		if *item.saveFlag || *df.all {
			names = append(names, name)
		}
	}
	return
}

func (item SequentialDataItem) header(outputUnits []string) []string {
	energy := config.UnitOf(config.Energy, outputUnits)
	header := make([]string, len(item.columnNames))
	for i, name := range item.columnNames {
		if i < len(item.units) && item.units[i] != nil {
			name = fmt.Sprintf(name, energy)
		}
		header[i] = name
	}
	return header
}
