package material

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReferenceSource provides tabulated elemental attenuation data.
type ReferenceSource interface {
	// Series returns parallel photon energy and mass attenuation arrays
	// for the element with the given atomic number.
	Series(atomicNumber int) (energy, muOverRho []float64, err error)
}

// Table is an in-memory ReferenceSource keyed by atomic number.
type Table map[int]Series

func (t Table) Series(atomicNumber int) ([]float64, []float64, error) {
	s, ok := t[atomicNumber]
	if !ok || s.Len() == 0 {
		return nil, nil, fmt.Errorf("no reference data for Z=%d: %w", atomicNumber, ErrDataNotFound)
	}
	if len(s.Energy) != len(s.MuOverRho) {
		return nil, nil, fmt.Errorf("reference data for Z=%d: %d energies for %d coefficients: %w",
			atomicNumber, len(s.Energy), len(s.MuOverRho), ErrMalformedData)
	}
	return s.Energy, s.MuOverRho, nil
}

type nistFile struct {
	PhotonEnergy [][]float64 `json:"photon energy"`
	MuOverRho    [][]float64 `json:"mu_over_rho"`
}

// LoadNISTTable reads a JSON table holding, per element in order of atomic
// number starting at hydrogen, the "photon energy" and "mu_over_rho" arrays.
func LoadNISTTable(path string) (Table, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reference table %s: %w", path, ErrDataNotFound)
		}
		return nil, fmt.Errorf("reference table: %w", err)
	}

	var file nistFile
	if err := json.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("reference table %s: %v: %w", path, err, ErrMalformedData)
	}
	if file.PhotonEnergy == nil || file.MuOverRho == nil {
		return nil, fmt.Errorf("reference table %s: missing \"photon energy\" or \"mu_over_rho\": %w", path, ErrMalformedData)
	}
	if len(file.PhotonEnergy) != len(file.MuOverRho) {
		return nil, fmt.Errorf("reference table %s: %d energy rows for %d coefficient rows: %w",
			path, len(file.PhotonEnergy), len(file.MuOverRho), ErrMalformedData)
	}

	table := make(Table, len(file.PhotonEnergy))
	for i := range file.PhotonEnergy {
		if len(file.PhotonEnergy[i]) == 0 {
			continue
		}
		table[i+1] = Series{Energy: file.PhotonEnergy[i], MuOverRho: file.MuOverRho[i]}
	}
	return table, nil
}
