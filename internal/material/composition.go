package material

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type CompositionSource interface {
	Composition(name string) (Material, error)
}

// DirSource reads composition definitions from <Dir>/<name>.comp (JSON) or,
// when that file is absent, <Dir>/<name>.toml.
type DirSource struct {
	Dir string
}

type compositionFile struct {
	Composition *struct {
		Density  *float64    `json:"density" toml:"density"`
		Elements [][]float64 `json:"elements" toml:"elements"`
	} `json:"composition" toml:"composition"`
}

func (d DirSource) Composition(name string) (Material, error) {
	path := filepath.Join(d.Dir, name+".comp")
	contents, err := os.ReadFile(path)
	decode := json.Unmarshal
	if errors.Is(err, fs.ErrNotExist) {
		tomlPath := filepath.Join(d.Dir, name+".toml")
		if tomlContents, tomlErr := os.ReadFile(tomlPath); tomlErr == nil {
			path, contents, err = tomlPath, tomlContents, nil
			decode = toml.Unmarshal
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Material{}, fmt.Errorf("composition %q: %s: %w", name, path, ErrDataNotFound)
		}
		return Material{}, fmt.Errorf("composition %q: %w", name, err)
	}
	if len(bytes.TrimSpace(contents)) == 0 {
		return Material{}, fmt.Errorf("composition %q: %s is empty: %w", name, path, ErrDataNotFound)
	}

	var file compositionFile
	if err := decode(contents, &file); err != nil {
		return Material{}, fmt.Errorf("composition %q: %s: %v: %w", name, path, err, ErrMalformedData)
	}
	m, err := file.material(name)
	if err != nil {
		return Material{}, fmt.Errorf("composition %q: %s: %w", name, path, err)
	}
	return m, nil
}

func (f compositionFile) material(name string) (Material, error) {
	if f.Composition == nil {
		return Material{}, fmt.Errorf("missing composition section: %w", ErrMalformedData)
	}
	if f.Composition.Density == nil {
		return Material{}, fmt.Errorf("missing density: %w", ErrMalformedData)
	}
	if f.Composition.Elements == nil {
		return Material{}, fmt.Errorf("missing elements: %w", ErrMalformedData)
	}
	if len(f.Composition.Elements) == 0 {
		return Material{}, fmt.Errorf("no elements listed: %w", ErrDataNotFound)
	}

	m := Material{
		Name:        name,
		Density:     *f.Composition.Density,
		Composition: make([]ElementalContribution, 0, len(f.Composition.Elements)),
	}
	if !(m.Density > 0) {
		return Material{}, fmt.Errorf("density %v is not positive: %w", m.Density, ErrMalformedData)
	}
	for i, element := range f.Composition.Elements {
		if len(element) != 2 {
			return Material{}, fmt.Errorf("element %d: expected [atomic number, weight fraction], got %v: %w", i, element, ErrMalformedData)
		}
		z := element[0]
		if z < 1 || z != math.Trunc(z) {
			return Material{}, fmt.Errorf("element %d: invalid atomic number %v: %w", i, z, ErrMalformedData)
		}
		m.Composition = append(m.Composition, ElementalContribution{
			AtomicNumber:   int(z),
			WeightFraction: element[1],
		})
	}
	return m, nil
}
