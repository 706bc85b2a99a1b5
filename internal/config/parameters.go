package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"
	"github.com/wildstyl3r/effenergy/internal/constants"
	"github.com/wildstyl3r/effenergy/internal/utils"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	OutputDir string
	Materials map[string]MaterialParameters
	MaterialParameters

	InputUnits  []string
	OutputUnits []string

	meta toml.MetaData
}

// LoadConfig decodes configFileName (the .toml suffix is optional) and
// validates the unit lists.
func LoadConfig(configFileName string) (Config, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return config.init(meta)
}

// DecodeConfig is LoadConfig for configuration text.
func DecodeConfig(data string) (Config, error) {
	var config Config
	meta, err := toml.Decode(data, &config)
	if err != nil {
		return config, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return config.init(meta)
}

func (c Config) init(meta toml.MetaData) (Config, error) {
	c.meta = meta
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
	}

	var unitsConflict []string
	c.InputUnits, unitsConflict = checkUnits(c.InputUnits, defaultInputUnits)
	if len(unitsConflict) > 0 {
		return c, fmt.Errorf("%w: input unit conflict: %v", ErrInvalidConfig, unitsConflict)
	}
	c.OutputUnits, unitsConflict = checkUnits(c.OutputUnits, defaultOutputUnits)
	if len(unitsConflict) > 0 {
		return c, fmt.Errorf("%w: output unit conflict: %v", ErrInvalidConfig, unitsConflict)
	}

	if len(c.Materials) == 0 {
		return c, fmt.Errorf("%w: no materials provided", ErrInvalidConfig)
	}
	return c, nil
}

// MaterialNames lists the configured materials in natural order.
func (c *Config) MaterialNames() []string {
	names := make([]string, 0, len(c.Materials))
	for name := range c.Materials {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natsort.Compare(a, b):
			return -1
		default:
			return 1
		}
	})
	return names
}

type MaterialParameters struct {
	Composition    string // composition definition name, defaults to the material name
	CompositionDir string
	ReferenceTable string

	Thickness float64 // [cm]
	EnergyMin float64 // [MeV]
	EnergyMax float64 // [MeV]

	Resolution int
	Degree     int
	Knots      int
	Alpha      float64

	PixelDepth       float64
	AirIntensities   [][]float64 // rows of kVp followed by one or more background readings
	AirIntensityFile string      // two columns: kVp reading
	Measurements     [][]float64 // rows of kVp, mean, std

	DropSaturated bool
	MakeDir       bool

	_outputUnits []string
}

func (p *MaterialParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *MaterialParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

var defaultValues = map[string]any{ // in base units
	"CompositionDir": "materials",
	"EnergyMin":      constants.EnergyMin,
	"EnergyMax":      constants.EnergyMax,
	"Resolution":     constants.Resolution,
	"Degree":         constants.SplineDegree,
	"Knots":          constants.SplineKnots,
	"Alpha":          constants.RidgeAlpha,
	"PixelDepth":     constants.PixelDepth,
	"DropSaturated":  true,
	"MakeDir":        false,
}

var requiredFields = []string{"ReferenceTable", "Thickness", "Measurements"}

var fieldsXor = map[string][]string{
	"AirIntensities":   {"AirIntensityFile"},
	"AirIntensityFile": {"AirIntensities"},
}

var valueUnits = map[string][]UnitElement{
	"Thickness": {
		{Class: Length, Power: 1},
	},
	"EnergyMin": {
		{Class: Energy, Power: 1},
	},
	"EnergyMax": {
		{Class: Energy, Power: 1},
	},
}

func (c *Config) isDefined(path ...string) bool {
	return c.meta.IsDefined(path...)
}

func (p *MaterialParameters) toBase(parameterNames, units []string) {
	pReflect := reflect.ValueOf(p).Elem()
	for _, name := range parameterNames {
		if _, some := valueUnits[name]; !some {
			continue
		}
		field := pReflect.FieldByName(name)
		if field.CanFloat() {
			field.SetFloat(Base(field.Float(), valueUnits[name], units, true))
		}
	}
}

/*
field value priority:
1. material section
2. global
3. default
*/

// Unify returns the parameters of materialName with global values and
// defaults filled in and converted to base units.
func (c *Config) Unify(materialName string) (MaterialParameters, error) {
	local, some := c.Materials[materialName]
	if !some {
		return MaterialParameters{}, fmt.Errorf("%w: material %q not configured", ErrInvalidConfig, materialName)
	}
	path := []string{"Materials", materialName}

	localReflect := reflect.ValueOf(&local).Elem()
	globalReflect := reflect.ValueOf(&c.MaterialParameters).Elem()
	paramType := localReflect.Type()

	var localFields, globalFields []string
	for i := range paramType.NumField() {
		name := paramType.Field(i).Name
		if !paramType.Field(i).IsExported() {
			continue
		}
		switch {
		case c.isDefined(append(path, name)...):
			localFields = append(localFields, name)
		case c.isDefined(name) && !c.definedAlternative(path, name):
			localReflect.Field(i).Set(globalReflect.Field(i))
			globalFields = append(globalFields, name)
		}
	}

	for _, name := range localFields {
		for _, alternative := range fieldsXor[name] {
			if slices.Contains(localFields, alternative) {
				return MaterialParameters{}, fmt.Errorf("%w: material %q: %s conflicts with %s", ErrInvalidConfig, materialName, name, alternative)
			}
		}
	}
	for _, name := range globalFields {
		for _, alternative := range fieldsXor[name] {
			if slices.Contains(globalFields, alternative) {
				return MaterialParameters{}, fmt.Errorf("%w: %s conflicts with %s", ErrInvalidConfig, name, alternative)
			}
		}
	}

	discovered := append(localFields, globalFields...)
	local.toBase(discovered, c.InputUnits)

	for name, value := range defaultValues {
		if !slices.Contains(discovered, name) {
			localReflect.FieldByName(name).Set(reflect.ValueOf(value))
			discovered = append(discovered, name)
		}
	}

	var missing []string
	for _, name := range requiredFields {
		if !slices.Contains(discovered, name) {
			missing = append(missing, name)
		}
	}
	if !slices.Contains(discovered, "AirIntensities") && !slices.Contains(discovered, "AirIntensityFile") {
		missing = append(missing, "AirIntensities or AirIntensityFile")
	}
	if len(missing) > 0 {
		return MaterialParameters{}, fmt.Errorf("%w: material %q lacks %s", ErrInvalidConfig, materialName, strings.Join(missing, ", "))
	}

	if local.Composition == "" {
		local.Composition = materialName
	}
	if err := local.validate(); err != nil {
		return MaterialParameters{}, fmt.Errorf("%w: material %q: %w", ErrInvalidConfig, materialName, err)
	}

	local._outputUnits = c.OutputUnits
	return local, nil
}

// definedAlternative reports whether the material section sets a field that
// excludes the global value of name.
func (c *Config) definedAlternative(path []string, name string) bool {
	for _, alternative := range fieldsXor[name] {
		if c.isDefined(append(path, alternative)...) {
			return true
		}
	}
	return false
}

func (p *MaterialParameters) validate() error {
	if !(p.Thickness > 0) {
		return fmt.Errorf("thickness %v is not positive", p.Thickness)
	}
	if !(p.EnergyMin > 0) || !(p.EnergyMax > p.EnergyMin) {
		return fmt.Errorf("energy window [%v, %v] is empty or not positive", p.EnergyMin, p.EnergyMax)
	}
	if p.Resolution < 2 {
		return fmt.Errorf("resolution %d is below 2", p.Resolution)
	}
	if p.Degree < 1 || p.Knots < 2 {
		return fmt.Errorf("spline degree %d with %d knots is not supported", p.Degree, p.Knots)
	}
	if !(p.Alpha > 0) {
		return fmt.Errorf("ridge alpha %v is not positive", p.Alpha)
	}
	if !(p.PixelDepth > 0) {
		return fmt.Errorf("pixel depth %v is not positive", p.PixelDepth)
	}
	for i, row := range p.Measurements {
		if len(row) != 3 {
			return fmt.Errorf("measurement %d: expected [kVp, mean, std], got %v", i, row)
		}
	}
	for i, row := range p.AirIntensities {
		if len(row) < 2 {
			return fmt.Errorf("air intensity %d: expected [kVp, reading...], got %v", i, row)
		}
	}
	return nil
}

// AirRows returns the air intensity rows, reading AirIntensityFile when set.
func (p *MaterialParameters) AirRows() ([][]float64, error) {
	if p.AirIntensityFile != "" {
		return utils.ReadFloatPairs(p.AirIntensityFile)
	}
	return p.AirIntensities, nil
}
