package config

import "github.com/wildstyl3r/effenergy/internal/utils"

// base units: cm for length, MeV for photon energy (the reference table unit)
var unitToBase = map[string]float64{
	"m":   1e2,  // [cm]
	"cm":  1,    // [cm]
	"mm":  1e-1, // [cm]
	"MeV": 1,    // [MeV]
	"keV": 1e-3, // [MeV]
	"eV":  1e-6, // [MeV]
}

type UnitClass int

const (
	Length UnitClass = iota
	Energy
)

var unitsInClass = map[UnitClass][]string{
	Length: {"mm", "cm", "m"},
	Energy: {"eV", "keV", "MeV"},
}

var classesOfUnits = map[string]UnitClass{
	"m":   Length,
	"cm":  Length,
	"mm":  Length,
	"MeV": Energy,
	"keV": Energy,
	"eV":  Energy,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

var defaultInputUnits = []string{"cm", "MeV"}
var defaultOutputUnits = []string{"cm", "keV"}

// checkUnits completes units with defaults for missing classes and reports
// unknown units and units of an already listed class.
func checkUnits(units, defaults []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaults {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// Base converts v expressed in units to base units when direct is true and
// back from base units otherwise.
func Base(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToBase[*unit]
			}
		} else {
			for range absPower {
				v /= unitToBase[*unit]
			}
		}
	}
	return v
}

// UnitOf returns the unit of class listed in units.
func UnitOf(class UnitClass, units []string) string {
	if unit := utils.Intersect(unitsInClass[class], units); unit != nil {
		return *unit
	}
	return ""
}
