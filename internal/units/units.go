// Package units converts measurements between the Imperial units used
// by CBECC input files and the SI units used by EMJSON.
//
// Every conversion is a fixed multiplicative factor over a closed set
// of unit kinds. Temperature differences are multiplicative too (°F
// delta to K delta); absolute temperatures never appear in the model.
package units

import (
	"errors"
	"fmt"
)

// Kind identifies one supported measurement kind.
type Kind int

const (
	KindUnknown  Kind = iota
	KindArea          // ft² ↔ m²
	KindVolume        // ft³ ↔ m³
	KindLength        // ft ↔ m
	KindUFactor       // Btu/h·ft²·°F ↔ W/m²·K
	KindRValue        // h·ft²·°F/Btu ↔ m²·K/W
	KindPower         // kW ↔ W
	KindTempDiff      // °F delta ↔ K delta
)

// ErrUnsupportedKind is returned when a conversion is requested for a
// kind outside the fixed enumeration. Values are never passed through
// unconverted.
var ErrUnsupportedKind = errors.New("unsupported unit kind")

// ipToSI holds the factor applied when going Imperial → SI.
var ipToSI = map[Kind]float64{
	KindArea:     0.09290304,
	KindVolume:   0.028316846592,
	KindLength:   0.3048,
	KindUFactor:  5.678263,
	KindRValue:   0.1761101838,
	KindPower:    1000.0,
	KindTempDiff: 5.0 / 9.0,
}

func (k Kind) String() string {
	switch k {
	case KindArea:
		return "area"
	case KindVolume:
		return "volume"
	case KindLength:
		return "length"
	case KindUFactor:
		return "u-factor"
	case KindRValue:
		return "r-value"
	case KindPower:
		return "power"
	case KindTempDiff:
		return "temp-diff"
	}
	return "unknown"
}

// IPToSI converts an Imperial-unit value to SI.
func IPToSI(v float64, k Kind) (float64, error) {
	f, ok := ipToSI[k]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedKind, int(k))
	}
	return v * f, nil
}

// SIToIP converts an SI value back to Imperial units. For every kind k
// SIToIP(IPToSI(x, k), k) == x within floating-point tolerance.
func SIToIP(v float64, k Kind) (float64, error) {
	f, ok := ipToSI[k]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedKind, int(k))
	}
	return v / f, nil
}

// MustIPToSI is IPToSI for call sites whose kind is a package constant.
func MustIPToSI(v float64, k Kind) float64 {
	out, err := IPToSI(v, k)
	if err != nil {
		panic(err)
	}
	return out
}

// MustSIToIP is SIToIP for call sites whose kind is a package constant.
func MustSIToIP(v float64, k Kind) float64 {
	out, err := SIToIP(v, k)
	if err != nil {
		panic(err)
	}
	return out
}
