// Package tier classifies a core's stored energy into a resource tier and
// decides which upgrade modules may count as active at each tier.
package tier

import (
	"fmt"
	"strings"

	"mechcore/internal/energy"
	"mechcore/internal/upgrade"
)

// Tier is an ordered resource state. Larger values are worse.
type Tier uint8

const (
	Normal Tier = iota
	PowerSaving
	Emergency
	Critical
)

// All lists the tiers from best to worst.
var All = []Tier{Normal, PowerSaving, Emergency, Critical}

func (t Tier) String() string {
	switch t {
	case Normal:
		return "NORMAL"
	case PowerSaving:
		return "POWER_SAVING"
	case Emergency:
		return "EMERGENCY"
	case Critical:
		return "CRITICAL"
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// Parse maps a tier name (any case, '-' or ' ' for '_') to a Tier.
func Parse(s string) (Tier, error) {
	c := upgrade.Canon(s)
	for _, t := range All {
		if t.String() == c {
			return t, nil
		}
	}
	return Normal, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Thresholds are the minimum stored fractions for each tier above Critical.
type Thresholds struct {
	Normal      float64 `yaml:"normal" env:"NORMAL"`
	PowerSaving float64 `yaml:"power_saving" env:"POWER_SAVING"`
	Emergency   float64 `yaml:"emergency" env:"EMERGENCY"`
}

// DefaultThresholds are 30%, 15% and 5%.
var DefaultThresholds = Thresholds{Normal: 0.30, PowerSaving: 0.15, Emergency: 0.05}

// Classifier maps a container's stored fraction to a Tier.
type Classifier struct {
	Thresholds Thresholds
}

// Classify returns the tier for c. A nil or zero-capacity container is
// Critical.
func (cl Classifier) Classify(c energy.Container) Tier {
	if c == nil || c.Capacity() <= 0 {
		return Critical
	}
	return cl.ClassifyFraction(energy.Fraction(c))
}

// ClassifyFraction returns the tier for a stored fraction in [0, 1].
func (cl Classifier) ClassifyFraction(f float64) Tier {
	th := cl.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds
	}
	switch {
	case f >= th.Normal:
		return Normal
	case f >= th.PowerSaving:
		return PowerSaving
	case f >= th.Emergency:
		return Emergency
	}
	return Critical
}
