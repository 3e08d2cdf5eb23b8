package monitor

import (
	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
)

// Band is the severity classification of a battery reading. It is derived
// from a reading and the configured thresholds, never stored.
type Band int

const (
	BandAbsent Band = iota
	BandCharging
	BandCritical
	BandWarning
	BandNormal
)

func (b Band) String() string {
	switch b {
	case BandAbsent:
		return "absent"
	case BandCharging:
		return "charging"
	case BandCritical:
		return "critical"
	case BandWarning:
		return "warning"
	case BandNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Classify maps a reading to its severity band. Charging overrides any
// percentage-derived band; an absent battery overrides everything.
func Classify(r battery.Reading, conf config.Config) Band {
	switch {
	case !r.Present:
		return BandAbsent
	case r.Charging:
		return BandCharging
	case r.Percentage <= conf.CriticalLevel():
		return BandCritical
	case r.Percentage <= conf.WarningLevel():
		return BandWarning
	default:
		return BandNormal
	}
}
