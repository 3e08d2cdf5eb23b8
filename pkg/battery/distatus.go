package battery

import (
	"math"

	distatus "github.com/distatus/battery"
	"github.com/sirupsen/logrus"
)

// LibrarySampler reads battery state through the distatus/battery library.
// It covers machines whose power supplies do not show up under the usual
// sysfs names.
type LibrarySampler struct{}

// NewLibrarySampler returns a library-backed sampler.
func NewLibrarySampler() *LibrarySampler {
	return &LibrarySampler{}
}

// Sample reads the first battery the library reports. Failures yield an
// absent reading.
func (s *LibrarySampler) Sample() Reading {
	batteries, err := distatus.GetAll()
	if err != nil {
		logrus.Debugf("library battery read failed: %v", err)
		return Reading{}
	}
	if len(batteries) == 0 {
		return Reading{}
	}

	bat := batteries[0]
	pct := 0
	if bat.Full > 0 {
		pct = int(math.Round(bat.Current / bat.Full * 100))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Reading{
		Present:    true,
		Percentage: pct,
		Charging:   bat.State == distatus.Charging,
		Status:     bat.State.String(),
	}
}

// ChainSampler tries each sampler in order and returns the first present
// reading. When no sampler finds a battery it returns the last (absent)
// reading.
type ChainSampler []Sampler

// NewDefaultSampler returns the production chain: sysfs first, the library
// as fallback.
func NewDefaultSampler() ChainSampler {
	return ChainSampler{NewSysfsSampler(), NewLibrarySampler()}
}

func (c ChainSampler) Sample() Reading {
	var r Reading
	for _, s := range c {
		r = s.Sample()
		if r.Present {
			return r
		}
	}
	return r
}
