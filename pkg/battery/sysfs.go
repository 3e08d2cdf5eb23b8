package battery

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// defaultSupplies are the power-supply device names probed, in priority
// order. The first device that reports present wins.
var defaultSupplies = []string{"BAT0", "BAT1", "BATT", "BATC"}

// SysfsSampler reads battery state from the kernel power-supply class
// (/sys/class/power_supply/<dev>/{present,capacity,status}).
type SysfsSampler struct {
	root     string
	supplies []string
}

// NewSysfsSampler returns a sampler over /sys/class/power_supply with the
// default device priority list.
func NewSysfsSampler() *SysfsSampler {
	return &SysfsSampler{
		root:     "/sys/class/power_supply",
		supplies: defaultSupplies,
	}
}

// NewSysfsSamplerAt returns a sampler rooted at an alternative power-supply
// directory. Used in tests.
func NewSysfsSamplerAt(root string, supplies ...string) *SysfsSampler {
	if len(supplies) == 0 {
		supplies = defaultSupplies
	}
	return &SysfsSampler{root: root, supplies: supplies}
}

// Sample probes the supply list and returns the first present battery.
// Any read failure yields an absent reading.
func (s *SysfsSampler) Sample() Reading {
	for _, dev := range s.supplies {
		devPath := filepath.Join(s.root, dev)

		present, err := readAttrInt(filepath.Join(devPath, "present"))
		if err != nil || present != 1 {
			continue
		}

		r := Reading{Present: true}

		if pct, err := readAttrInt(filepath.Join(devPath, "capacity")); err == nil {
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			r.Percentage = pct
		} else {
			logrus.WithField("device", dev).Debugf("failed to read capacity: %v", err)
		}

		if status, err := readAttrString(filepath.Join(devPath, "status")); err == nil {
			r.Status = status
			r.Charging = strings.EqualFold(status, "Charging")
		} else {
			logrus.WithField("device", dev).Debugf("failed to read status: %v", err)
		}

		return r
	}

	return Reading{}
}

func readAttrString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readAttrInt(path string) (int, error) {
	s, err := readAttrString(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}
