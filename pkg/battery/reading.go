package battery

// Reading is a point-in-time snapshot of the battery state. It is produced
// fresh on every poll and never mutated afterwards.
type Reading struct {
	// Present is false when no battery could be found or read. A failed
	// probe is reported as an absent battery, never as an error.
	Present bool `json:"present"`
	// Percentage is the current charge in [0, 100]. Only meaningful when
	// Present is true.
	Percentage int `json:"percentage"`
	// Charging is true when the battery reports it is being charged.
	Charging bool `json:"charging"`
	// Status is the raw status label from the power supply, e.g.
	// "Charging", "Discharging", "Full".
	Status string `json:"status"`
}

// Sampler produces battery readings. Implementations must not block beyond
// a bounded OS call and must not return errors to callers: any failure is
// reported as a Reading with Present=false.
type Sampler interface {
	Sample() Reading
}
