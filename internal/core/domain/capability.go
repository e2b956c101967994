package domain

// CapabilityState is the detected state of an optional capability.
type CapabilityState uint8

const (
	// CapabilityUnavailable means the fallback tier must be used.
	CapabilityUnavailable CapabilityState = iota
	// CapabilityAvailable means the enhanced tier may be attempted.
	CapabilityAvailable
)

// Capability is the outcome of a startup capability check. It is decided
// once and passed to the components that have a two-tier strategy.
type Capability struct {
	Name   string
	State  CapabilityState
	Reason string
}

// Available returns an available capability.
func Available(name string) Capability {
	return Capability{Name: name, State: CapabilityAvailable}
}

// Unavailable returns an unavailable capability with a reason.
func Unavailable(name, reason string) Capability {
	return Capability{Name: name, State: CapabilityUnavailable, Reason: reason}
}

// IsAvailable returns true if the enhanced tier may be used.
func (c Capability) IsAvailable() bool {
	return c.State == CapabilityAvailable
}

// String returns a human-readable representation.
func (c Capability) String() string {
	if c.IsAvailable() {
		return c.Name + ": available"
	}
	if c.Reason == "" {
		return c.Name + ": unavailable"
	}
	return c.Name + ": unavailable (" + c.Reason + ")"
}
