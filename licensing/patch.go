package licensing

// OptionalInt is a tagged optional counter value used in a CounterPatch.
// The zero value means "leave the counter unchanged".
//
// It replaces the null-means-unchanged convention of loosely typed callers
// with an explicit type, so a patch that sets a counter to zero is
// distinguishable from one that does not touch it.
type OptionalInt struct {
	value int
	set   bool
}

// SetTo builds an OptionalInt carrying a new counter value.
func SetTo(value int) OptionalInt {
	return OptionalInt{value: value, set: true}
}

// Unchanged builds an OptionalInt that leaves the counter as it is.
func Unchanged() OptionalInt {
	return OptionalInt{}
}

// Get returns the carried value and whether one was set.
func (o OptionalInt) Get() (int, bool) {
	return o.value, o.set
}

// Value returns the carried value when set, otherwise the given fallback.
func (o OptionalInt) Value(fallback int) int {
	if o.set {
		return o.value
	}

	return fallback
}

// CounterPatch describes a partial update of the four LicensePool counters.
// Each field may independently be set or left unchanged; UpdateAvailability
// is the only consumer.
type CounterPatch struct {
	Owned     OptionalInt
	Available OptionalInt
	Reserved  OptionalInt
	HoldQueue OptionalInt
}

// FullPatch builds a CounterPatch that sets all four counters.
func FullPatch(owned int, available int, reserved int, holdQueue int) CounterPatch {
	return CounterPatch{
		Owned:     SetTo(owned),
		Available: SetTo(available),
		Reserved:  SetTo(reserved),
		HoldQueue: SetTo(holdQueue),
	}
}

// IsEmpty reports whether the patch touches no counter at all.
func (p CounterPatch) IsEmpty() bool {
	return !p.Owned.set && !p.Available.set && !p.Reserved.set && !p.HoldQueue.set
}
