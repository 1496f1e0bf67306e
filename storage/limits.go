package storage

// Limits are the capacities fixed by the target VM version.
type Limits struct {
	// PoolCapacity is the number of physical variables per class.
	PoolCapacity int
	// MaxArrayLength bounds the extended collection.
	MaxArrayLength int
	// MaxNameLength truncates variable display names. Limits below
	// MinNameLength are raised to it so deduplicated names still fit.
	MaxNameLength int
}

// MinNameLength is the shortest name limit an allocator accepts.
const MinNameLength = 8

// DefaultLimits returns the limits of the current workshop.
func DefaultLimits() Limits {
	return Limits{
		PoolCapacity:   128,
		MaxArrayLength: 1000,
		MaxNameLength:  32,
	}
}

// withDefaults fills unset limits from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.PoolCapacity <= 0 {
		l.PoolCapacity = d.PoolCapacity
	}
	if l.MaxArrayLength <= 0 {
		l.MaxArrayLength = d.MaxArrayLength
	}
	switch {
	case l.MaxNameLength <= 0:
		l.MaxNameLength = d.MaxNameLength
	case l.MaxNameLength < MinNameLength:
		log.Warningf("raising name length limit %d to %d", l.MaxNameLength, MinNameLength)
		l.MaxNameLength = MinNameLength
	}
	return l
}
