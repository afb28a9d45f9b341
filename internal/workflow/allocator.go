package workflow

// DefaultPoolCapacity is the most channels a Discord category can hold.
const DefaultPoolCapacity = 50

// CapacityPool is a snapshot of one archive destination.
type CapacityPool struct {
	ID        string
	Name      string
	Occupancy int
	// Capacity falls back to DefaultPoolCapacity when zero.
	Capacity int
}

func (p CapacityPool) Max() int {
	if p.Capacity <= 0 {
		return DefaultPoolCapacity
	}
	return p.Capacity
}

func (p CapacityPool) HasRoom() bool {
	return p.Occupancy < p.Max()
}

// Allocate returns the first pool, in the given order, with room left.
// The bool is false when every pool is full. Pools are never modified.
func Allocate(pools []CapacityPool) (CapacityPool, bool) {
	for _, pool := range pools {
		if pool.HasRoom() {
			return pool, true
		}
	}
	return CapacityPool{}, false
}
