package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseUpdate  Phase = iota // 0: game logic, scheduled by declared access
	PhaseCleanup              // 1: barrier: apply deferred creations/deletions
)

// Resource names a component table or shared resource a system touches.
type Resource string

// Access declares which resources a system reads and writes. Two systems
// conflict when one writes a resource the other reads or writes.
type Access struct {
	Reads  []Resource
	Writes []Resource
}

// Conflicts reports whether a and b may not run at the same time.
func (a Access) Conflicts(b Access) bool {
	for _, w := range a.Writes {
		if contains(b.Reads, w) || contains(b.Writes, w) {
			return true
		}
	}
	for _, w := range b.Writes {
		if contains(a.Reads, w) {
			return true
		}
	}
	return false
}

func contains(rs []Resource, r Resource) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// System is the interface every ECS system implements.
type System interface {
	Name() string
	Phase() Phase
	Access() Access
	Update(dt time.Duration)
}

// Dependent is implemented by systems that must run after other named
// systems regardless of their declared access.
type Dependent interface {
	After() []string
}
