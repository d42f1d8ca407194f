package system

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDuplicateSystem   = errors.New("duplicate system name")
	ErrUnknownDependency = errors.New("unknown system dependency")
	ErrDependencyCycle   = errors.New("system dependency cycle")
)

// Runner executes systems once per tick. Build orders them into batches:
// a system runs after every earlier-registered system of the same phase it
// conflicts with and after every system it names in After. Systems in the
// same batch have no conflicts and run in parallel on up to workers
// goroutines.
type Runner struct {
	systems []System
	batches [][]System
	workers int
	built   bool
	log     *zap.Logger
}

func NewRunner(workers int, log *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		systems: make([]System, 0, 16),
		workers: workers,
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.built = false
}

// Build computes the batch schedule. It is called implicitly by the first
// Tick but should be called at setup so errors surface early.
func (r *Runner) Build() error {
	sort.SliceStable(r.systems, func(i, j int) bool {
		return r.systems[i].Phase() < r.systems[j].Phase()
	})

	index := make(map[string]int, len(r.systems))
	for i, s := range r.systems {
		if _, dup := index[s.Name()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
		}
		index[s.Name()] = i
	}

	explicit := make([]map[int]bool, len(r.systems))
	for i, s := range r.systems {
		explicit[i] = make(map[int]bool)
		d, ok := s.(Dependent)
		if !ok {
			continue
		}
		for _, name := range d.After() {
			j, ok := index[name]
			if !ok {
				return fmt.Errorf("%w: %s after %s", ErrUnknownDependency, s.Name(), name)
			}
			if r.systems[j].Phase() == s.Phase() {
				explicit[i][j] = true
			}
		}
	}

	deps := make([][]int, len(r.systems))
	for i, s := range r.systems {
		for j := range explicit[i] {
			deps[i] = append(deps[i], j)
		}
		for j := 0; j < i; j++ {
			o := r.systems[j]
			if o.Phase() != s.Phase() || explicit[j][i] || explicit[i][j] {
				continue
			}
			if s.Access().Conflicts(o.Access()) {
				deps[i] = append(deps[i], j)
			}
		}
	}

	levels, err := computeLevels(r.systems, deps)
	if err != nil {
		return err
	}

	type slot struct {
		phase Phase
		level int
	}
	groups := make(map[slot][]System)
	var keys []slot
	for i, s := range r.systems {
		k := slot{s.Phase(), levels[i]}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], s)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].phase != keys[b].phase {
			return keys[a].phase < keys[b].phase
		}
		return keys[a].level < keys[b].level
	})

	r.batches = r.batches[:0]
	for _, k := range keys {
		r.batches = append(r.batches, groups[k])
	}
	r.built = true
	return nil
}

func computeLevels(systems []System, deps [][]int) ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(systems))
	levels := make([]int, len(systems))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: at %s", ErrDependencyCycle, systems[i].Name())
		}
		state[i] = visiting
		for _, j := range deps[i] {
			if err := visit(j); err != nil {
				return err
			}
			if levels[j]+1 > levels[i] {
				levels[i] = levels[j] + 1
			}
		}
		state[i] = done
		return nil
	}

	for i := range systems {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// Batches returns the system names per batch in execution order.
func (r *Runner) Batches() [][]string {
	out := make([][]string, len(r.batches))
	for i, b := range r.batches {
		for _, s := range b {
			out[i] = append(out[i], s.Name())
		}
	}
	return out
}

// Tick runs every batch in order. A panicking system is logged and the
// tick carries on with the remaining systems.
func (r *Runner) Tick(dt time.Duration) {
	if !r.built {
		if err := r.Build(); err != nil {
			r.log.Error("system schedule invalid", zap.Error(err))
			return
		}
	}
	for _, batch := range r.batches {
		if len(batch) == 1 || r.workers == 1 {
			for _, s := range batch {
				r.run(s, dt)
			}
			continue
		}
		var g errgroup.Group
		g.SetLimit(r.workers)
		for _, s := range batch {
			g.Go(func() error {
				r.run(s, dt)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (r *Runner) run(s System, dt time.Duration) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("system panicked",
				zap.String("system", s.Name()),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()
	s.Update(dt)
}
