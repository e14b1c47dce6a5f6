package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for the pipeline package.
var (
	// ErrStageAlreadyRegistered is returned when registering a duplicate stage.
	ErrStageAlreadyRegistered = errors.New("stage already registered")

	// ErrStageNotFound is returned when a stage dependency is not found.
	ErrStageNotFound = errors.New("stage not found")

	// ErrDependencyCycle is returned when stage dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrMissingInput is returned when a selected stage runs without its
	// dependency and the dependency's outputs are not on disk.
	ErrMissingInput = errors.New("stage input missing")
)

// OutputChecker is implemented by stages whose outputs can be verified on
// disk without running them.
type OutputChecker interface {
	CheckOutputs(opts Options) error
}

// Registry manages available stages and their dependencies.
type Registry struct {
	mu     sync.RWMutex
	stages map[string]Stage
	order  []string // Maintains registration order
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{
		stages: make(map[string]Stage),
		order:  make([]string, 0),
	}
}

// Register adds a stage to the registry.
// Returns an error if a stage with the same name is already registered.
func (r *Registry) Register(s Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.stages[name]; exists {
		return fmt.Errorf("%w: %s", ErrStageAlreadyRegistered, name)
	}

	r.stages[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get returns a stage by name.
func (r *Registry) Get(name string) (Stage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stages[name]
	return s, ok
}

// Names returns all stage names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// GetOrdered returns stages sorted by dependencies.
// Stages with no dependencies come first, then stages whose
// dependencies are satisfied, etc. When multiple stages have
// the same dependency level, registration order is preserved.
func (r *Registry) GetOrdered() ([]Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Build in-degree count using r.order for deterministic iteration
	inDegree := make(map[string]int)
	for _, name := range r.order {
		inDegree[name] = 0
	}

	for _, name := range r.order {
		stage := r.stages[name]
		for _, dep := range stage.Dependencies() {
			if _, ok := r.stages[dep]; !ok {
				return nil, fmt.Errorf("%w: stage %q depends on %q", ErrStageNotFound, name, dep)
			}
			inDegree[name]++
		}
	}

	// Kahn's algorithm for topological sort
	// Use r.order to maintain stable ordering when adding to queue
	var queue []string
	for _, name := range r.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var ordered []Stage
	for len(queue) > 0 {
		// Pop from queue
		name := queue[0]
		queue = queue[1:]

		ordered = append(ordered, r.stages[name])

		// Decrease in-degree for dependents (iterate in registration order)
		for _, depName := range r.order {
			stage := r.stages[depName]
			for _, dep := range stage.Dependencies() {
				if dep == name {
					inDegree[depName]--
					if inDegree[depName] == 0 {
						queue = append(queue, depName)
					}
				}
			}
		}
	}

	// Check for cycles
	if len(ordered) != len(r.stages) {
		return nil, ErrDependencyCycle
	}

	return ordered, nil
}

// Validate checks that all stage dependencies exist in the registry.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for _, dep := range r.stages[name].Dependencies() {
			if _, ok := r.stages[dep]; !ok {
				return fmt.Errorf("%w: stage %q depends on %q", ErrStageNotFound, name, dep)
			}
		}
	}

	// Also check for cycles
	_, err := r.GetOrdered()
	return err
}

// DependenciesOf returns all stages that the given stage depends on.
func (r *Registry) DependenciesOf(name string) []Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stage, ok := r.stages[name]
	if !ok {
		return nil
	}

	var deps []Stage
	for _, depName := range stage.Dependencies() {
		if dep, ok := r.stages[depName]; ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Check validates the registry and the selection before any stage runs.
// For every selected stage whose dependency is not also selected, the
// dependency's outputs must already exist.
func (r *Registry) Check(opts Options, names ...string) error {
	if err := r.Validate(); err != nil {
		return err
	}

	selected := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.Get(name); !ok {
			return fmt.Errorf("%w: %s (registered: %v)", ErrStageNotFound, name, r.Names())
		}
		selected[name] = true
	}

	for _, name := range names {
		for _, dep := range r.DependenciesOf(name) {
			if selected[dep.Name()] {
				continue
			}
			checker, ok := dep.(OutputChecker)
			if !ok {
				continue
			}
			if err := checker.CheckOutputs(opts); err != nil {
				return fmt.Errorf("%w: %s needs %s output: %v", ErrMissingInput, name, dep.Name(), err)
			}
		}
	}
	return nil
}

// Run executes the named stages in dependency order, or every registered
// stage when names is empty. Dependencies are not added implicitly: running
// a stage alone requires its inputs to exist already, which Check verifies
// up front. The first failing stage stops the run.
func (r *Registry) Run(ctx context.Context, opts Options, names ...string) ([]*Result, error) {
	if err := r.Check(opts, names...); err != nil {
		return nil, err
	}
	ordered, err := r.GetOrdered()
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(names))
	for _, name := range names {
		selected[name] = true
	}

	var results []*Result
	for _, stage := range ordered {
		if len(selected) > 0 && !selected[stage.Name()] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := stage.Run(ctx, opts)
		if err != nil {
			return results, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		results = append(results, res)
	}
	return results, nil
}
