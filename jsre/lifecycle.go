package jsre

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// finalizationRegistry tracks host callables handed to JS so their
// reference can be released once the JS side has been garbage collected.
// Go's own GC plays the role the original's finalization-registry callback
// plays: runtime.SetFinalizer on the wrapper object drives release, rather
// than a manual GC-cycle hook.
type finalizationRegistry struct {
	mu      sync.Mutex
	entries map[uint64]func()
	nextID  uint64
}

func newFinalizationRegistry() *finalizationRegistry {
	return &finalizationRegistry{entries: make(map[uint64]func())}
}

// Register arranges for release to run when watched becomes unreachable.
// It returns an id that Unregister can use to cancel the entry early, e.g.
// when a shutdown sequence tears everything down explicitly instead of
// waiting on the GC.
func (r *finalizationRegistry) Register(watched any, release func()) uint64 {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.entries[id] = release
	r.mu.Unlock()

	runtime.SetFinalizer(watched, func(any) {
		r.fire(id)
	})
	return id
}

func (r *finalizationRegistry) Unregister(id uint64) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

func (r *finalizationRegistry) fire(id uint64) {
	r.mu.Lock()
	release, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok && release != nil {
		release()
	}
}

// drainAll runs and clears every still-registered release callback; used by
// the shutdown sequence's first step, since a finalizer that hasn't run yet
// by the time the runtime is torn down never will.
func (r *finalizationRegistry) drainAll() {
	r.mu.Lock()
	pending := r.entries
	r.entries = make(map[uint64]func())
	r.mu.Unlock()
	for _, release := range pending {
		if release != nil {
			release()
		}
	}
}

// lifecycle owns the shutdown sequence for one Runtime: the finalization
// registry, the event loop, and the flag that tells external-string-style
// finalizers to no-op once the process is already tearing the runtime down.
type lifecycle struct {
	finalizing atomic.Bool
	registry   *finalizationRegistry
	once       sync.Once
	steps      []func()
}

func newLifecycle() *lifecycle {
	return &lifecycle{registry: newFinalizationRegistry()}
}

// IsFinalizing reports whether Shutdown has begun, the condition under
// which finalizers attached to host-owned JS-facing values must no-op
// instead of touching host state that may already be gone.
func (l *lifecycle) IsFinalizing() bool {
	return l.finalizing.Load()
}

// addShutdownStep appends a step to the shutdown sequence; steps run in the
// order they were added.
func (l *lifecycle) addShutdownStep(step func()) {
	l.steps = append(l.steps, step)
}

// Shutdown runs exactly once: it marks the lifecycle as finalizing, drains
// the finalization registry's pending releases, then runs the steps added
// with addShutdownStep in order. It has no steps of its own for realms,
// the global object, the job queue or the engine.
func (l *lifecycle) Shutdown() {
	l.once.Do(func() {
		l.finalizing.Store(true)
		l.registry.drainAll()
		for _, step := range l.steps {
			if step != nil {
				step()
			}
		}
	})
}
