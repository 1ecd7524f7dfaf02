// Package jsre implements a bidirectional bridge between Go host values and
// a JavaScript runtime, letting host code evaluate script, pass values back
// and forth through live proxies, and drive JS code from Go callbacks and
// vice versa.
package jsre

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dop251/goja"
	_ "go.uber.org/automaxprocs" // tunes GOMAXPROCS to the container's CPU quota on import

	"github.com/hostvm/jsbridge/log"
)

// Runtime is the host side of one JS context: the engine instance, its
// event loop, its lifecycle coordinator, and the configuration that was
// used to build it (§4.H "owns the JS context, the global object, the
// realm, the job queue").
type Runtime struct {
	vm     *goja.Runtime
	loop   *EventLoop
	life   *lifecycle
	cfg    Config
	logger log.Logger

	inFlightMu sync.Mutex
	inFlight   int64
	zero       chan struct{}
}

// New creates a Runtime using cfg, installing the internal bindings, the
// event loop, and the default uncaught-rejection logger.
func New(cfg Config) *Runtime {
	vm := goja.New()
	r := &Runtime{
		vm:     vm,
		life:   newLifecycle(),
		cfg:    cfg,
		logger: log.Root().New("pkg", "jsre"),
		zero:   closedChan(),
	}
	if cfg.LogFile != "" {
		w := log.NewRotatingFileWriter(cfg.LogFile, cfg.LogFileMaxSizeMB, 3, 28)
		r.logger = log.NewLogger(log.NewTerminalHandler(w, false)).New("pkg", "jsre")
	}

	r.loop = NewEventLoop(vm, nil)
	vm.SetPromiseRejectionTracker(func(p *goja.Promise, operation goja.PromiseRejectionOperation) {
		if operation != goja.PromiseRejectionReject {
			return
		}
		r.loop.publishUnhandledRejection(p, p.Result())
	})
	installInternalBinding(vm, r.loop)
	r.installGlobals()
	r.watchRejections()

	r.life.addShutdownStep(func() { r.loop.Stop() })
	return r
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// installGlobals installs the null sentinel as the JS global __jsre_null__.
// No SpiderMonkeyError constructor or proxy type is installed as a global.
func (r *Runtime) installGlobals() {
	r.vm.Set("__jsre_null__", Null)
}

func (r *Runtime) watchRejections() {
	ch := make(chan UnhandledRejection, 16)
	sub := r.loop.Rejections(ch)
	go func() {
		defer sub.Unsubscribe()
		for rej := range ch {
			if r.cfg.FatalUnhandledRejections {
				r.logger.Crit("unhandled promise rejection", "reason", rej.Reason)
				continue
			}
			r.logger.Warn("unhandled promise rejection", "reason", spew.Sdump(rej.Reason))
		}
	}()
}

// Eval compiles and runs source under opts, converting the result (or any
// error) through the value classifier and exception bridge.
func (r *Runtime) Eval(source string, opts EvalOptions) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = wrapJSException(toError(rec))
		}
	}()

	r.beginJob()
	defer r.endJob()

	name := opts.Filename
	if name == "" {
		name = r.cfg.Eval.Filename
	}
	prog, compileErr := goja.Compile(name, source, opts.Strict || r.cfg.Eval.Strict)
	if compileErr != nil {
		return nil, wrapJSException(compileErr)
	}

	val, runErr := r.vm.RunProgram(prog)
	if runErr != nil {
		return nil, wrapJSException(runErr)
	}
	if opts.NoScriptRval {
		return nil, nil
	}
	return jsToHost(r.vm, val)
}

func toError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("jsre: panic: %v", rec)
}

// Collect triggers a JS GC cycle. goja's collector isn't exposed directly,
// so this runs the host collector instead, which is sufficient to drive
// finalizers registered through lifecycle's finalizationRegistry.
func (r *Runtime) Collect() {
	runtime.GC()
}

// IsCompilableUnit reports whether source parses as a complete compilable
// unit, for interactive REPL-style line buffering: a caller accumulates
// lines until this returns true.
func (r *Runtime) IsCompilableUnit(source string) bool {
	_, err := goja.Compile("<repl>", source, false)
	if err == nil {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"Unexpected end of input", "Unexpected EOF", "unexpected end"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

// Wait blocks until the bridge's job counter reaches zero, i.e. no Eval
// call is in flight. Off-thread dispatches, pending timers and queued
// promise jobs are not counted.
func (r *Runtime) Wait() {
	r.inFlightMu.Lock()
	ch := r.zero
	r.inFlightMu.Unlock()
	<-ch
}

func (r *Runtime) beginJob() {
	r.inFlightMu.Lock()
	defer r.inFlightMu.Unlock()
	if r.inFlight == 0 {
		r.zero = make(chan struct{})
	}
	r.inFlight++
}

func (r *Runtime) endJob() {
	r.inFlightMu.Lock()
	defer r.inFlightMu.Unlock()
	r.inFlight--
	if r.inFlight == 0 {
		close(r.zero)
	}
}

// Set installs a host value as a global, converting it through the
// classifier the same way a function argument would be.
func (r *Runtime) Set(name string, value any) error {
	v, err := hostToJS(r.vm, value)
	if err != nil {
		return err
	}
	return r.vm.Set(name, v)
}

// Get reads a global, converting it back through the classifier.
func (r *Runtime) Get(name string) (any, error) {
	return jsToHost(r.vm, r.vm.Get(name))
}

// Run starts the runtime's event loop in the foreground; it returns once
// Stop is called.
func (r *Runtime) Run() {
	r.loop.Run()
}

// RunOnLoop schedules fn to run on the runtime's event-loop goroutine.
func (r *Runtime) RunOnLoop(fn func(*goja.Runtime)) bool {
	return r.loop.Dispatch(fn)
}

// Stop runs the lifecycle shutdown (draining the finalization registry,
// then stopping the event loop), first waiting up to cfg.ShutdownGrace for
// in-flight evaluations to settle.
func (r *Runtime) Stop() {
	waited := make(chan struct{})
	go func() {
		r.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(r.cfg.ShutdownGrace):
	}
	r.life.Shutdown()
}

// IsFinalizing reports whether Stop has begun, per §4.H's note that
// external-string-style finalizers must no-op once the process is already
// tearing the runtime down.
func (r *Runtime) IsFinalizing() bool {
	return r.life.IsFinalizing()
}

// VM exposes the underlying goja.Runtime for callers that need to build
// values with goja APIs directly (e.g. constructing a typed array) before
// handing them to Set.
func (r *Runtime) VM() *goja.Runtime { return r.vm }
