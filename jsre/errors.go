package jsre

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-stack/stack"

	"github.com/dop251/goja"
)

// SpiderMonkeyError is the host exception class raised for JS errors: eval
// failures, thrown values, and uncaught exceptions from a called function
// proxy all surface as one of these.
type SpiderMonkeyError struct {
	// Message is the JS error's formatted stack, or its string form when it
	// isn't an Error instance.
	Message string
	// JSError is the original JS error value, attached for lossless
	// round-tripping back into JS (the "jsError" attribute in the spec).
	JSError goja.Value
	cause   error
}

func (e *SpiderMonkeyError) Error() string { return e.Message }

func (e *SpiderMonkeyError) Unwrap() error { return e.cause }

// jsErrorAttr marks a host error as carrying an original JS error value, so
// hostErrorToJS can re-emit it unchanged instead of wrapping it again.
type jsErrorAttr interface {
	jsErrorValue() goja.Value
}

func (e *SpiderMonkeyError) jsErrorValue() goja.Value { return e.JSError }

// wrapJSException converts an error returned by a goja call (panic-recovered
// as a *goja.Exception, or a plain Go error from runtime setup) into a
// SpiderMonkeyError.
func wrapJSException(err error) error {
	if err == nil {
		return nil
	}
	if exc, ok := err.(*goja.Exception); ok {
		return &SpiderMonkeyError{
			Message: exc.String(),
			JSError: exc.Value(),
			cause:   err,
		}
	}
	if _, ok := err.(*SpiderMonkeyError); ok {
		return err
	}
	return &SpiderMonkeyError{Message: err.Error(), cause: err}
}

// jsErrorToHost implements the JS error -> host exception half of the
// bridge: the message is the engine-formatted stack, and the original value
// is attached for round-tripping.
func jsErrorToHost(rt *goja.Runtime, obj *goja.Object) *SpiderMonkeyError {
	stackVal := obj.Get("stack")
	msg := obj.String()
	if stackVal != nil && !goja.IsUndefined(stackVal) {
		msg = stackVal.String()
	}
	return &SpiderMonkeyError{Message: msg, JSError: obj}
}

// hostErrorToJS implements the host exception -> JS error half of the
// bridge. If err already carries a jsError attribute (it was itself
// produced by jsErrorToHost, i.e. round-tripping an error that originated
// in JS), the original value is re-emitted unchanged.
func hostErrorToJS(rt *goja.Runtime, err error) (goja.Value, error) {
	var withJS jsErrorAttr
	if errors.As(err, &withJS) {
		if v := withJS.jsErrorValue(); v != nil {
			return v, nil
		}
	}
	msg := fmt.Sprintf("%s: %s", errorTypeName(err), err.Error())
	if tb := formatHostTraceback(err); tb != "" {
		msg += "\n" + tb
	}
	errCtor, ok := goja.AssertFunction(rt.Get("Error"))
	if !ok {
		return rt.ToValue(msg), nil
	}
	jsErr, callErr := errCtor(goja.Undefined(), rt.ToValue(msg))
	if callErr != nil {
		return nil, callErr
	}
	return jsErr, nil
}

func errorTypeName(err error) string {
	t := fmt.Sprintf("%T", errors.Cause(err))
	if idx := strings.LastIndexByte(t, '.'); idx >= 0 {
		return t[idx+1:]
	}
	return t
}

// tracebackLimit bounds the number of host frames rendered into a
// host->JS error message, mirroring sys.tracebacklimit's default of 1000.
const tracebackLimit = 1000

// formatHostTraceback renders the call stack as it is when
// formatHostTraceback runs (not where err was created), collapsing runs of
// more than 3 identical frames: the first 3 are printed, then one line
// counting the rest, so a recursive failure does not flood the message.
func formatHostTraceback(err error) string {
	call := stack.Caller(3)
	trace := stack.Trace().TrimRuntime()
	if len(trace) == 0 {
		_ = call
		return ""
	}
	if len(trace) > tracebackLimit {
		trace = trace[:tracebackLimit]
	}
	var b strings.Builder
	var last string
	repeats := 0
	flush := func() {
		if repeats > 2 {
			fmt.Fprintf(&b, "  [... repeated %d more times]\n", repeats-2)
		}
	}
	for _, c := range trace {
		line := fmt.Sprintf("  at %n (%s:%d)", c, c, c)
		if line == last {
			repeats++
			if repeats < 3 {
				b.WriteString(line)
				b.WriteByte('\n')
			}
			continue
		}
		flush()
		b.WriteString(line)
		b.WriteByte('\n')
		last = line
		repeats = 0
	}
	flush()
	return strings.TrimRight(b.String(), "\n")
}
