package pixform

// DispatchOption configures a single dispatch.
// Use functional options to customize Dispatch and ProcessImage behavior.
//
// Example:
//
//	// Default: identity transform, registered dispatcher
//	out, err := pixform.Dispatch(input, w, h)
//
//	// Custom transform and dispatcher (dependency injection)
//	out, err := pixform.Dispatch(input, w, h,
//	    pixform.WithTransform(pixform.Invert()),
//	    pixform.WithDispatcher(myDispatcher))
type DispatchOption func(*dispatchOptions)

// dispatchOptions holds optional configuration for a dispatch.
type dispatchOptions struct {
	transform  *Transform
	dispatcher Dispatcher // nil means: registered device dispatcher, then CPU
	workers    int        // 0 means runtime.NumCPU()
}

// defaultDispatchOptions returns the default dispatch options.
func defaultDispatchOptions() dispatchOptions {
	return dispatchOptions{
		transform: Identity(),
	}
}

// WithTransform sets the per-pixel transform to apply.
// The default is Identity.
func WithTransform(t *Transform) DispatchOption {
	return func(o *dispatchOptions) {
		o.transform = t
	}
}

// WithDispatcher sets an explicit dispatcher for this dispatch, bypassing
// the registered device dispatcher and the CPU fallback chain. Use this
// for dependency injection in tests or to pin execution to one backend.
func WithDispatcher(d Dispatcher) DispatchOption {
	return func(o *dispatchOptions) {
		o.dispatcher = d
	}
}

// WithWorkers sets the CPU worker count used when the dispatch runs on the
// CPU tile dispatcher. Values < 1 select runtime.NumCPU().
func WithWorkers(n int) DispatchOption {
	return func(o *dispatchOptions) {
		o.workers = n
	}
}
