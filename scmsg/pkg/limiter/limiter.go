package limiter

// Limiter bounds the number of concurrently held slots.
type Limiter interface {
	// Allow takes a slot, false when none is free.
	Allow() bool
	// Revert gives back a slot taken by Allow.
	Revert()
	// InUse reports the number of slots currently taken.
	InUse() int
}
