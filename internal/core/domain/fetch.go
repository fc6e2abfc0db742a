package domain

// FetchStatus describes how a collaborator call ended.
type FetchStatus string

const (
	FetchOK           FetchStatus = "ok"
	FetchEmpty        FetchStatus = "empty"
	FetchFailed       FetchStatus = "failed"
	FetchUnconfigured FetchStatus = "unconfigured"
)

// Fetch is the explicit result of a call to an external collaborator.
// Only FetchOK carries items; every other status means "no data".
type Fetch[T any] struct {
	Items  []T
	Status FetchStatus
	Err    error
}

// Fetched wraps items, reporting FetchEmpty when there are none.
func Fetched[T any](items []T) Fetch[T] {
	if len(items) == 0 {
		return Fetch[T]{Status: FetchEmpty}
	}
	return Fetch[T]{Items: items, Status: FetchOK}
}

// FetchFailure records a failed call.
func FetchFailure[T any](err error) Fetch[T] {
	return Fetch[T]{Status: FetchFailed, Err: err}
}

// NotConfigured records a call skipped because the collaborator is not set up.
func NotConfigured[T any]() Fetch[T] {
	return Fetch[T]{Status: FetchUnconfigured}
}

// OK reports whether the fetch returned items.
func (f Fetch[T]) OK() bool {
	return f.Status == FetchOK
}
