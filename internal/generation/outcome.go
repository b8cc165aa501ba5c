package generation

// reason names why a generation stage failed. It ends up in logs only.
type reason string

const (
	reasonNoProvider   reason = "no_provider"
	reasonTransport    reason = "transport"
	reasonBudget       reason = "budget_exhausted"
	reasonEmptyReply   reason = "empty_reply"
	reasonNoJSONObject reason = "no_json_object"
	reasonInvalidJSON  reason = "invalid_json"
	reasonShape        reason = "shape_mismatch"
)

// outcome carries either a value or the reason it could not be produced. Only
// the exported Generate* methods turn a failure into the default value.
type outcome[T any] struct {
	value  T
	reason reason
	err    error
}

func succeed[T any](v T) outcome[T] {
	return outcome[T]{value: v}
}

func fail[T any](r reason, err error) outcome[T] {
	return outcome[T]{reason: r, err: err}
}

// failed converts a failed outcome of one type into another.
func failed[T, U any](o outcome[U]) outcome[T] {
	return outcome[T]{reason: o.reason, err: o.err}
}

func (o outcome[T]) ok() bool {
	return o.reason == ""
}
