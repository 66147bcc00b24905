package trip

// Override is a tri-state request field: absent (derive it), explicit null
// (clear it), or an explicit value (keep it as given).
type Override[T any] struct {
	Present bool
	Value   *T
}

func Absent[T any]() Override[T] { return Override[T]{} }

func Null[T any]() Override[T] { return Override[T]{Present: true} }

func Set[T any](v T) Override[T] { return Override[T]{Present: true, Value: &v} }

// IsNull reports an explicit null.
func (o Override[T]) IsNull() bool { return o.Present && o.Value == nil }
