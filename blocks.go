// Package blocks provides reusable AWS CDK building blocks and the shared
// contract every block follows.
//
// Each resource kind lives in its own package and exposes one options struct
// and one factory:
//
//	queue := messaging.NewQueue(stack, "Orders", &messaging.QueueOptions{
//	    QueueName:  "orders",
//	    DeadLetter: blocks.Some(messaging.DeadLetterOptions{MaxReceiveCount: 5}),
//	})
//
// A factory registers its primary construct under the given scope and id and
// names any companion constructs with ChildID. Options are read once; nothing
// is left behind to mutate after the call returns.
package blocks

// Optional holds a value that may be absent. Conditional sub-resources
// (dead-letter queues, cross-account grants, origin access control) are
// configured through Optional fields so the factory decides on presence,
// not on zero values.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Bool is shorthand for Some(b), for flags whose default is true.
func Bool(b bool) Optional[bool] {
	return Some(b)
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the held value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// ChildID derives the construct id of a companion resource from the id of the
// block that owns it, e.g. ChildID("Api", "ALB") == "ApiALB".
func ChildID(id, suffix string) string {
	return id + suffix
}
