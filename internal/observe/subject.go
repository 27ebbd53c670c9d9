// Package observe provides a synchronous publish/subscribe primitive used by
// stateful components to announce changes.
package observe

// Subject fans a published value out to every subscriber in subscription
// order. Delivery is synchronous on the publisher's goroutine; a Subject
// is not safe for concurrent use.
type Subject[T any] struct {
	nextID    int
	observers []observer[T]
}

type observer[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Subject[T]) Subscribe(fn func(T)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer[T]{id: id, fn: fn})
	return func() { s.remove(id) }
}

// Publish delivers v to the current subscribers.
func (s *Subject[T]) Publish(v T) {
	observers := append([]observer[T](nil), s.observers...)
	for _, o := range observers {
		o.fn(v)
	}
}

// Len reports the number of subscribers.
func (s *Subject[T]) Len() int {
	return len(s.observers)
}

func (s *Subject[T]) remove(id int) {
	for i, o := range s.observers {
		if o.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}
