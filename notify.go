package stowage

// Change describes one logical mutation observed by a registry.
type Change struct {
	// Node is the registered node whose value (or any value nested inside
	// it) changed. Mutations deep inside a composite report the registered
	// top-level node, not the inner wrapper.
	Node *Node

	// Revision is the registry revision assigned to this mutation.
	Revision uint64
}

// Observer is called synchronously, on the mutating caller's goroutine, for
// each logical mutation. Observers run before the save request reaches the
// attached store, so they can act as a before-persistence hook. An observer
// must not block and must not mutate registry values.
type Observer func(Change)

// Subscription is an active observer registration.
type Subscription struct {
	registry *Registry
	observer Observer
}

// Subscribe registers an observer for every change in this registry.
// Observers are notified in subscription order.
func (r *Registry) Subscribe(obs Observer) *Subscription {
	s := &Subscription{registry: r, observer: obs}
	r.subs = append(r.subs, s)
	return s
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.registry == nil {
		return
	}
	subs := s.registry.subs
	for i, sub := range subs {
		if sub == s {
			s.registry.subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.registry = nil
}
