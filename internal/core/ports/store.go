package ports

// Store holds one immutable snapshot and notifies subscribers on every commit.
type Store[T any] interface {
	State() T
	SetState(updater func(current T) (T, error)) error
	Subscribe(callback func(state T)) Unsubscribe
}
