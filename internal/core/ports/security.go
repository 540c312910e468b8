package ports

// SecurityPort seals and opens wire frames exchanged with renderer windows.
// Implementations must authenticate as well as encrypt: a frame opens only
// with the session key and the same associated data it was sealed with.
type SecurityPort interface {
	Seal(frame, associated []byte) (sealed []byte, err error)
	Open(sealed, associated []byte) (frame []byte, err error)
}
