package ports

import "io"

// Stream consumes the bytes of one inbound connection. Writes arrive in read
// order; Close is called once when the connection ends.
type Stream interface {
	io.WriteCloser
}

// StreamHandler opens a Stream for a new inbound connection. The source names
// the peer, e.g. a remote address or a serial device path.
type StreamHandler interface {
	Open(source string) Stream
}
