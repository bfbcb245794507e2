package wire

import "errors"

// ErrInvalidChecksum is returned by (*Connection).ReadPacket when the
// transmitted checksum does not match the computed one. It is never fatal:
// the connection has already written the negative ack, and the caller's
// retry loop should simply read again — the peer will resend.
var ErrInvalidChecksum = errors.New("wire: invalid checksum")

// ErrTooManyRetries is returned by (*Connection).FinishPacket when the
// configured retry cap is exceeded while waiting for a positive ack. It is
// fatal for the call that produced it.
var ErrTooManyRetries = errors.New("wire: too many retries")

// InvalidPacketTypeError is returned by (*Connection).ReadPacket, instead
// of silently skipping the byte, when strict mode (SetStrict) is enabled
// and a byte arriving outside a packet is neither '$' nor '%'. The
// canonical behavior (strict mode off, the default) is to skip such bytes,
// as real RSP implementations tolerate stray noise on the wire before a
// packet start; strict mode is for callers that want that noise surfaced
// rather than silently dropped.
type InvalidPacketTypeError struct {
	Byte byte
}

func (e *InvalidPacketTypeError) Error() string {
	return "wire: invalid packet type byte " + string([]byte{e.Byte})
}

// IOError wraps a failure from the underlying ByteChannel, preserving the
// original error for errors.Is/errors.As.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return "wire: io error: " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

func ioError(err error) error {
	if err == nil {
		return nil
	}

	return &IOError{Err: err}
}
