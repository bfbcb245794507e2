package client

import (
	"errors"
	"fmt"

	"github.com/riftlabs/gorsp/proto"
)

// ErrUnrecognized means the peer's reply did not match any grammar
// expected for the command just sent. Transport errors never map here;
// this is strictly a parse-layer failure.
var ErrUnrecognized = errors.New("client: reply did not match expected grammar")

// ErrUnsupported means the peer replied with the empty packet that RSP
// defines as "command not recognized" for the command just sent.
var ErrUnsupported = errors.New("client: command not supported by peer")

// ErrorPacket wraps an "Exx" reply from the peer.
type ErrorPacket struct {
	Code byte
}

func (e *ErrorPacket) Error() string {
	return fmt.Sprintf("client: peer returned error 0x%02x", e.Code)
}

func simpleReplyToError(r proto.SimpleReply) error {
	switch r.Kind {
	case proto.SimpleOK:
		return nil
	case proto.SimpleError:
		return &ErrorPacket{Code: r.Code}
	default:
		return ErrUnsupported
	}
}
