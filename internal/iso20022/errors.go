package iso20022

import "fmt"

// MalformedAmountError indicates the raw transaction amount was absent or of
// a shape the mapper does not recognize.
type MalformedAmountError struct {
	Reason string
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount: %s", e.Reason)
}

// MemoDecodeError indicates a memo payload could not be hex- or UTF-8-decoded.
type MemoDecodeError struct {
	TxHash string
	Reason string
}

func (e *MemoDecodeError) Error() string {
	return fmt.Sprintf("memo decode failed for transaction %s: %s", e.TxHash, e.Reason)
}

// UnsupportedMessageTypeError indicates a message-type selector outside the
// two supported schemas.
type UnsupportedMessageTypeError struct {
	MessageType MessageType
}

func (e *UnsupportedMessageTypeError) Error() string {
	return fmt.Sprintf("unsupported message type %q", string(e.MessageType))
}
