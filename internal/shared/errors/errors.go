package errors

import "errors"

var (
	ErrConfiguration    = errors.New("invalid configuration")
	ErrMissingToken     = errors.New("DISCORD_TOKEN and TELEGRAM_TOKEN are required")
	ErrNoChannelPairs   = errors.New("CHANNEL_PAIRS must be a non-empty list")
	ErrDuplicatePairing = errors.New("duplicate DISCORD_CHANNEL_ID in CHANNEL_PAIRS")
	ErrPairingNotFound  = errors.New("channel pairing not found")
	ErrRecordNotFound   = errors.New("delivery record not found")
	ErrDestinationCall  = errors.New("destination call failed")
	ErrEmptyReceipt     = errors.New("destination returned no messages")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join returns an error that wraps the given errors, or nil if all are nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
