package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyAddress             = errors.New("address is required")
	ErrMalformedAddress         = errors.New("malformed address")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInvalidKind              = errors.New("invalid transaction kind")
	ErrMissingTokenContract     = errors.New("token transfer requires a token contract")
	ErrUnexpectedTokenContract  = errors.New("native transfer must not reference a token contract")
	ErrEmptyTransactionID       = errors.New("transaction id is required")
	ErrEmptySigners             = errors.New("vault has no signers")
	ErrInvalidThreshold         = errors.New("threshold must be within 1..number of signers")
	ErrUnsupportedAddressFormat = errors.New("unsupported address format")
)
