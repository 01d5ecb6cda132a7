package adapter

import "errors"

var (
	ErrVaultNotFound       = errors.New("vault not found on ledger")
	ErrBadRequest          = errors.New("ledger rejected request")
	ErrUnauthorized        = errors.New("ledger unauthorized")
	ErrForbidden           = errors.New("ledger forbidden")
	ErrConflict            = errors.New("ledger conflict")
	ErrBadGateway          = errors.New("ledger bad gateway")
	ErrInternalServerError = errors.New("ledger internal error")
	ErrEmptyReference      = errors.New("ledger returned empty reference")
)
