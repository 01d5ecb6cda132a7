package validators

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Supported address formats. They match the values accepted by the app
// configuration.
const (
	AddressFormatEVM    = "evm"
	AddressFormatBech32 = "bech32"
	AddressFormatOpaque = "opaque"
)

// AddressValidator checks the shape of account addresses. It never rewrites
// an address: two addresses are the same account only when they are equal
// strings.
type AddressValidator struct {
	format string
	hrp    string
}

// NewAddressValidator returns a validator for the given format. For bech32,
// a non-empty hrp restricts accepted addresses to that human-readable part.
func NewAddressValidator(format, hrp string) (*AddressValidator, error) {
	switch format {
	case AddressFormatEVM, AddressFormatBech32, AddressFormatOpaque:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAddressFormat, format)
	}
	return &AddressValidator{format: format, hrp: hrp}, nil
}

// ValidateAddress returns ErrEmptyAddress or ErrMalformedAddress when
// address does not fit the configured format.
func (v *AddressValidator) ValidateAddress(address string) error {
	if address == "" {
		return ErrEmptyAddress
	}

	switch v.format {
	case AddressFormatEVM:
		if !common.IsHexAddress(address) || (!strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X")) {
			return fmt.Errorf("%w: %q is not a hex address", ErrMalformedAddress, address)
		}
	case AddressFormatBech32:
		hrp, _, err := bech32.Decode(address)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedAddress, err)
		}
		if v.hrp != "" && hrp != v.hrp {
			return fmt.Errorf("%w: prefix %q, want %q", ErrMalformedAddress, hrp, v.hrp)
		}
	default:
		if strings.IndexFunc(address, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: %q contains whitespace", ErrMalformedAddress, address)
		}
	}

	return nil
}
