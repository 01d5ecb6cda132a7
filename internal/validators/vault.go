package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldVaultAddress targets the vault address of a request or snapshot.
	FieldVaultAddress = "vault_address"

	// FieldKind targets the transfer type of a propose request.
	FieldKind = "kind"

	// FieldAmount targets the transferred amount of a propose request.
	FieldAmount = "amount"

	// FieldRecipient targets the destination address of a propose request.
	FieldRecipient = "recipient"

	// FieldTokenContract targets the token contract reference of a propose
	// request. It is checked together with the kind.
	FieldTokenContract = "token_contract"

	// FieldTransactionID targets the transaction id of sign, execute and
	// fail requests.
	FieldTransactionID = "transaction_id"

	// FieldSigner targets the approving address of a sign request.
	FieldSigner = "signer"

	// FieldSigners targets the authorized signer set of a vault snapshot.
	FieldSigners = "signers"

	// FieldThreshold targets the approval threshold of a vault snapshot.
	FieldThreshold = "threshold"
)

// VaultValidator implements the Validator interface for vault snapshots and
// every transaction request model: ProposeRequest, SignRequest,
// ExecuteRequest and FailRequest.
//
// Address-typed fields are checked with the configured [AddressValidator].
type VaultValidator struct {
	addresses *AddressValidator
}

// NewVaultValidator constructs a VaultValidator that checks addresses with
// addresses and returns it as the Validator interface.
func NewVaultValidator(addresses *AddressValidator) Validator {
	return &VaultValidator{addresses: addresses}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// Returns ErrUnsupportedType if obj does not match any known model.
// Optional fields restrict validation to the named subset; when omitted,
// every field of the model is validated.
func (v *VaultValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.ProposeRequest:
		return v.validateProposeRequest(value, fields...)
	case *models.ProposeRequest:
		return v.validateProposeRequest(*value, fields...)
	case models.SignRequest:
		return v.validateSignRequest(value, fields...)
	case *models.SignRequest:
		return v.validateSignRequest(*value, fields...)
	case models.ExecuteRequest:
		return v.validateTransactionRef(value.VaultAddress, value.TransactionID, fields...)
	case *models.ExecuteRequest:
		return v.validateTransactionRef(value.VaultAddress, value.TransactionID, fields...)
	case models.FailRequest:
		return v.validateTransactionRef(value.VaultAddress, value.TransactionID, fields...)
	case *models.FailRequest:
		return v.validateTransactionRef(value.VaultAddress, value.TransactionID, fields...)
	case models.Vault:
		return v.validateVault(value, fields...)
	case *models.Vault:
		return v.validateVault(*value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *VaultValidator) validateProposeRequest(request models.ProposeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVaultAddress, FieldKind, FieldAmount, FieldRecipient, FieldTokenContract}
	}

	for _, f := range fields {
		switch f {
		case FieldVaultAddress:
			if err := v.addresses.ValidateAddress(request.VaultAddress); err != nil {
				return fmt.Errorf("vault address: %w", err)
			}
		case FieldKind:
			if !request.Kind.IsValid() {
				return fmt.Errorf("%w: %q", ErrInvalidKind, request.Kind)
			}
		case FieldAmount:
			if request.Amount == 0 {
				return ErrInvalidAmount
			}
		case FieldRecipient:
			if err := v.addresses.ValidateAddress(request.Recipient); err != nil {
				return fmt.Errorf("recipient: %w", err)
			}
		case FieldTokenContract:
			switch {
			case request.Kind == models.TokenTransfer && request.TokenContract == "":
				return ErrMissingTokenContract
			case request.Kind == models.TokenTransfer:
				if err := v.addresses.ValidateAddress(request.TokenContract); err != nil {
					return fmt.Errorf("token contract: %w", err)
				}
			case request.TokenContract != "":
				return ErrUnexpectedTokenContract
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *VaultValidator) validateSignRequest(request models.SignRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVaultAddress, FieldTransactionID, FieldSigner}
	}

	for _, f := range fields {
		switch f {
		case FieldSigner:
			if request.Signer == "" {
				return fmt.Errorf("signer: %w", ErrEmptyAddress)
			}
		default:
			if err := v.validateTransactionRef(request.VaultAddress, request.TransactionID, f); err != nil {
				return err
			}
		}
	}

	return nil
}

func (v *VaultValidator) validateTransactionRef(vaultAddress, transactionID string, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVaultAddress, FieldTransactionID}
	}

	for _, f := range fields {
		switch f {
		case FieldVaultAddress:
			if err := v.addresses.ValidateAddress(vaultAddress); err != nil {
				return fmt.Errorf("vault address: %w", err)
			}
		case FieldTransactionID:
			if transactionID == "" {
				return ErrEmptyTransactionID
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateVault checks a ledger snapshot. Signer addresses are only checked
// for presence: the ledger is authoritative for their encoding.
func (v *VaultValidator) validateVault(vault models.Vault, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVaultAddress, FieldSigners, FieldThreshold}
	}

	for _, f := range fields {
		switch f {
		case FieldVaultAddress:
			if err := v.addresses.ValidateAddress(vault.Address); err != nil {
				return fmt.Errorf("vault address: %w", err)
			}
		case FieldSigners:
			if len(vault.Signers) == 0 {
				return ErrEmptySigners
			}
			for i, s := range vault.Signers {
				if s == "" {
					return fmt.Errorf("signer at index %d: %w", i, ErrEmptyAddress)
				}
			}
		case FieldThreshold:
			if vault.Threshold < 1 || vault.Threshold > len(vault.Signers) {
				return fmt.Errorf("%w: threshold %d, signers %d", ErrInvalidThreshold, vault.Threshold, len(vault.Signers))
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
