package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/validators"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

// TransactionValidationService checks request shapes before delegating to
// the wrapped TransactionService. The wrapped service still enforces its
// own invariants.
type TransactionValidationService struct {
	inner     TransactionService
	validator validators.Validator
}

// NewTransactionValidationService returns a wrapper validating addresses with
// addresses.
func NewTransactionValidationService(addresses *validators.AddressValidator) TransactionServiceWrapper {
	return &TransactionValidationService{
		validator: validators.NewVaultValidator(addresses),
	}
}

func (v *TransactionValidationService) Propose(ctx context.Context, request models.ProposeRequest) (models.Transaction, error) {
	if err := v.validate(ctx, request); err != nil {
		return models.Transaction{}, err
	}
	return v.inner.Propose(ctx, request)
}

func (v *TransactionValidationService) Sign(ctx context.Context, request models.SignRequest) (models.Transaction, error) {
	if err := v.validate(ctx, request, validators.FieldTransactionID); err != nil {
		return models.Transaction{}, err
	}
	if err := v.validator.Validate(ctx, request, validators.FieldSigner); err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %w", ErrUnknownSigner, err)
	}
	return v.inner.Sign(ctx, request)
}

func (v *TransactionValidationService) Execute(ctx context.Context, request models.ExecuteRequest) (models.Transaction, error) {
	if err := v.validate(ctx, request); err != nil {
		return models.Transaction{}, err
	}
	return v.inner.Execute(ctx, request)
}

func (v *TransactionValidationService) MarkFailed(ctx context.Context, request models.FailRequest) (models.Transaction, error) {
	if err := v.validate(ctx, request); err != nil {
		return models.Transaction{}, err
	}
	return v.inner.MarkFailed(ctx, request)
}

func (v *TransactionValidationService) Wrap(wrapped TransactionService) TransactionService {
	v.inner = wrapped
	return v
}

// validate maps validator errors onto the domain taxonomy: a malformed vault
// address is ErrInvalidAddress, a missing transaction id is
// ErrTransactionNotFound, everything else is ErrValidation. fields narrows
// the checks that follow the vault address.
func (v *TransactionValidationService) validate(ctx context.Context, request any, fields ...string) error {
	if err := v.validator.Validate(ctx, request, validators.FieldVaultAddress); err != nil {
		logger.FromContext(ctx).Err(err).Msg("request validation failed")
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	err := v.validator.Validate(ctx, request, fields...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validators.ErrEmptyTransactionID):
		return fmt.Errorf("%w: %w", ErrTransactionNotFound, err)
	default:
		logger.FromContext(ctx).Err(err).Msg("request validation failed")
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
}
