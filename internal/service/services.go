package service

import (
	"fmt"

	"github.com/MKhiriev/go-multisig-keeper/internal/adapter"
	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/store"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/internal/validators"
)

type Services struct {
	VaultService       VaultService
	TransactionService TransactionService
	QueryService       QueryService
	IdentityService    IdentityService
	AppInfoService     AppInfoService
}

func NewServices(storage store.VaultStorage, ledger adapter.LedgerAdapter, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	addresses, err := validators.NewAddressValidator(cfg.App.AddressFormat, cfg.App.Bech32Prefix)
	if err != nil {
		return nil, fmt.Errorf("address validator: %w", err)
	}

	identityService, err := NewIdentityService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	vaults := newVaultService(newRegistry(), ledger, storage, addresses, logger)
	transactions := newTransactionService(vaults, ledger, storage, utils.NewUUIDGenerator(), logger)
	transactions.broadcastTimeout = cfg.Adapter.RequestTimeout

	return &Services{
		VaultService:       vaults,
		TransactionService: NewTransactionValidationService(addresses).Wrap(transactions),
		QueryService:       newQueryService(vaults),
		IdentityService:    identityService,
		AppInfoService:     appInfoService,
	}, nil
}
