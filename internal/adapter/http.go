package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-multisig-keeper/internal/config"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
)

type httpLedgerAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// broadcastResponse is the body returned by the gateway's broadcast route.
type broadcastResponse struct {
	Ref string `json:"ref"`
}

// NewHTTPLedgerAdapter constructs an HTTP implementation of [LedgerAdapter]
// talking to a ledger gateway at cfg.LedgerURL.
//
// Gateway routes:
//
//	GET  /vaults/{address}            -> models.Vault
//	POST /vaults/{address}/broadcast  -> {"ref": "..."}
//
// Returns an error if cfg.LedgerURL is empty or cannot be parsed as a valid
// URL.
func NewHTTPLedgerAdapter(cfg config.Adapter, log *logger.Logger) (LedgerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.LedgerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger url: %w", err)
	}

	return &httpLedgerAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout),
		logger: log.WithComponent("ledger-http"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchVault implements [LedgerAdapter]. It GETs /vaults/{address} and
// decodes the vault snapshot. A 404 response yields [ErrVaultNotFound].
func (h *httpLedgerAdapter) FetchVault(ctx context.Context, address string) (models.Vault, error) {
	var vault models.Vault

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("address", address).
		SetResult(&vault).
		Get("/vaults/{address}")
	if err != nil {
		h.logger.Err(err).Str("func", "httpLedgerAdapter.FetchVault").Str("vault", address).Msg("ledger request failed")
		return models.Vault{}, fmt.Errorf("fetch vault request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Vault{}, err
	}

	if vault.Address == "" {
		vault.Address = address
	}

	return vault, nil
}

// Broadcast implements [LedgerAdapter]. It POSTs tx as JSON to
// /vaults/{address}/broadcast and returns the reference from the response.
func (h *httpLedgerAdapter) Broadcast(ctx context.Context, vaultAddress string, tx models.Transaction) (string, error) {
	var result broadcastResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("address", vaultAddress).
		SetBody(tx).
		SetResult(&result).
		Post("/vaults/{address}/broadcast")
	if err != nil {
		h.logger.Err(err).Str("func", "httpLedgerAdapter.Broadcast").Str("tx_id", tx.ID).Msg("ledger request failed")
		return "", fmt.Errorf("broadcast request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	if result.Ref == "" {
		return "", ErrEmptyReference
	}

	return result.Ref, nil
}
