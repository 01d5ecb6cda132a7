package http

import (
	"net/http"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/go-chi/chi/v5"
)

// fetchVault re-reads the vault from the ledger, merges it into the registry
// and returns the merged vault with its full history.
func (h *Handler) fetchVault(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, addressParam)

	vault, err := h.services.VaultService.Fetch(r.Context(), address)
	if err != nil {
		writeError(w, r, err, "fetching vault failed")
		return
	}

	writeJSON(w, r, vault, http.StatusOK)
}

// listTransactions returns transaction views filtered by the "status" query
// parameter: "all" (default), "pending" (failed included) or "executed".
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, addressParam)

	filter, err := parseFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err, "invalid list filter")
		return
	}

	if _, err = h.services.VaultService.Load(ctx, address); err != nil {
		writeError(w, r, err, "loading vault failed")
		return
	}

	views := h.services.QueryService.ListTransactions(ctx, address, filter)
	writeJSON(w, r, models.TransactionList{Transactions: views, Length: len(views)}, http.StatusOK)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, addressParam)
	id := chi.URLParam(r, idParam)

	if _, err := h.services.VaultService.Load(ctx, address); err != nil {
		writeError(w, r, err, "loading vault failed")
		return
	}

	view, ok := h.services.QueryService.GetTransactionView(ctx, address, id)
	if !ok {
		logger.FromRequest(r).Debug().Str("vault", address).Str("tx_id", id).Msg("transaction not found")
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, view, http.StatusOK)
}

// isAuthorized tells the caller whether its identity belongs to the vault's
// signer set. Anonymous callers are never authorized.
func (h *Handler) isAuthorized(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, addressParam)

	if _, err := h.services.VaultService.Load(ctx, address); err != nil {
		writeError(w, r, err, "loading vault failed")
		return
	}

	identity, _ := utils.IdentityFromContext(ctx)
	writeJSON(w, r, models.AuthorizationResponse{
		Address:    identity.Address,
		Authorized: h.services.QueryService.IsAuthorizedSigner(ctx, address),
	}, http.StatusOK)
}

func parseFilter(status string) (models.TransactionFilter, error) {
	switch filter := models.TransactionFilter(status); filter {
	case "":
		return models.FilterAll, nil
	case models.FilterAll, models.FilterPending, models.FilterExecuted:
		return filter, nil
	default:
		return "", ErrInvalidStatusFilter
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	if _, err := utils.WriteJSON(w, data, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing response failed")
	}
}
