package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/go-chi/chi/v5"
)

// proposeBody is the JSON body of a proposal. The vault comes from the URL.
type proposeBody struct {
	Kind          models.TransactionKind `json:"kind"`
	Amount        uint64                 `json:"amount"`
	Recipient     string                 `json:"recipient"`
	TokenContract string                 `json:"token_contract,omitempty"`
}

type failBody struct {
	Reason string `json:"reason"`
}

func (h *Handler) proposeTransaction(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, addressParam)

	var body proposeBody
	if err := decodeBody(r, &body, false); err != nil {
		writeError(w, r, err, "invalid proposal body")
		return
	}

	tx, err := h.services.TransactionService.Propose(r.Context(), models.ProposeRequest{
		VaultAddress:  address,
		Kind:          body.Kind,
		Amount:        body.Amount,
		Recipient:     body.Recipient,
		TokenContract: body.TokenContract,
	})
	if err != nil {
		writeError(w, r, err, "proposing transaction failed")
		return
	}

	h.writeTransaction(w, r, address, tx, http.StatusCreated)
}

// signTransaction approves the transaction on behalf of the caller's
// current address.
func (h *Handler) signTransaction(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, addressParam)
	identity, _ := utils.IdentityFromContext(r.Context())

	tx, err := h.services.TransactionService.Sign(r.Context(), models.SignRequest{
		VaultAddress:  address,
		TransactionID: chi.URLParam(r, idParam),
		Signer:        identity.Address,
	})
	if err != nil {
		writeError(w, r, err, "signing transaction failed")
		return
	}

	h.writeTransaction(w, r, address, tx, http.StatusOK)
}

func (h *Handler) executeTransaction(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, addressParam)

	tx, err := h.services.TransactionService.Execute(r.Context(), models.ExecuteRequest{
		VaultAddress:  address,
		TransactionID: chi.URLParam(r, idParam),
	})
	if err != nil {
		writeError(w, r, err, "executing transaction failed")
		return
	}

	h.writeTransaction(w, r, address, tx, http.StatusOK)
}

// failTransaction marks the transaction failed. The body is optional.
func (h *Handler) failTransaction(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, addressParam)

	var body failBody
	if err := decodeBody(r, &body, true); err != nil {
		writeError(w, r, err, "invalid failure body")
		return
	}

	tx, err := h.services.TransactionService.MarkFailed(r.Context(), models.FailRequest{
		VaultAddress:  address,
		TransactionID: chi.URLParam(r, idParam),
		Reason:        body.Reason,
	})
	if err != nil {
		writeError(w, r, err, "marking transaction failed")
		return
	}

	h.writeTransaction(w, r, address, tx, http.StatusOK)
}

// writeTransaction answers with the live view of tx, falling back to the
// bare transaction when the registry no longer reports it.
func (h *Handler) writeTransaction(w http.ResponseWriter, r *http.Request, address string, tx models.Transaction, status int) {
	view, ok := h.services.QueryService.GetTransactionView(r.Context(), address, tx.ID)
	if !ok {
		logger.FromRequest(r).Warn().Str("tx_id", tx.ID).Msg("transaction missing from registry after mutation")
		view = models.TransactionView{Transaction: tx}
	}
	writeJSON(w, r, view, status)
}

func decodeBody(r *http.Request, v any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return ErrInvalidJSON
	}

	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
}
