package grpc

import (
	"context"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/service"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Handler is the root gRPC transport handler.
//
// It implements [VaultServiceServer] on top of the service layer. A handler
// instance is created once at startup and shared by the gRPC server.
type Handler struct {
	// services provides access to all application business operations.
	services *service.Services

	// logger is used for request-scoped and diagnostic log output.
	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger, and returns the initialized instance.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// Register installs the vault service on s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	RegisterVaultServiceServer(s, h)
}

// ServerOptions returns the interceptor chain the vault service expects:
// tracing and access logging, then identity resolution.
func (h *Handler) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(h.withTraceID, h.withLogging, h.withIdentity),
	}
}

func (h *Handler) FetchVault(ctx context.Context, request *FetchVaultRequest) (*models.Vault, error) {
	vault, err := h.services.VaultService.Fetch(ctx, request.Address)
	if err != nil {
		return nil, toStatus(ctx, err, "fetching vault failed")
	}
	return &vault, nil
}

func (h *Handler) ProposeTransaction(ctx context.Context, request *ProposeTransactionRequest) (*models.TransactionView, error) {
	tx, err := h.services.TransactionService.Propose(ctx, models.ProposeRequest{
		VaultAddress:  request.VaultAddress,
		Kind:          request.Kind,
		Amount:        request.Amount,
		Recipient:     request.Recipient,
		TokenContract: request.TokenContract,
	})
	if err != nil {
		return nil, toStatus(ctx, err, "proposing transaction failed")
	}
	return h.view(ctx, request.VaultAddress, tx), nil
}

// SignTransaction approves the transaction on behalf of the caller's current
// address.
func (h *Handler) SignTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error) {
	identity, _ := utils.IdentityFromContext(ctx)

	tx, err := h.services.TransactionService.Sign(ctx, models.SignRequest{
		VaultAddress:  request.VaultAddress,
		TransactionID: request.TransactionID,
		Signer:        identity.Address,
	})
	if err != nil {
		return nil, toStatus(ctx, err, "signing transaction failed")
	}
	return h.view(ctx, request.VaultAddress, tx), nil
}

func (h *Handler) ExecuteTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error) {
	tx, err := h.services.TransactionService.Execute(ctx, models.ExecuteRequest{
		VaultAddress:  request.VaultAddress,
		TransactionID: request.TransactionID,
	})
	if err != nil {
		return nil, toStatus(ctx, err, "executing transaction failed")
	}
	return h.view(ctx, request.VaultAddress, tx), nil
}

func (h *Handler) FailTransaction(ctx context.Context, request *FailTransactionRequest) (*models.TransactionView, error) {
	tx, err := h.services.TransactionService.MarkFailed(ctx, models.FailRequest{
		VaultAddress:  request.VaultAddress,
		TransactionID: request.TransactionID,
		Reason:        request.Reason,
	})
	if err != nil {
		return nil, toStatus(ctx, err, "marking transaction failed")
	}
	return h.view(ctx, request.VaultAddress, tx), nil
}

func (h *Handler) GetTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error) {
	if _, err := h.services.VaultService.Load(ctx, request.VaultAddress); err != nil {
		return nil, toStatus(ctx, err, "loading vault failed")
	}

	view, ok := h.services.QueryService.GetTransactionView(ctx, request.VaultAddress, request.TransactionID)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "transaction %q not found", request.TransactionID)
	}
	return &view, nil
}

func (h *Handler) ListTransactions(ctx context.Context, request *ListTransactionsRequest) (*models.TransactionList, error) {
	filter := request.Status
	switch filter {
	case "":
		filter = models.FilterAll
	case models.FilterAll, models.FilterPending, models.FilterExecuted:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid status filter %q", filter)
	}

	if _, err := h.services.VaultService.Load(ctx, request.VaultAddress); err != nil {
		return nil, toStatus(ctx, err, "loading vault failed")
	}

	views := h.services.QueryService.ListTransactions(ctx, request.VaultAddress, filter)
	return &models.TransactionList{Transactions: views, Length: len(views)}, nil
}

// view returns the live view of tx, or the bare transaction when the
// registry no longer reports it.
func (h *Handler) view(ctx context.Context, vaultAddress string, tx models.Transaction) *models.TransactionView {
	view, ok := h.services.QueryService.GetTransactionView(ctx, vaultAddress, tx.ID)
	if !ok {
		view = models.TransactionView{Transaction: tx}
	}
	return &view
}
