package grpc

import (
	"context"

	"github.com/MKhiriev/go-multisig-keeper/models"
	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified name of the vault service.
const ServiceName = "multisig.v1.VaultService"

// Full method names of the vault service.
const (
	FetchVaultMethod         = "/" + ServiceName + "/FetchVault"
	ProposeTransactionMethod = "/" + ServiceName + "/ProposeTransaction"
	SignTransactionMethod    = "/" + ServiceName + "/SignTransaction"
	ExecuteTransactionMethod = "/" + ServiceName + "/ExecuteTransaction"
	FailTransactionMethod    = "/" + ServiceName + "/FailTransaction"
	GetTransactionMethod     = "/" + ServiceName + "/GetTransaction"
	ListTransactionsMethod   = "/" + ServiceName + "/ListTransactions"
)

// VaultServiceServer is the server API of the vault service.
type VaultServiceServer interface {
	FetchVault(ctx context.Context, request *FetchVaultRequest) (*models.Vault, error)
	ProposeTransaction(ctx context.Context, request *ProposeTransactionRequest) (*models.TransactionView, error)
	SignTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error)
	ExecuteTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error)
	FailTransaction(ctx context.Context, request *FailTransactionRequest) (*models.TransactionView, error)
	GetTransaction(ctx context.Context, request *TransactionRequest) (*models.TransactionView, error)
	ListTransactions(ctx context.Context, request *ListTransactionsRequest) (*models.TransactionList, error)
}

// VaultServiceDesc describes the vault service for grpc.Server.RegisterService.
var VaultServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchVault", Handler: unaryHandler(FetchVaultMethod, VaultServiceServer.FetchVault)},
		{MethodName: "ProposeTransaction", Handler: unaryHandler(ProposeTransactionMethod, VaultServiceServer.ProposeTransaction)},
		{MethodName: "SignTransaction", Handler: unaryHandler(SignTransactionMethod, VaultServiceServer.SignTransaction)},
		{MethodName: "ExecuteTransaction", Handler: unaryHandler(ExecuteTransactionMethod, VaultServiceServer.ExecuteTransaction)},
		{MethodName: "FailTransaction", Handler: unaryHandler(FailTransactionMethod, VaultServiceServer.FailTransaction)},
		{MethodName: "GetTransaction", Handler: unaryHandler(GetTransactionMethod, VaultServiceServer.GetTransaction)},
		{MethodName: "ListTransactions", Handler: unaryHandler(ListTransactionsMethod, VaultServiceServer.ListTransactions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "multisig/v1/vault.proto",
}

// RegisterVaultServiceServer registers srv on s.
func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultServiceDesc, srv)
}

// unaryHandler adapts a typed method expression to grpc.MethodHandler: it
// decodes the request, then runs the method through the interceptor chain.
func unaryHandler[Req, Resp any](fullMethod string, method func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(VaultServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(VaultServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VaultServiceClient is the client API of the vault service. Every call uses
// the JSON codec.
type VaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) *VaultServiceClient {
	return &VaultServiceClient{cc: cc}
}

func (c *VaultServiceClient) FetchVault(ctx context.Context, in *FetchVaultRequest, opts ...grpc.CallOption) (*models.Vault, error) {
	return invoke[models.Vault](ctx, c.cc, FetchVaultMethod, in, opts)
}

func (c *VaultServiceClient) ProposeTransaction(ctx context.Context, in *ProposeTransactionRequest, opts ...grpc.CallOption) (*models.TransactionView, error) {
	return invoke[models.TransactionView](ctx, c.cc, ProposeTransactionMethod, in, opts)
}

func (c *VaultServiceClient) SignTransaction(ctx context.Context, in *TransactionRequest, opts ...grpc.CallOption) (*models.TransactionView, error) {
	return invoke[models.TransactionView](ctx, c.cc, SignTransactionMethod, in, opts)
}

func (c *VaultServiceClient) ExecuteTransaction(ctx context.Context, in *TransactionRequest, opts ...grpc.CallOption) (*models.TransactionView, error) {
	return invoke[models.TransactionView](ctx, c.cc, ExecuteTransactionMethod, in, opts)
}

func (c *VaultServiceClient) FailTransaction(ctx context.Context, in *FailTransactionRequest, opts ...grpc.CallOption) (*models.TransactionView, error) {
	return invoke[models.TransactionView](ctx, c.cc, FailTransactionMethod, in, opts)
}

func (c *VaultServiceClient) GetTransaction(ctx context.Context, in *TransactionRequest, opts ...grpc.CallOption) (*models.TransactionView, error) {
	return invoke[models.TransactionView](ctx, c.cc, GetTransactionMethod, in, opts)
}

func (c *VaultServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*models.TransactionList, error) {
	return invoke[models.TransactionList](ctx, c.cc, ListTransactionsMethod, in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
