package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-multisig-keeper/internal/adapter"
	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/MKhiriev/go-multisig-keeper/internal/mock"
	"github.com/MKhiriev/go-multisig-keeper/internal/store"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/internal/validators"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ─────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────

const testVault = "vault-1"

// abcVault is the reference vault: signers {A, B, C}, threshold 2.
func abcVault() models.Vault {
	return models.Vault{
		Address:   testVault,
		Signers:   []string{"A", "B", "C"},
		Threshold: 2,
		Balance:   5_000_000,
	}
}

type testEnv struct {
	ctrl    *gomock.Controller
	ledger  *mock.MockLedgerAdapter
	storage store.VaultStorage
	vaults  *vaultService
	txs     *transactionService
	queries *queryService
}

// newTestEnv wires the registry, the state machine and the query facade on
// top of a mocked ledger. A nil storage selects the memory backend.
func newTestEnv(t *testing.T, storage store.VaultStorage) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	ledger := mock.NewMockLedgerAdapter(ctrl)
	if storage == nil {
		storage = store.NewMemoryStorage()
	}

	addresses, err := validators.NewAddressValidator(validators.AddressFormatOpaque, "")
	require.NoError(t, err)

	vaults := newVaultService(newRegistry(), ledger, storage, addresses, logger.Nop())
	return &testEnv{
		ctrl:    ctrl,
		ledger:  ledger,
		storage: storage,
		vaults:  vaults,
		txs:     newTransactionService(vaults, ledger, storage, utils.NewUUIDGenerator(), logger.Nop()),
		queries: newQueryService(vaults),
	}
}

// fetch registers vault through the mocked ledger.
func (e *testEnv) fetch(t *testing.T, vault models.Vault) models.Vault {
	t.Helper()

	e.ledger.EXPECT().FetchVault(gomock.Any(), vault.Address).Return(vault, nil)
	got, err := e.vaults.Fetch(context.Background(), vault.Address)
	require.NoError(t, err)
	return got
}

// propose adds a native transfer of amount to B in the test vault.
func (e *testEnv) propose(t *testing.T, amount uint64) models.Transaction {
	t.Helper()

	tx, err := e.txs.Propose(context.Background(), models.ProposeRequest{
		VaultAddress: testVault,
		Kind:         models.NativeTransfer,
		Amount:       amount,
		Recipient:    "B",
	})
	require.NoError(t, err)
	return tx
}

func (e *testEnv) sign(t *testing.T, id, signer string) models.Transaction {
	t.Helper()

	tx, err := e.txs.Sign(context.Background(), models.SignRequest{VaultAddress: testVault, TransactionID: id, Signer: signer})
	require.NoError(t, err)
	return tx
}

// ─────────────────────────────────────────────
// Fetch
// ─────────────────────────────────────────────

func TestFetch_InvalidAddress(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, address := range []string{"", "has space"} {
		_, err := env.vaults.Fetch(context.Background(), address)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidAddress)
	}
	assert.Empty(t, env.vaults.Addresses())
}

func TestFetch_LedgerErrors(t *testing.T) {
	tests := []struct {
		name      string
		ledgerErr error
		wantErr   error
	}{
		{name: "not found", ledgerErr: adapter.ErrVaultNotFound, wantErr: ErrNotFound},
		{name: "gateway down", ledgerErr: adapter.ErrBadGateway, wantErr: ErrLedgerUnavailable},
		{name: "deadline", ledgerErr: context.DeadlineExceeded, wantErr: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(models.Vault{}, tt.ledgerErr)

			_, err := env.vaults.Fetch(context.Background(), testVault)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, env.vaults.Addresses(), "failed fetch must not register the vault")
		})
	}
}

func TestFetch_InvalidSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		mutateFn func(v *models.Vault)
	}{
		{name: "zero threshold", mutateFn: func(v *models.Vault) { v.Threshold = 0 }},
		{name: "threshold above signers", mutateFn: func(v *models.Vault) { v.Threshold = 4 }},
		{name: "no signers", mutateFn: func(v *models.Vault) { v.Signers = nil; v.Threshold = 1 }},
		// после схлопывания дубликатов остаётся два подписанта
		{name: "threshold above unique signers", mutateFn: func(v *models.Vault) { v.Signers = []string{"A", "A", "B"}; v.Threshold = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			vault := abcVault()
			tt.mutateFn(&vault)
			env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(vault, nil)

			_, err := env.vaults.Fetch(context.Background(), testVault)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidVaultSnapshot)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, env.vaults.Addresses())
		})
	}
}

func TestFetch_CollapsesDuplicateSigners(t *testing.T) {
	env := newTestEnv(t, nil)
	vault := abcVault()
	vault.Signers = []string{"A", "B", "A", "C", "B"}

	got := env.fetch(t, vault)

	assert.Equal(t, []string{"A", "B", "C"}, got.Signers)
	assert.Equal(t, 2, got.Threshold)
}

func TestFetch_PinsAddressAndDropsMalformedTransactions(t *testing.T) {
	env := newTestEnv(t, nil)
	vault := abcVault()
	vault.Address = ""
	executedNoRef := mtx("no-ref", models.StatusExecuted, sg("A", true), sg("B", true))
	badKind := mtx("bad-kind", models.StatusPending)
	badKind.Kind = "swap"
	strayRef := mtx("stray-ref", models.StatusPending, sg("A", false))
	strayRef.ExecutedRef = "0xstale"
	vault.Transactions = []models.Transaction{
		mtx("ok", models.StatusPending, sg("A", true), sg("B", false), sg("C", false)),
		mtx("", models.StatusPending),
		mtx("ok", models.StatusPending),
		executedNoRef,
		badKind,
		strayRef,
	}
	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(vault, nil)

	got, err := env.vaults.Fetch(context.Background(), testVault)

	require.NoError(t, err)
	assert.Equal(t, testVault, got.Address)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "ok", got.Transactions[0].ID)
	assert.Equal(t, models.StatusSigned, got.Transactions[0].Status, "status is derived from signers")
	assert.Equal(t, "stray-ref", got.Transactions[1].ID)
	assert.Empty(t, got.Transactions[1].ExecutedRef)
}

func TestFetch_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	vault := abcVault()
	vault.Transactions = []models.Transaction{mtx("t1", models.StatusPending, sg("A", true), sg("B", false), sg("C", false))}

	first := env.fetch(t, vault)
	second := env.fetch(t, vault)

	assert.Equal(t, first, second)
}

func TestFetch_LoadsPersistedTransactionsFirst(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.SaveVault(ctx, abcVault()))
	persisted := mtx("persisted", models.StatusSigned, sg("A", true), sg("B", false), sg("C", false))
	require.NoError(t, storage.SaveTransaction(ctx, testVault, persisted))

	env := newTestEnv(t, storage)
	vault := abcVault()
	vault.Transactions = []models.Transaction{mtx("remote", models.StatusPending, sg("A", false), sg("B", false), sg("C", false))}

	got := env.fetch(t, vault)

	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "persisted", got.Transactions[0].ID)
	assert.Equal(t, 0, got.Transactions[0].Position)
	assert.Equal(t, "remote", got.Transactions[1].ID)
	assert.Equal(t, 1, got.Transactions[1].Position)

	// новая транзакция из реестра должна сохраниться
	saved, err := storage.LoadVault(ctx, testVault)
	require.NoError(t, err)
	assert.Len(t, saved.Transactions, 2)
}

func TestFetch_StorageLoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mock.NewMockVaultStorage(ctrl)
	env := newTestEnv(t, storage)

	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(abcVault(), nil)
	storage.EXPECT().LoadVault(gomock.Any(), testVault).Return(models.Vault{}, store.ErrExecutingQuery)

	_, err := env.vaults.Fetch(context.Background(), testVault)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, store.ErrExecutingQuery)
}

func TestFetch_SaveErrorIsRetriedOnNextFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mock.NewMockVaultStorage(ctrl)
	env := newTestEnv(t, storage)

	vault := abcVault()
	vault.Transactions = []models.Transaction{mtx("t1", models.StatusPending, sg("A", false), sg("B", false), sg("C", false))}

	gomock.InOrder(
		storage.EXPECT().LoadVault(gomock.Any(), testVault).Return(models.Vault{}, store.ErrVaultNotFound),
		storage.EXPECT().SaveVault(gomock.Any(), gomock.Any()).Return(nil),
		storage.EXPECT().SaveTransaction(gomock.Any(), testVault, gomock.Any()).Return(store.ErrTransactionNotSaved),
		// второй fetch: изменений нет, но вся история сохраняется заново
		storage.EXPECT().SaveVault(gomock.Any(), gomock.Any()).Return(nil),
		storage.EXPECT().SaveTransaction(gomock.Any(), testVault, gomock.Any()).Return(nil),
		// третий fetch: данные уже сохранены
		storage.EXPECT().SaveVault(gomock.Any(), gomock.Any()).Return(nil),
	)
	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(vault, nil).Times(3)

	_, err := env.vaults.Fetch(context.Background(), testVault)
	require.ErrorIs(t, err, ErrStorage)

	_, err = env.vaults.Fetch(context.Background(), testVault)
	require.NoError(t, err)

	_, err = env.vaults.Fetch(context.Background(), testVault)
	require.NoError(t, err)
}

func TestFetch_PlaceholderLedger(t *testing.T) {
	addresses, err := validators.NewAddressValidator(validators.AddressFormatEVM, "")
	require.NoError(t, err)
	ledger := adapter.NewPlaceholderLedger(nil, 0)
	vaults := NewVaultService(ledger, store.NewMemoryStorage(), addresses, logger.Nop())

	const address = "0x52908400098527886E0F7030069857D2E4169EE7"
	first, err := vaults.Fetch(context.Background(), address)
	require.NoError(t, err)
	second, err := vaults.Fetch(context.Background(), address)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Threshold, 1)
	assert.LessOrEqual(t, first.Threshold, len(first.Signers))
	assert.NotEmpty(t, first.Transactions)
	assert.Equal(t, []string{address}, vaults.Addresses())
}

// ─────────────────────────────────────────────
// Load
// ─────────────────────────────────────────────

func TestLoad_FetchesOnlyOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(abcVault(), nil).Times(1)

	first, err := env.vaults.Load(context.Background(), testVault)
	require.NoError(t, err)
	second, err := env.vaults.Load(context.Background(), testVault)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// ─────────────────────────────────────────────
// Refresh
// ─────────────────────────────────────────────

func TestRefresh_NeverRevertsSignatures(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fetch(t, abcVault())
	tx := env.propose(t, 1_000_000)
	env.sign(t, tx.ID, "A")

	// ledger still reports the proposal without approvals
	stale := abcVault()
	stale.Balance = 7
	staleTx := tx.Clone()
	staleTx.Status = models.StatusPending
	stale.Transactions = []models.Transaction{staleTx}
	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(stale, nil)

	require.NoError(t, env.vaults.Refresh(context.Background()))

	got, ok := env.queries.GetTransaction(context.Background(), testVault, tx.ID)
	require.True(t, ok)
	assert.True(t, got.Signers[0].HasSigned, "refresh must not revert an approval")
	assert.Equal(t, models.StatusSigned, got.Status)

	vault, err := env.vaults.Load(context.Background(), testVault)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), vault.Balance, "the ledger owns the balance")
}

func TestRefresh_AdoptsRemoteApprovalsAndExecution(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fetch(t, abcVault())
	tx := env.propose(t, 1_000_000)

	remote := abcVault()
	remoteTx := tx.Clone()
	remoteTx.Signers[0].HasSigned = true
	remoteTx.Signers[2].HasSigned = true
	remoteTx.Status = models.StatusExecuted
	remoteTx.ExecutedRef = "0xabc"
	remote.Transactions = []models.Transaction{remoteTx}
	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(remote, nil)

	require.NoError(t, env.vaults.Refresh(context.Background()))

	got, ok := env.queries.GetTransaction(context.Background(), testVault, tx.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusExecuted, got.Status)
	assert.Equal(t, "0xabc", got.ExecutedRef)
	assert.Equal(t, 2, env.queries.GetSignatureCount(context.Background(), testVault, tx.ID))
}

func TestRefresh_ContinuesAfterFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	other := abcVault()
	other.Address = "vault-2"
	env.fetch(t, abcVault())
	env.fetch(t, other)

	env.ledger.EXPECT().FetchVault(gomock.Any(), testVault).Return(models.Vault{}, adapter.ErrBadGateway)
	updated := other
	updated.Balance = 1
	env.ledger.EXPECT().FetchVault(gomock.Any(), "vault-2").Return(updated, nil)

	err := env.vaults.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerUnavailable)

	got, err := env.vaults.Load(context.Background(), "vault-2")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Balance)
}

func TestRefresh_CancelledContext(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fetch(t, abcVault())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.vaults.Refresh(ctx)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRefresh_NoVaults(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.NoError(t, env.vaults.Refresh(context.Background()))
}
