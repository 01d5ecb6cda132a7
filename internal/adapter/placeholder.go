package adapter

import (
	"context"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/quorum"
	"github.com/MKhiriev/go-multisig-keeper/internal/utils"
	"github.com/MKhiriev/go-multisig-keeper/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	placeholderSignerCount = 3
	placeholderBalanceCap  = 1_000_000_000_000
)

// placeholderEpoch anchors the creation time of generated transactions so
// repeated fetches return equal snapshots.
var placeholderEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// placeholderLedger generates vault snapshots from the vault address alone.
// Every address resolves to a vault; equal addresses always yield equal
// snapshots.
type placeholderLedger struct {
	signers   []string
	threshold int
}

// NewPlaceholderLedger returns a deterministic [LedgerAdapter].
//
// When signers is empty each vault gets three signer addresses derived from
// the vault address. A threshold of zero selects a simple majority of the
// signer set.
func NewPlaceholderLedger(signers []string, threshold int) LedgerAdapter {
	return &placeholderLedger{
		signers:   append([]string(nil), signers...),
		threshold: threshold,
	}
}

// FetchVault implements [LedgerAdapter].
func (p *placeholderLedger) FetchVault(ctx context.Context, address string) (models.Vault, error) {
	if err := ctx.Err(); err != nil {
		return models.Vault{}, err
	}

	signers := p.signersFor(address)
	threshold := p.threshold
	if threshold == 0 {
		threshold = len(signers)/2 + 1
	}

	seed := utils.Keccak256([]byte(address))
	vault := models.Vault{
		Address:   address,
		Signers:   signers,
		Threshold: threshold,
		Balance:   binary.BigEndian.Uint64(seed[:8]) % placeholderBalanceCap,
	}
	vault.Transactions = p.transactionsFor(vault)

	return vault, nil
}

// Broadcast implements [LedgerAdapter]. The reference is the Keccak-256 hash
// of the vault address and transaction id.
func (p *placeholderLedger) Broadcast(ctx context.Context, vaultAddress string, tx models.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return utils.Keccak256Hex([]byte(vaultAddress), []byte(tx.ID)), nil
}

func (p *placeholderLedger) signersFor(address string) []string {
	if len(p.signers) > 0 {
		return append([]string(nil), p.signers...)
	}

	signers := make([]string, placeholderSignerCount)
	for i := range signers {
		signers[i] = derivedAddress(address, "signer", i)
	}
	return signers
}

// transactionsFor returns two historical transactions: an executed native
// transfer and a token transfer approved by the first signer only.
func (p *placeholderLedger) transactionsFor(vault models.Vault) []models.Transaction {
	executed := models.Transaction{
		ID:        placeholderTxID(vault.Address, 0),
		Position:  0,
		Kind:      models.NativeTransfer,
		Amount:    vault.Balance/10 + 1,
		Recipient: derivedAddress(vault.Address, "recipient", 0),
		Signers:   snapshot(vault.Signers, len(vault.Signers)),
		CreatedAt: placeholderEpoch,
	}
	executed.Status = models.StatusExecuted
	executed.ExecutedRef = utils.Keccak256Hex([]byte(vault.Address), []byte(executed.ID))

	pending := models.Transaction{
		ID:            placeholderTxID(vault.Address, 1),
		Position:      1,
		Kind:          models.TokenTransfer,
		Amount:        1_000,
		Recipient:     derivedAddress(vault.Address, "recipient", 1),
		TokenContract: derivedAddress(vault.Address, "token", 0),
		Signers:       snapshot(vault.Signers, 1),
		CreatedAt:     placeholderEpoch.Add(time.Hour),
	}
	pending.Status = quorum.DeriveStatus(models.StatusPending, pending.Signers, vault.Threshold)

	return []models.Transaction{executed, pending}
}

// snapshot builds a signer list where the first signed entries have approved.
func snapshot(addresses []string, signed int) []models.Signer {
	signers := make([]models.Signer, len(addresses))
	for i, a := range addresses {
		signers[i] = models.Signer{Address: a, HasSigned: i < signed}
	}
	return signers
}

func derivedAddress(vaultAddress, role string, i int) string {
	return common.BytesToAddress(utils.Keccak256([]byte(vaultAddress), []byte(role), []byte(strconv.Itoa(i)))).Hex()
}

func placeholderTxID(vaultAddress string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(vaultAddress+"/tx/"+strconv.Itoa(i))).String()
}
