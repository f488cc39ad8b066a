package solana

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a TransactionResultEnvelope from a Transaction.
// Since TransactionResultEnvelope has unexported fields, we use JSON marshaling.
func makeTransactionEnvelope(tx *solana.Transaction) (*rpc.TransactionResultEnvelope, error) {
	txJSON, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	var temp struct {
		Transaction json.RawMessage `json:"transaction"`
	}
	temp.Transaction = txJSON

	envelopeJSON, err := json.Marshal(temp)
	if err != nil {
		return nil, err
	}

	var result rpc.GetTransactionResult
	if err := json.Unmarshal(envelopeJSON, &result); err != nil {
		return nil, err
	}

	return result.Transaction, nil
}

func makeSwapResult(t *testing.T, wallet, mint solana.PublicKey, programID solana.PublicKey) *rpc.GetTransactionResult {
	t.Helper()

	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{wallet, mint, programID},
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 2,
					Accounts:       []uint16{0, 1},
					Data:           []byte{1},
				},
			},
		},
	}

	envelope, err := makeTransactionEnvelope(tx)
	require.NoError(t, err)

	blockTime := solana.UnixTimeSeconds(time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC).Unix())
	amtBefore := 0.0
	amtAfter := 1500.5
	return &rpc.GetTransactionResult{
		Transaction: envelope,
		BlockTime:   &blockTime,
		Meta: &rpc.TransactionMeta{
			Fee:          5000,
			PreBalances:  []uint64{2_000_000_000, 0, 1},
			PostBalances: []uint64{1_499_995_000, 0, 1},
			PreTokenBalances: []rpc.TokenBalance{
				{
					Mint:          mint,
					Owner:         &wallet,
					UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &amtBefore},
				},
			},
			PostTokenBalances: []rpc.TokenBalance{
				{
					Mint:          mint,
					Owner:         &wallet,
					UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &amtAfter},
				},
			},
		},
	}
}

func TestParseTransaction_ExtractsMetaFields(t *testing.T) {
	wallet := solana.MustPublicKeyFromBase58(testWallet)
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	jupiter := solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	result := makeSwapResult(t, wallet, mint, jupiter)

	parsed, err := ParseTransaction(testSig1, result)
	require.NoError(t, err)

	assert.Equal(t, testSig1, parsed.Signature)
	assert.Equal(t, uint64(5000), parsed.Fee)
	assert.False(t, parsed.Failed)
	assert.Equal(t, time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC), parsed.BlockTime.UTC())

	require.Len(t, parsed.AccountKeys, 3)
	assert.Equal(t, wallet.String(), parsed.AccountKeys[0])
	assert.Equal(t, []uint64{2_000_000_000, 0, 1}, parsed.PreBalances)
	assert.Equal(t, []uint64{1_499_995_000, 0, 1}, parsed.PostBalances)

	require.Len(t, parsed.PreTokenBalances, 1)
	assert.Equal(t, wallet.String(), parsed.PreTokenBalances[0].Owner)
	assert.Equal(t, mint.String(), parsed.PreTokenBalances[0].Mint)
	assert.Equal(t, 0.0, parsed.PreTokenBalances[0].UIAmount)

	require.Len(t, parsed.PostTokenBalances, 1)
	assert.Equal(t, 1500.5, parsed.PostTokenBalances[0].UIAmount)

	require.Len(t, parsed.ProgramIDs, 1)
	assert.Equal(t, jupiter.String(), parsed.ProgramIDs[0])
}

func TestParseTransaction_FailedTransaction(t *testing.T) {
	wallet := solana.MustPublicKeyFromBase58(testWallet)
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	result := makeSwapResult(t, wallet, mint, solana.TokenProgramID)
	result.Meta.Err = map[string]any{"InstructionError": []any{}}

	parsed, err := ParseTransaction(testSig2, result)
	require.NoError(t, err)
	assert.True(t, parsed.Failed)
}

func TestParseTransaction_LoadedAddressesExtendAccountKeys(t *testing.T) {
	wallet := solana.MustPublicKeyFromBase58(testWallet)
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	loaded := solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

	result := makeSwapResult(t, wallet, mint, solana.TokenProgramID)
	result.Meta.LoadedAddresses = rpc.LoadedAddresses{
		Writable: []solana.PublicKey{loaded},
	}
	result.Meta.InnerInstructions = []rpc.InnerInstruction{
		{
			Index: 0,
			Instructions: []rpc.CompiledInstruction{
				{ProgramIDIndex: 3}, // the loaded address
			},
		},
	}

	parsed, err := ParseTransaction(testSig1, result)
	require.NoError(t, err)

	require.Len(t, parsed.AccountKeys, 4)
	assert.Equal(t, loaded.String(), parsed.AccountKeys[3])

	// Inner instructions contribute program ids after top-level ones.
	require.Len(t, parsed.ProgramIDs, 2)
	assert.Equal(t, loaded.String(), parsed.ProgramIDs[1])
}

func TestParseTransaction_MissingBlockTime(t *testing.T) {
	wallet := solana.MustPublicKeyFromBase58(testWallet)
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	result := makeSwapResult(t, wallet, mint, solana.TokenProgramID)
	result.BlockTime = nil

	parsed, err := ParseTransaction(testSig1, result)
	require.NoError(t, err)
	assert.True(t, parsed.BlockTime.IsZero())
}

func TestParseTransaction_NilResult(t *testing.T) {
	_, err := ParseTransaction(testSig1, nil)
	require.Error(t, err)
}
