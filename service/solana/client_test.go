package solana

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWallet = "4Nd1mYvMA1Krk7dv2rB7QYV6mBUcB4ZiCwMQxX1TbGZe"
	testSig1   = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"
	testSig2   = "2TgM4N8qCMqLvfR8dxqTQgKygPNzT5KQkN5b5sT7eZPEkdxyLTXGnNQB3j7KG4DPFg5Qez5yNJBQRQ5r7DDnFfjG"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call sequences.
type mockRPCClient struct {
	balance       uint64
	signatures    []*rpc.TransactionSignature
	transactions  map[string]*rpc.GetTransactionResult
	tokenAccounts *rpc.GetTokenAccountsResult
	err           error

	// errsBeforeSuccess makes the first N calls fail with err, then succeed.
	errsBeforeSuccess int
	calls             int
}

func (m *mockRPCClient) failing() error {
	m.calls++
	if m.err == nil {
		return nil
	}
	if m.errsBeforeSuccess > 0 && m.calls > m.errsBeforeSuccess {
		return nil
	}
	return m.err
}

func (m *mockRPCClient) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	if err := m.failing(); err != nil {
		return nil, err
	}
	return &rpc.GetBalanceResult{Value: m.balance}, nil
}

func (m *mockRPCClient) GetSignaturesForAddress(
	ctx context.Context,
	address solana.PublicKey,
	opts *rpc.GetSignaturesForAddressOpts,
) ([]*rpc.TransactionSignature, error) {
	if err := m.failing(); err != nil {
		return nil, err
	}
	return m.signatures, nil
}

func (m *mockRPCClient) GetTransaction(
	ctx context.Context,
	signature solana.Signature,
	opts *rpc.GetTransactionOpts,
) (*rpc.GetTransactionResult, error) {
	if err := m.failing(); err != nil {
		return nil, err
	}
	if m.transactions == nil {
		return nil, nil
	}
	return m.transactions[signature.String()], nil
}

func (m *mockRPCClient) GetTokenAccountsByOwner(
	ctx context.Context,
	owner solana.PublicKey,
	conf *rpc.GetTokenAccountsConfig,
	opts *rpc.GetTokenAccountsOpts,
) (*rpc.GetTokenAccountsResult, error) {
	if err := m.failing(); err != nil {
		return nil, err
	}
	if m.tokenAccounts == nil {
		return &rpc.GetTokenAccountsResult{}, nil
	}
	return m.tokenAccounts, nil
}

func newTestClient(mock *mockRPCClient) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(mock, logger, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func TestGetBalance(t *testing.T) {
	mock := &mockRPCClient{balance: 2_500_000_000}
	client := newTestClient(mock)

	bal, err := client.GetBalance(context.Background(), testWallet)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, bal, 1e-9)
}

func TestGetBalance_InvalidWallet(t *testing.T) {
	client := newTestClient(&mockRPCClient{})

	_, err := client.GetBalance(context.Background(), "not-a-wallet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid wallet address")
}

func TestGetSignatures(t *testing.T) {
	now := solana.UnixTimeSeconds(time.Now().Unix())
	past := solana.UnixTimeSeconds(time.Now().Unix() - 60)

	mock := &mockRPCClient{
		signatures: []*rpc.TransactionSignature{
			{
				Signature: solana.MustSignatureFromBase58(testSig1),
				Slot:      100,
				BlockTime: &now,
			},
			{
				Signature: solana.MustSignatureFromBase58(testSig2),
				Slot:      99,
				BlockTime: &past,
				Err:       map[string]any{"InstructionError": []any{}},
			},
		},
	}
	client := newTestClient(mock)

	records, err := client.GetSignatures(context.Background(), testWallet, 100, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, testSig1, records[0].Signature)
	assert.False(t, records[0].Failed)
	require.NotNil(t, records[0].BlockTime)

	assert.Equal(t, testSig2, records[1].Signature)
	assert.True(t, records[1].Failed)
}

func TestGetSignatures_InvalidBeforeCursor(t *testing.T) {
	client := newTestClient(&mockRPCClient{})

	_, err := client.GetSignatures(context.Background(), testWallet, 100, "bogus!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid before cursor")
}

func TestThrottleRetry_RecoversOnSecondAttempt(t *testing.T) {
	mock := &mockRPCClient{
		balance:           1_000_000_000,
		err:               errors.New("server responded with status 429: Too Many Requests"),
		errsBeforeSuccess: 1,
	}
	client := newTestClient(mock)

	bal, err := client.GetBalance(context.Background(), testWallet)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, bal, 1e-9)
	assert.Equal(t, 2, mock.calls)
}

func TestThrottleRetry_SecondThrottleReturnsSentinel(t *testing.T) {
	mock := &mockRPCClient{
		err: errors.New("server responded with status 429: Too Many Requests"),
	}
	client := newTestClient(mock)

	_, err := client.GetBalance(context.Background(), testWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 2, mock.calls)
}

func TestNonThrottleErrorDoesNotRetry(t *testing.T) {
	mock := &mockRPCClient{err: errors.New("connection refused")}
	client := newTestClient(mock)

	_, err := client.GetBalance(context.Background(), testWallet)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 1, mock.calls)
}
