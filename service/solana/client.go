package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brojonat/solroast/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is the interface for Solana RPC operations we depend on.
// The real implementation wraps the solana-go client; tests substitute
// a mock.
type RPCClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddress(ctx context.Context, address solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, signature solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
}

const (
	rpcCallTimeout = 15 * time.Second

	// Public mainnet endpoints enforce aggressive rate limits. On a 429
	// we wait once and retry; a second 429 surfaces as ErrThrottled.
	throttleRetryDelay = 2 * time.Second
)

// Client fetches wallet data from a Solana RPC endpoint. All methods
// apply a per-call timeout and translate endpoint rate limiting into
// ErrThrottled.
type Client struct {
	rpc     RPCClient
	logger  *slog.Logger
	metrics *metrics.Metrics

	// sleep is swapped out in tests to avoid real throttle delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client on top of an RPCClient. The metrics
// parameter may be nil.
func NewClient(rpcClient RPCClient, logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		rpc:     rpcClient,
		logger:  logger,
		metrics: m,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isThrottleErr reports whether an RPC error looks like a rate limit
// response. solana-go surfaces HTTP 429 in the error string.
func isThrottleErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

// withThrottleRetry runs fn, retrying exactly once after a fixed delay
// when the endpoint throttles. A second throttle yields ErrThrottled so
// callers can degrade gracefully.
func (c *Client) withThrottleRetry(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, rpcCallTimeout)
	err := fn(callCtx)
	cancel()
	if err == nil {
		c.metrics.RecordProviderCall("solana_rpc", method, "ok", time.Since(start).Seconds())
		return nil
	}
	if !isThrottleErr(err) {
		c.metrics.RecordProviderCall("solana_rpc", method, "error", time.Since(start).Seconds())
		return err
	}

	c.metrics.RecordRateLimitHit("solana_rpc")
	c.metrics.RecordProviderRetry("solana_rpc", "throttle")
	c.logger.Warn("rpc throttled, retrying once", "method", method, "delay", throttleRetryDelay)
	if serr := c.sleep(ctx, throttleRetryDelay); serr != nil {
		return serr
	}

	callCtx, cancel = context.WithTimeout(ctx, rpcCallTimeout)
	err = fn(callCtx)
	cancel()
	if err == nil {
		c.metrics.RecordProviderCall("solana_rpc", method, "ok_after_retry", time.Since(start).Seconds())
		return nil
	}
	if isThrottleErr(err) {
		c.metrics.RecordProviderCall("solana_rpc", method, "throttled", time.Since(start).Seconds())
		return fmt.Errorf("%s: %w", method, ErrThrottled)
	}
	c.metrics.RecordProviderCall("solana_rpc", method, "error", time.Since(start).Seconds())
	return err
}

// GetBalance returns the wallet's SOL balance.
func (c *Client) GetBalance(ctx context.Context, wallet string) (float64, error) {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address %s: %w", wallet, err)
	}

	var result *rpc.GetBalanceResult
	err = c.withThrottleRetry(ctx, "getBalance", func(ctx context.Context) error {
		var ferr error
		result, ferr = c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
		return ferr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", wallet, err)
	}
	return float64(result.Value) / LamportsPerSOL, nil
}

// GetSignatures fetches up to limit signature records for the wallet,
// newest first. A non-empty before cursor pages further back in time.
func (c *Client) GetSignatures(ctx context.Context, wallet string, limit int, before string) ([]SignatureRecord, error) {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %s: %w", wallet, err)
	}

	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	}
	if before != "" {
		beforeSig, err := solana.SignatureFromBase58(before)
		if err != nil {
			return nil, fmt.Errorf("invalid before cursor: %w", err)
		}
		opts.Before = beforeSig
	}

	var sigs []*rpc.TransactionSignature
	err = c.withThrottleRetry(ctx, "getSignaturesForAddress", func(ctx context.Context) error {
		var ferr error
		sigs, ferr = c.rpc.GetSignaturesForAddress(ctx, pubkey, opts)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures for %s: %w", wallet, err)
	}

	records := make([]SignatureRecord, 0, len(sigs))
	for _, sig := range sigs {
		rec := SignatureRecord{
			Signature: sig.Signature.String(),
			Failed:    sig.Err != nil,
		}
		if sig.BlockTime != nil {
			bt := int64(*sig.BlockTime)
			rec.BlockTime = &bt
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetTransaction fetches and parses a full transaction by signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %s: %w", signature, err)
	}

	maxVersion := uint64(0)
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	var result *rpc.GetTransactionResult
	err = c.withThrottleRetry(ctx, "getTransaction", func(ctx context.Context) error {
		var ferr error
		result, ferr = c.rpc.GetTransaction(ctx, sig, opts)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	if result == nil {
		return nil, fmt.Errorf("transaction %s not found", signature)
	}
	return ParseTransaction(signature, result)
}

// tokenAccountInfo mirrors the jsonParsed layout of an SPL token account.
type tokenAccountInfo struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				UIAmount *float64 `json:"uiAmount"`
				Decimals uint8    `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetTokenAccounts returns the wallet's SPL token holdings. Accounts
// with a zero or missing balance are kept; callers decide what counts
// as dust.
func (c *Client) GetTokenAccounts(ctx context.Context, wallet string) ([]TokenAccountBalance, error) {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %s: %w", wallet, err)
	}

	conf := &rpc.GetTokenAccountsConfig{
		ProgramId: solana.TokenProgramID.ToPointer(),
	}
	opts := &rpc.GetTokenAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingJSONParsed,
	}

	var result *rpc.GetTokenAccountsResult
	err = c.withThrottleRetry(ctx, "getTokenAccountsByOwner", func(ctx context.Context) error {
		var ferr error
		result, ferr = c.rpc.GetTokenAccountsByOwner(ctx, pubkey, conf, opts)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts for %s: %w", wallet, err)
	}

	balances := make([]TokenAccountBalance, 0, len(result.Value))
	for _, acct := range result.Value {
		raw := acct.Account.Data.GetRawJSON()
		if raw == nil {
			continue
		}
		var info tokenAccountInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			c.logger.Warn("skipping unparseable token account", "error", err)
			continue
		}
		bal := TokenAccountBalance{
			Mint:     info.Parsed.Info.Mint,
			Decimals: info.Parsed.Info.TokenAmount.Decimals,
		}
		if info.Parsed.Info.TokenAmount.UIAmount != nil {
			bal.Amount = *info.Parsed.Info.TokenAmount.UIAmount
		}
		balances = append(balances, bal)
	}
	return balances, nil
}
