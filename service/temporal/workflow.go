package temporal

import (
	"fmt"
	"time"

	temporalsdk "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

var a *Activities // for type-safe activity invocation

// RefreshWalletWorkflow re-analyzes one wallet and persists the result.
//
// The workflow performs these steps:
// 1. Analyze the wallet (AnalyzeWallet activity)
// 2. Write the analysis to the cache (PersistAnalysis activity)
// 3. Emit a refresh event (PublishAnalysis activity, non-fatal)
func RefreshWalletWorkflow(ctx workflow.Context, input RefreshWalletInput) (*RefreshWalletResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("RefreshWalletWorkflow started", "wallet", input.Wallet)

	result := &RefreshWalletResult{
		Wallet:      input.Wallet,
		RefreshedAt: workflow.Now(ctx),
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 120 * time.Second,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var analyzeResult *AnalyzeWalletResult
	err := workflow.ExecuteActivity(ctx, a.AnalyzeWallet, AnalyzeWalletInput{Wallet: input.Wallet}).Get(ctx, &analyzeResult)
	if err != nil {
		errMsg := fmt.Sprintf("failed to analyze wallet: %v", err)
		result.Error = &errMsg
		return result, fmt.Errorf("failed to analyze wallet: %w", err)
	}
	result.TxCount = analyzeResult.Analysis.TransactionCount

	err = workflow.ExecuteActivity(ctx, a.PersistAnalysis, PersistAnalysisInput{
		Wallet:   input.Wallet,
		Analysis: analyzeResult.Analysis,
	}).Get(ctx, nil)
	if err != nil {
		errMsg := fmt.Sprintf("failed to persist analysis: %v", err)
		result.Error = &errMsg
		return result, fmt.Errorf("failed to persist analysis: %w", err)
	}

	// Events are best-effort; a NATS outage must not fail the refresh.
	err = workflow.ExecuteActivity(ctx, a.PublishAnalysis, PublishAnalysisInput{
		Wallet:   input.Wallet,
		Analysis: analyzeResult.Analysis,
	}).Get(ctx, nil)
	if err != nil {
		logger.Warn("failed to publish analysis event", "wallet", input.Wallet, "error", err)
	}

	logger.Info("RefreshWalletWorkflow completed",
		"wallet", input.Wallet,
		"tx_count", result.TxCount,
	)
	return result, nil
}

// RefreshSweepWorkflow finds wallets with expired analyses and refreshes
// each one through a child workflow. A wallet that fails to refresh does
// not abort the sweep.
func RefreshSweepWorkflow(ctx workflow.Context, input SweepInput) (*SweepResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("RefreshSweepWorkflow started", "ttl", input.TTL, "batch_size", input.BatchSize)

	if input.BatchSize <= 0 {
		input.BatchSize = 50
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var staleResult *GetStaleWalletsResult
	err := workflow.ExecuteActivity(ctx, a.GetStaleWallets, GetStaleWalletsInput{
		TTL:   input.TTL,
		Limit: input.BatchSize,
	}).Get(ctx, &staleResult)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale wallets: %w", err)
	}

	result := &SweepResult{Stale: len(staleResult.Wallets)}
	if result.Stale == 0 {
		logger.Info("no stale wallets, sweep complete")
		return result, nil
	}

	childOptions := workflow.ChildWorkflowOptions{
		WorkflowExecutionTimeout: 5 * time.Minute,
	}

	for _, wallet := range staleResult.Wallets {
		childCtx := workflow.WithChildOptions(ctx, childOptions)
		var refreshResult RefreshWalletResult
		err := workflow.ExecuteChildWorkflow(childCtx, RefreshWalletWorkflow, RefreshWalletInput{
			Wallet: wallet,
		}).Get(childCtx, &refreshResult)
		if err != nil {
			logger.Warn("wallet refresh failed", "wallet", wallet, "error", err)
			result.Failed++
			continue
		}
		result.Refreshed++
	}

	logger.Info("RefreshSweepWorkflow completed",
		"stale", result.Stale,
		"refreshed", result.Refreshed,
		"failed", result.Failed,
	)
	return result, nil
}
