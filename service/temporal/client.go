package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
)

// SweepScheduleID identifies the recurring refresh sweep schedule.
const SweepScheduleID = "analysis-refresh-sweep"

// Client talks to Temporal for schedule management and ad-hoc workflow
// starts.
type Client struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

// NewClient creates a new Temporal client.
func NewClient(host, namespace, taskQueue string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("connecting to temporal",
		"host", host,
		"namespace", namespace,
		"task_queue", taskQueue,
	)

	c, err := client.Dial(client.Options{
		HostPort:  host,
		Namespace: namespace,
		Logger:    newTemporalLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}

	logger.Info("connected to temporal successfully")

	return &Client{
		client:    c,
		taskQueue: taskQueue,
		logger:    logger,
	}, nil
}

// EnsureSweepSchedule creates the recurring refresh sweep schedule if it
// does not already exist.
func (c *Client) EnsureSweepSchedule(ctx context.Context, interval, ttl time.Duration, batchSize int) error {
	handle := c.client.ScheduleClient().GetHandle(ctx, SweepScheduleID)
	if _, err := handle.Describe(ctx); err == nil {
		c.logger.Debug("sweep schedule already exists", "schedule_id", SweepScheduleID)
		return nil
	}

	c.logger.Info("creating sweep schedule",
		"schedule_id", SweepScheduleID,
		"interval", interval,
		"ttl", ttl,
	)

	_, err := c.client.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: SweepScheduleID,
		Spec: client.ScheduleSpec{
			Intervals: []client.ScheduleIntervalSpec{
				{Every: interval},
			},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        "refresh-sweep",
			Workflow:  "RefreshSweepWorkflow",
			TaskQueue: c.taskQueue,
			Args: []interface{}{SweepInput{
				TTL:       ttl,
				BatchSize: batchSize,
			}},
		},
		Memo: map[string]interface{}{
			"created_by": "solroast",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule %q: %w", SweepScheduleID, err)
	}

	c.logger.Info("sweep schedule created", "schedule_id", SweepScheduleID)
	return nil
}

// StartWalletRefresh kicks off an asynchronous refresh of one wallet.
func (c *Client) StartWalletRefresh(ctx context.Context, wallet string) error {
	// The workflow ID is derived from the wallet so a refresh already
	// in flight blocks a duplicate start.
	options := client.StartWorkflowOptions{
		ID:        "refresh-wallet-" + wallet,
		TaskQueue: c.taskQueue,
	}

	_, err := c.client.ExecuteWorkflow(ctx, options, "RefreshWalletWorkflow", RefreshWalletInput{
		Wallet: wallet,
	})
	if err != nil {
		return fmt.Errorf("failed to start refresh for %s: %w", wallet, err)
	}

	c.logger.Debug("wallet refresh started", "wallet", wallet)
	return nil
}

// SDKClient returns the underlying Temporal SDK client.
func (c *Client) SDKClient() client.Client {
	return c.client
}

// TaskQueue returns the configured task queue for this client.
func (c *Client) TaskQueue() string {
	return c.taskQueue
}

// Close closes the Temporal client connection.
func (c *Client) Close() {
	c.logger.Info("closing temporal client")
	c.client.Close()
}

// temporalLogger adapts slog.Logger to Temporal's logger interface.
type temporalLogger struct {
	logger *slog.Logger
}

func newTemporalLogger(logger *slog.Logger) *temporalLogger {
	return &temporalLogger{logger: logger}
}

func (l *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.logger.Debug(msg, keyvals...)
}

func (l *temporalLogger) Info(msg string, keyvals ...interface{}) {
	l.logger.Info(msg, keyvals...)
}

func (l *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.logger.Warn(msg, keyvals...)
}

func (l *temporalLogger) Error(msg string, keyvals ...interface{}) {
	l.logger.Error(msg, keyvals...)
}
