package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

const queueAlreadyExists = "QueueAlreadyExists"

// EnsureTables creates the named tables. Empty names and tables that
// already exist are skipped.
func EnsureTables(ctx context.Context, connStr string, names ...string) error {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, TableClientOptions())
	if err != nil {
		return err
	}
	return ensureAll(ctx, names, string(aztables.TableAlreadyExists), func(ctx context.Context, name string) error {
		_, err := svc.NewClient(name).CreateTable(ctx, nil)
		return err
	})
}

// EnsureQueues creates the named queues. Empty names and queues that
// already exist are skipped.
func EnsureQueues(ctx context.Context, connStr string, names ...string) error {
	return ensureAll(ctx, names, queueAlreadyExists, func(ctx context.Context, name string) error {
		q, err := azqueue.NewQueueClientFromConnectionString(connStr, name, nil)
		if err != nil {
			return err
		}
		_, err = q.Create(ctx, nil)
		return err
	})
}

func ensureAll(ctx context.Context, names []string, existsCode string, create func(context.Context, string) error) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := create(ctx, name); err != nil && !hasErrorCode(err, existsCode) {
			return fmt.Errorf("create %s: %w", name, err)
		}
	}
	return nil
}

func hasErrorCode(err error, code string) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == code
}
