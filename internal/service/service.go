package service

import "context"

// ReportCache is the read-through store for computed report payloads.
// Payloads are scoped to a generation that Invalidate advances.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dst any) (bool, error)
	Set(ctx context.Context, gen int64, key string, v any) error
	Invalidate(ctx context.Context) error
}
