// Package ratelimit holds the per-client request limiter used in front of the public API.
//
// The limiter counts requests per identifier over a trailing one-minute window and rejects
// once the configured threshold is reached. State lives in process memory only, so limits
// reset on restart. Loopback clients are never limited.
//
// Decisions can be reported to a StatsStore (memory or Redis); recording is best-effort.
package ratelimit
