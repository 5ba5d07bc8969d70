/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log records.

Both are delivered as domain.LifecycleHooks and can be combined with domain.MergeHooks.
*/
package observability
