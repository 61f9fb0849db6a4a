/*
Package observability provides tools for monitoring the eventmodel engine.

It turns build lifecycle hooks into Prometheus metrics and structured log records.
Both are plain domain.BuildHooks and can be combined with BuildHooks.Merge.
*/
package observability
