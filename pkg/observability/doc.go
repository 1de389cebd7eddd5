/*
Package observability provides tools for monitoring the roster store.

It includes Prometheus metrics and structured logging built on the store
lifecycle hooks, and Combine to attach several hook sets at once.
*/
package observability
