// Package resource bounds the load the HTTP layer admits and the throughput
// of dataset reads.
package resource
