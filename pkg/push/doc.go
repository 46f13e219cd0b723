// Package push hands mobile push messages to the push gateway.
//
// The gateway consumes a Redis stream; Publisher appends one entry per
// message with XADD and returns the stream entry id as the receipt.
package push
