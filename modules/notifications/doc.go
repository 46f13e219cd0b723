// Package notifications exposes the notification manager over HTTP.
//
// JSON routes create, list and transition notifications. GET /stream holds
// a text/event-stream response open as the recipient's live connection and
// relays connection, notification and heartbeat events from the hub. Errors
// are JSON bodies with a code, a message and the request id.
package notifications
