// Package requestid tags every HTTP request with a correlation id.
//
// Middleware accepts a client supplied X-Request-ID when it is short and
// made of letters, digits, dashes and underscores, and generates a UUID
// otherwise. The id is echoed in the response, stored in the request
// context, attached to error bodies and added to logs through
// LoggerExtractor.
package requestid
