// Package sms sends the text channel of a notification through Kavenegar,
// or through a log-only sender when no API key is configured.
package sms
