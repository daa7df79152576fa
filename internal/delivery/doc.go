// Package delivery implements the guarded send path to the chat webhook.
//
// A send passes three hard gates before any network traffic happens: the
// circuit breaker must be closed, the payload must exist, and the payload
// must pass content validation. The POST itself is one logical send with
// bounded HTTP-level retries; however many sub-attempts it takes, it counts
// as a single success or a single failure against the breaker.
package delivery
