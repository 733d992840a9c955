// Package actorjwt resolves audit actors from bearer tokens using configured verification keys
// and strict validation semantics suitable for low-latency request paths.
package actorjwt
