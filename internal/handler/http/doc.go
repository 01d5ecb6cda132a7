// Package http implements the REST transport of the multisig keeper.
//
// It exposes route wiring, request handlers and middleware for the vault
// API. Request tracing, access logging, response compression and identity
// resolution are handled in this package before requests are delegated to
// the service layer.
package http
