// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes a single endpoint:
//   - POST /predict: feature vector in, four resource metrics out
//
// Malformed requests get a structured 4xx error; inference failures and
// panics get a structured 500. Neither stops the server.
package http
