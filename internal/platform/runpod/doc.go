// Package runpod provides a client for the RunPod-style REST provisioning
// API with error normalization and timeout management.
//
// The package is organized into:
//
//   - client.go: Client interface and request/response types
//   - real_client.go: HTTP implementation with per-operation timeouts
//   - errors.go: Error normalization and classification predicates
//   - endpoint.go: Endpoint URL resolution for provisioned pods
//   - timestamp.go: Provider timestamp parsing
//
// Provider responses are decoded into explicit structs with optional fields.
// Missing fields translate to zero values, never to a decode failure, so
// callers can fail closed when a critical field is absent.
package runpod
