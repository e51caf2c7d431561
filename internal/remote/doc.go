// Package remote provides the shared HTTP session used to talk to the boost API.
//
// A single [Client] is created per process and shared by every order worker.
// It carries a cookie jar, a browser-like default header set, and per-request
// timeouts applied through the request context.
//
// The main components are:
//
//   - [Client]: session-aware HTTP client with a one-time warm-up request
//   - [Response]: captured outcome of a single request
//   - [DefaultHeaders]: the header set sent with every request
package remote
