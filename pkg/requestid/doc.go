// Package requestid attaches a correlation identifier to every HTTP
// request, independent of the tenant identifier.
//
// The middleware reuses a client-supplied X-Request-ID header when it is
// well-formed, generates a UUID otherwise, echoes the chosen id in the
// response header, and stores it in the request context. The logger
// extractor injects the id into every log record so server-side logs can be
// correlated with the trace id returned in error responses.
package requestid
