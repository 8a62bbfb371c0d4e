// Package middleware contains HTTP middleware for the admin Fiber application.
//
// # Components
//
//   - Auth: API key validation protecting the admin endpoints.
//   - RayID: generates a unique request id for every incoming request,
//     injecting it into the context and response headers for tracing.
package middleware
