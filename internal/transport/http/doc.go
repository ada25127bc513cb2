// Package http contains the HTTP transport layer: thin chi handlers that
// translate requests into service calls and service results into
// responses. Handlers hold a service, a logger and the shared error
// handler; they carry no business logic of their own.
package http
