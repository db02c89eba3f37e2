// Package http implements the HTTP transport of the development server: a
// small in-memory stand-in for the production backend that speaks the same
// REST surface the client syncs against. It provides middleware, route
// handlers, and the per-principal record store backing them.
package http
