package server

// Server is the lifecycle contract shared by the transport servers this
// package manages. RunServer blocks until the server stops serving;
// Shutdown drains in-flight requests and releases the listener.
type Server interface {
	RunServer()
	Shutdown()
}
