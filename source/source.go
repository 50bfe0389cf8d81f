// Package source acquires raw scan payloads, either live from a console
// over HTTP or from a previously saved local snapshot. Acquisition is
// blocking and all-or-nothing: a provider either returns the complete
// payload or an error.
package source

// Provider supplies a raw /api/v1/images JSON payload from some backing
// store. The catalog constructor is agnostic to which one produced it.
type Provider interface {
	Images() ([]byte, error)
}
