package session

import "errors"

// Error kinds named in the error handling design: each is a distinct
// sentinel, wrapped with context at the call site rather than carried as a
// single monolithic error-code enum.
var (
	ErrConfigMissing       = errors.New("config missing: device url not set")
	ErrUpnpUnavailable     = errors.New("upnp instance unavailable")
	ErrRendererUnreachable = errors.New("renderer unreachable")
	ErrXmlMalformed        = errors.New("device description xml malformed")
	ErrNoLocalAddress      = errors.New("no bindable local ipv4/ipv6 address")
	ErrChainBuildFailed    = errors.New("output chain build failed")
	ErrEncoderUnavailable  = errors.New("no usable encoder candidate")
	ErrStreamRefused       = errors.New("output chain refused all declared streams")
	ErrAllocation          = errors.New("allocation failed")
)
