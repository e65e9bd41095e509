// Package renderer implements the high-level renderer controller (C6):
// Subscribe, SetAVTransportURI, Play, Stop, GetProtocolInfo, built on the
// SOAP action client.
package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"streamer/internal/profile"
	"streamer/internal/soap"
)

const (
	urnAVTransport       = "urn:schemas-upnp-org:service:AVTransport:1"
	urnConnectionManager = "urn:schemas-upnp-org:service:ConnectionManager:1"
	urnRenderingControl  = "urn:schemas-upnp-org:service:RenderingControl:1"

	defaultSubscriptionTimeout = 300 * time.Second
)

// Controller drives a single renderer's AVTransport, ConnectionManager, and
// RenderingControl services through the SOAP client.
type Controller struct {
	client *soap.Client
	log    *slog.Logger

	sid     string
	timeout time.Duration
}

// NewController wraps client; logger defaults to slog.Default() if nil.
func NewController(client *soap.Client, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{client: client, log: logger}
}

// Subscribe resolves RenderingControl's event subscription URL and records
// it as the subscription, with a default 300-second timeout lease. It sends
// no SUBSCRIBE request and receives no session ID from the renderer.
func (c *Controller) Subscribe(ctx context.Context) error {
	eventURL, err := c.client.ServiceURL(ctx, urnRenderingControl, true)
	if err != nil {
		c.log.Warn("subscribe: resolve event url failed", "error", err)
		return err
	}

	// The underlying UPnP subscribe transport is an external collaborator;
	// here we record the intended lease and log the resolved target. A
	// real UPnP client library performs the actual SUBSCRIBE handshake.
	c.sid = eventURL
	c.timeout = defaultSubscriptionTimeout
	c.log.Info("subscribed to RenderingControl events", "event_url", eventURL, "timeout", c.timeout)
	return nil
}

// Unsubscribe tears down the event subscription, if any.
func (c *Controller) Unsubscribe() {
	c.sid = ""
}

// GetProtocolInfo sends ConnectionManager's GetProtocolInfo and returns the
// parsed Sink protocol list.
func (c *Controller) GetProtocolInfo(ctx context.Context) ([]profile.ProtocolInfo, error) {
	action := soap.NewAction("GetProtocolInfo", urnConnectionManager)
	body, err := c.client.Send(ctx, urnConnectionManager, action)
	if err != nil {
		c.log.Warn("GetProtocolInfo failed", "error", err)
		return nil, err
	}

	sink, err := extractSink(body)
	if err != nil {
		c.log.Warn("GetProtocolInfo: malformed response", "error", err)
		return nil, err
	}

	return profile.ParseProtocolInfo(sink), nil
}

// SetAVTransportURI publishes uri with DIDL-Lite metadata built from pi.
// Failures are logged and non-fatal to the session, per the renderer
// controller's error policy.
func (c *Controller) SetAVTransportURI(ctx context.Context, uri string, pi profile.ProtocolInfo) error {
	didl := buildDIDL(uri, pi)

	action := soap.NewAction("SetAVTransportURI", urnAVTransport).
		With("InstanceID", "0").
		With("CurrentURI", uri).
		With("CurrentURIMetaData", didl)

	if _, err := c.client.Send(ctx, urnAVTransport, action); err != nil {
		c.log.Warn("SetAVTransportURI failed", "uri", uri, "error", err)
		return err
	}
	return nil
}

// Play sends AVTransport's Play action at the given speed ("1" for normal
// speed). Failures are logged and non-fatal.
func (c *Controller) Play(ctx context.Context, speed string) error {
	action := soap.NewAction("Play", urnAVTransport).
		With("InstanceID", "0").
		With("Speed", speed)

	if _, err := c.client.Send(ctx, urnAVTransport, action); err != nil {
		c.log.Warn("Play failed", "error", err)
		return err
	}
	return nil
}

// Stop sends AVTransport's Stop action. Stop is best-effort: errors are
// logged and returned, and the session's teardown paths log them and carry
// on.
func (c *Controller) Stop(ctx context.Context) error {
	action := soap.NewAction("Stop", urnAVTransport).
		With("InstanceID", "0")

	if _, err := c.client.Send(ctx, urnAVTransport, action); err != nil {
		c.log.Warn("Stop failed (best-effort)", "error", err)
		return err
	}
	return nil
}

func extractSink(body []byte) (string, error) {
	sink, ok := extractTag(body, "Sink")
	if !ok {
		return "", fmt.Errorf("response missing Sink")
	}
	return sink, nil
}
