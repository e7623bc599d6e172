// Package publish sends diagnostics snapshots to a socket.io hub, so an
// editor or preview page can show the state of a workspace while it is
// being edited.
package publish

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/blueprint/internal/bphcl"
	"github.com/specialistvlad/blueprint/internal/ctxlog"
)

// DefaultEvent is the socket.io event snapshots are emitted as.
const DefaultEvent = "blueprint:diagnostics"

// Snapshot is the state of a workspace after one check.
type Snapshot struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
	*bphcl.Report
}

// NewSnapshot builds a snapshot with a fresh ID.
func NewSnapshot(files int, diags hcl.Diagnostics) *Snapshot {
	return &Snapshot{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC(),
		Report: bphcl.NewReport(files, diags),
	}
}

// Payload is the snapshot as a generic JSON object, the form socket.io
// emits.
func (s *Snapshot) Payload() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Options configure a Publisher.
type Options struct {
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Publisher is a connected socket.io client.
type Publisher struct {
	io        *socket.Socket
	event     string
	connected atomic.Bool
}

// Dial connects to rawURL and waits for the connection to be accepted.
func Dial(ctx context.Context, rawURL string, opts Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "publisher", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("publish URL %q must be absolute", rawURL)
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}

	sockOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sockOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)
	p := &Publisher{io: io, event: opts.Event}

	connectChan := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		p.connected.Store(true)
		logger.Info("Publisher connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		p.connected.Store(false)
		logger.Warn("Publisher disconnected.", "reason", reason)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Connecting publisher...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return p, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(opts.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", opts.ConnectTimeout)
	}
}

// Publish emits a snapshot. It fails when the client is not connected; the
// underlying manager reconnects on its own.
func (p *Publisher) Publish(ctx context.Context, snap *Snapshot) error {
	if !p.connected.Load() {
		return fmt.Errorf("publisher is not connected")
	}
	payload, err := snap.Payload()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Publishing diagnostics snapshot.", "id", snap.ID, "errors", snap.Errors, "warnings", snap.Warnings)
	p.io.Emit(p.event, payload)
	return nil
}

// Close disconnects the client.
func (p *Publisher) Close() error {
	p.io.Disconnect()
	return nil
}
