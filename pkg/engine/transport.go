package engine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultHandshakeTimeout bounds connection establishment, including the
// TLS handshake and the greeting frame.
const DefaultHandshakeTimeout = 10 * time.Second

// DefaultRequestTimeout bounds a single request/reply exchange.
const DefaultRequestTimeout = 60 * time.Second

// Options configures Dial.
type Options struct {
	// TLSConfig carries the client certificate pair and the trusted root
	// pool. Nil means no TLS (plain ws://, used by tests).
	TLSConfig *tls.Config

	// Header is sent with the websocket handshake; the engine expects the
	// caller's identity header here.
	Header http.Header

	// HandshakeTimeout bounds Dial. Zero means DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// RequestTimeout bounds each Exchange. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Conn is a single stateful connection to the engine. At most one request is
// in flight at a time; Exchange enforces that with a mutex rather than
// request-id correlation, because the wire protocol replies strictly in
// order.
type Conn struct {
	ws             *websocket.Conn
	requestTimeout time.Duration

	mu        sync.Mutex
	closeOnce sync.Once
}

// Dial opens a connection to the engine endpoint at url and drains the
// server's greeting frame. The connection is ready for Exchange when Dial
// returns. All failures are reported as *ConnectionError.
func Dial(ctx context.Context, url string, opts Options) (*Conn, error) {
	handshakeTimeout := opts.HandshakeTimeout
	if handshakeTimeout == 0 {
		handshakeTimeout = DefaultHandshakeTimeout
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = DefaultRequestTimeout
	}

	dialer := websocket.Dialer{
		TLSClientConfig:  opts.TLSConfig,
		HandshakeTimeout: handshakeTimeout,
	}

	ws, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, NewConnectionError("dial", err)
	}

	// The first inbound frame is the server's connection-established notice.
	// It is not a reply to any call and must be consumed before the first
	// request goes out.
	if err := ws.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		ws.Close()
		return nil, NewConnectionError("handshake", err)
	}
	if _, _, err := ws.ReadMessage(); err != nil {
		ws.Close()
		return nil, NewConnectionError("handshake", fmt.Errorf("reading greeting frame: %w", err))
	}

	return &Conn{ws: ws, requestTimeout: requestTimeout}, nil
}

// Exchange sends one request frame and blocks until the single reply frame
// arrives. It is safe for concurrent use, but calls are serialized: the
// engine channel carries one request at a time.
func (c *Conn) Exchange(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", req.Method, err)
	}

	deadline := time.Now().Add(c.requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return nil, NewConnectionError("send", err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, NewConnectionError("send", err)
	}

	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return nil, NewConnectionError("receive", err)
	}
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, NewConnectionError("receive", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, NewProtocolError(req.Method, fmt.Sprintf("malformed reply frame: %v", err))
	}
	return &resp, nil
}

// Close releases the connection. It is idempotent and must be called on
// every exit path so the engine can release the server-side session.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		// Best effort close frame; the engine drops the session either way.
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.ws.Close()
	})
	return err
}

// LoadTLS builds a client TLS configuration from a PEM certificate pair and
// a trusted root certificate file.
func LoadTLS(certFile, keyFile, caFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read root certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse root certificate %q", caFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
