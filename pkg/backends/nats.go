package backends

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// Publisher is the subset of *nats.Conn the NATS backend uses.
type Publisher interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// NATS publishes each entry as one message on a subject. Entries are sent
// as they arrive; there is no batching or retry.
//
// URIs have the form
//
//	nats://[user:pass@]host:port/subject?tls=true&max_reconnect=10&reconnect_wait=2
//
// where reconnect_wait is in seconds.
type NATS struct {
	mu      sync.Mutex
	conn    Publisher
	servers string
	subject string
	options []nats.Option
	counters
}

// NewNATS parses uri and connects.
func NewNATS(uri string) (*NATS, error) {
	return NewNATSWithOptions(uri, true)
}

// NewNATSWithOptions parses uri and connects only when connect is true.
func NewNATSWithOptions(uri string, connect bool) (*NATS, error) {
	parsedURL, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URI")
	}
	if parsedURL.Scheme != "nats" {
		return nil, errors.Errorf("invalid scheme: %s (expected 'nats')", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, errors.New("missing NATS host")
	}

	subject := strings.TrimPrefix(parsedURL.Path, "/")
	if subject == "" {
		return nil, errors.New("missing NATS subject")
	}

	backend := &NATS{
		servers: "nats://" + parsedURL.Host,
		subject: subject,
		options: []nats.Option{nats.Name("masklog")},
	}

	query := parsedURL.Query()

	if s := query.Get("max_reconnect"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			backend.options = append(backend.options, nats.MaxReconnects(n))
		}
	}

	if s := query.Get("reconnect_wait"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			backend.options = append(backend.options, nats.ReconnectWait(time.Duration(n)*time.Second))
		}
	}

	if s := query.Get("tls"); s != "" {
		if tls, _ := strconv.ParseBool(s); tls {
			backend.options = append(backend.options, nats.Secure())
		}
	}

	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		password, _ := parsedURL.User.Password()
		backend.options = append(backend.options, nats.UserInfo(username, password))
	}

	if connect {
		conn, err := nats.Connect(backend.servers, backend.options...)
		if err != nil {
			return nil, errors.Wrap(err, "connect to NATS")
		}
		backend.conn = conn
	}

	return backend, nil
}

// NewNATSWithPublisher builds a backend around an existing connection.
func NewNATSWithPublisher(p Publisher, subject string) *NATS {
	return &NATS{conn: p, subject: subject}
}

// Write publishes entry with its trailing newline removed.
func (n *NATS) Write(entry []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		err := errors.New("NATS connection not established")
		n.record(0, err)
		return 0, err
	}

	payload := entry
	if l := len(payload); l > 0 && payload[l-1] == '\n' {
		payload = payload[:l-1]
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		n.record(0, err)
		return 0, errors.Wrap(err, "publish")
	}
	n.record(len(entry), nil)
	return len(entry), nil
}

// Flush waits for the server to acknowledge published messages.
func (n *NATS) Flush() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}
	return n.conn.Flush()
}

// Close flushes and closes the connection.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}
	err := n.conn.Flush()
	n.conn.Close()
	n.conn = nil
	return err
}

// SupportsAtomic returns true: each entry is a single message.
func (n *NATS) SupportsAtomic() bool {
	return true
}

// Subject returns the subject entries are published on.
func (n *NATS) Subject() string {
	return n.subject
}

// Servers returns the server URL derived from the URI.
func (n *NATS) Servers() string {
	return n.servers
}

// Stats returns backend statistics
func (n *NATS) Stats() BackendStats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats("nats:" + n.subject)
}
