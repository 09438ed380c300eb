package backends

import (
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// DefaultSyslogPriority is facility user (1) at severity info (6).
const DefaultSyslogPriority = 1*8 + 6

// Syslog writes entries as "<priority>tag: line" messages to a syslog
// daemon over a unix socket, UDP or TCP.
type Syslog struct {
	mu       sync.Mutex
	network  string
	address  string
	conn     net.Conn
	priority int
	tag      string
	counters
}

// NewSyslog dials the daemon. An empty address probes the usual local
// sockets.
func NewSyslog(network, address string, priority int, tag string) (*Syslog, error) {
	if address == "" {
		for _, path := range []string{"/dev/log", "/var/run/syslog", "/var/run/log"} {
			if _, err := os.Stat(path); err == nil {
				network = "unix"
				address = path
				break
			}
		}
		if address == "" {
			return nil, errors.New("no local syslog socket found")
		}
	}
	if network == "" {
		network = "udp"
	}

	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, errors.Wrap(err, "dial syslog")
	}

	return &Syslog{
		network:  network,
		address:  address,
		conn:     conn,
		priority: priority,
		tag:      tag,
	}, nil
}

// Write sends entry as one syslog message.
func (sb *Syslog) Write(entry []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.conn == nil {
		err := errors.New("syslog connection closed")
		sb.record(0, err)
		return 0, err
	}

	line := entry
	if l := len(line); l > 0 && line[l-1] == '\n' {
		line = line[:l-1]
	}

	msg := make([]byte, 0, len(line)+len(sb.tag)+8)
	msg = append(msg, '<')
	msg = strconv.AppendInt(msg, int64(sb.priority), 10)
	msg = append(msg, '>')
	msg = append(msg, sb.tag...)
	msg = append(msg, ':', ' ')
	msg = append(msg, line...)
	msg = append(msg, '\n')

	if _, err := sb.conn.Write(msg); err != nil {
		sb.record(0, err)
		return 0, errors.Wrap(err, "write syslog")
	}
	sb.record(len(entry), nil)
	return len(entry), nil
}

// Flush is a no-op; every Write is sent immediately.
func (sb *Syslog) Flush() error {
	return nil
}

// Close closes the syslog connection
func (sb *Syslog) Close() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.conn == nil {
		return nil
	}
	err := sb.conn.Close()
	sb.conn = nil
	return err
}

// SupportsAtomic returns false as syslog doesn't support atomic writes
func (sb *Syslog) SupportsAtomic() bool {
	return false
}

// Stats returns backend statistics
func (sb *Syslog) Stats() BackendStats {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.stats("syslog://" + sb.network + "/" + sb.address)
}
