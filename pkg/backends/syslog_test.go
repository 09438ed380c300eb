package backends

import (
	"bufio"
	"net"
	"testing"
	"time"
)

func TestSyslog_Write(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 2)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for i := 0; i < 2; i++ {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			received <- line
		}
	}()

	sb, err := NewSyslog("tcp", ln.Addr().String(), DefaultSyslogPriority, "chat-api")
	if err != nil {
		t.Fatalf("NewSyslog error: %v", err)
	}
	defer sb.Close()

	for _, entry := range []string{`{"level":"info"}` + "\n", "no newline"} {
		if _, err := sb.Write([]byte(entry)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}

	want := []string{
		`<14>chat-api: {"level":"info"}` + "\n",
		"<14>chat-api: no newline\n",
	}
	for i, w := range want {
		select {
		case got := <-received:
			if got != w {
				t.Errorf("message %d = %q, want %q", i, got, w)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}

	if err := sb.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
	if _, err := sb.Write([]byte("late")); err == nil {
		t.Error("expected error after Close")
	}
}

func TestNewSyslog_DialError(t *testing.T) {
	if _, err := NewSyslog("tcp", "127.0.0.1:1", DefaultSyslogPriority, "x"); err == nil {
		t.Error("expected dial error for a closed port")
	}
}
