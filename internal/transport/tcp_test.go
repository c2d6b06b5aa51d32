package transport

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestTCPRecvExact(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		server.Write([]byte("RFB 003.008\n"))
	}()

	tr := NewTCP(client)
	got, err := tr.Recv(12)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(got) != "RFB 003.008\n" {
		t.Fatalf("got %q", got)
	}
}

func TestTCPRecvConnectionClosed(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	tr := NewTCP(client)
	if _, err := tr.Recv(4); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("got err %v, want ErrConnectionClosed", err)
	}
}

func TestTCPRecvTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := NewTCP(client)
	_, ok, err := tr.RecvTimeout(1, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("RecvTimeout err: %v", err)
	}
	if ok {
		t.Fatal("expected timeout, got data")
	}

	// After a timeout the deadline must be cleared so a later send still
	// arrives and is read successfully.
	go func() { server.Write([]byte("x")) }()
	data, ok, err := tr.RecvTimeout(1, time.Second)
	if err != nil || !ok {
		t.Fatalf("RecvTimeout after clear: ok=%v err=%v", ok, err)
	}
	if string(data) != "x" {
		t.Fatalf("got %q", data)
	}
}

func TestTCPSend(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tr := NewTCP(client)
	go func() {
		if err := tr.Send([]byte("ping")); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	buf := make([]byte, 4)
	if _, err := server.Read(buf); err != nil {
		t.Fatalf("server read: %v", err)
	}
	if string(buf) != "ping" {
		t.Fatalf("got %q", buf)
	}
}
