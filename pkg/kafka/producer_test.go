package kafka

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPingReachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	p := NewProducer([]string{ln.Addr().String()}, "orders", "test", testLogger())
	defer p.Close()

	assert.NoError(t, p.Ping(context.Background()))
}

func TestPingUnreachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	p := NewProducer([]string{addr}, "orders", "test", testLogger())
	defer p.Close()

	err = p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial kafka broker")
}
