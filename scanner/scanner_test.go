package scanner

import (
	"context"
	"net"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func newTestSemaphore(n int64) *semaphore.Weighted {
	return semaphore.NewWeighted(n)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

// acceptAndClose runs a listener that accepts every connection and closes it
// immediately, standing in for a host with an open port but nothing
// speaking the ZKTeco protocol on it.
func acceptAndClose(t *testing.T, ln net.Listener) {
	t.Helper()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
}

func TestDialOpenFindsListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	acceptAndClose(t, ln)

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port := mustAtoi(t, portStr)

	sem := newTestSemaphore(1)
	require.True(t, dialOpen(context.Background(), sem, "127.0.0.1", port, time.Second))
}

func TestDialOpenMissingPortReturnsFalse(t *testing.T) {
	sem := newTestSemaphore(1)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// Port 1 on loopback is essentially never listening in a test sandbox.
	require.False(t, dialOpen(ctx, sem, "127.0.0.1", 1, 100*time.Millisecond))
}

func TestProbeHostNoZKTecoPortOpenReturnsZeroValue(t *testing.T) {
	out := make(chan DeviceSummary, 1)
	sem := newTestSemaphore(1)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	probeHost(ctx, sem, out, "127.0.0.1", []int{1, 2}, []int{3}, 100*time.Millisecond)
	got := <-out
	require.Empty(t, got.IP)
}

func TestProbeHostAggregatesOpenPorts(t *testing.T) {
	zktecoLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer zktecoLn.Close()
	acceptAndClose(t, zktecoLn)

	webLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer webLn.Close()
	acceptAndClose(t, webLn)

	_, zktecoPortStr, err := net.SplitHostPort(zktecoLn.Addr().String())
	require.NoError(t, err)
	_, webPortStr, err := net.SplitHostPort(webLn.Addr().String())
	require.NoError(t, err)
	zktecoPort := mustAtoi(t, zktecoPortStr)
	webPort := mustAtoi(t, webPortStr)

	out := make(chan DeviceSummary, 1)
	sem := newTestSemaphore(4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	probeHost(ctx, sem, out, "127.0.0.1", []int{zktecoPort}, []int{webPort}, 300*time.Millisecond)

	got := <-out
	require.Equal(t, "127.0.0.1", got.IP)
	require.Equal(t, "Unknown", got.MAC)
	require.ElementsMatch(t, []int{zktecoPort, webPort}, got.OpenPorts)
	require.True(t, sort.IntsAreSorted(got.OpenPorts))
	// Neither listener speaks the ZKTeco protocol, so the device-info fetch
	// fails fast and every info field stays empty.
	require.Empty(t, got.DeviceName)
}

func TestPickZKTecoPortPrefersLowestMatchingPort(t *testing.T) {
	require.Equal(t, 4370, pickZKTecoPort([]int{80, 4370, 8080}, []int{4370, 4360}))
	require.Equal(t, 0, pickZKTecoPort([]int{80, 8080}, []int{4370, 4360}))
}
