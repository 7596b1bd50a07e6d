package transport

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

func freeAddrs(t *testing.T, n int) []string {
	t.Helper()
	addrs := make([]string, n)
	for i := range addrs {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs[i] = l.Addr().String()
		require.NoError(t, l.Close())
	}
	return addrs
}

func newMeshForTest(t *testing.T, size int, reg *action.Registry) []*Transport {
	t.Helper()
	addrs := freeAddrs(t, size)
	pool := rthread.NewPool(2)
	transports := make([]*Transport, size)
	var wg sync.WaitGroup
	wg.Add(size)
	errs := make([]error, size)
	for i := 0; i < size; i++ {
		i := i
		go func() {
			defer wg.Done()
			tr, err := New(Config{Rank: i, Peers: addrs, ListenNet: "tcp"}, pool, reg)
			transports[i] = tr
			errs[i] = err
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, tr := range transports {
			_ = tr.Close()
		}
		pool.Close()
	})
	return transports
}

func TestMeshSendAndFinish(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	echo := action.RegisterIn(reg, "transport_test.echo", func(s string) (string, error) { return s, nil })
	transports := newMeshForTest(t, 2, reg)

	done := make(chan struct{})
	var gotPayload []byte
	id := transports[0].NewPromiseID()
	transports[0].AwaitFinish(id, func(payload []byte, failure string) {
		gotPayload = payload
		close(done)
	})

	payload, err := echo.EncodeArgs("hello")
	require.NoError(t, err)
	require.NoError(t, transports[0].Send(1, action.Envelope{
		ActionID:  echo.ID(),
		Kind:      action.KindEvaluate,
		PromiseID: id,
		Payload:   payload,
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("finish envelope never arrived")
	}
	result, err := echo.DecodeResult(gotPayload)
	require.NoError(t, err)
	require.Equal(t, "hello", result)
}

func TestStatsCountMessages(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	echo := action.RegisterIn(reg, "transport_test.echo_stats", func(s string) (string, error) { return s, nil })
	transports := newMeshForTest(t, 2, reg)

	id := transports[0].NewPromiseID()
	done := make(chan struct{})
	transports[0].AwaitFinish(id, func([]byte, string) { close(done) })
	payload, err := echo.EncodeArgs("x")
	require.NoError(t, err)
	require.NoError(t, transports[0].Send(1, action.Envelope{ActionID: echo.ID(), Kind: action.KindEvaluate, PromiseID: id, Payload: payload}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	require.GreaterOrEqual(t, transports[0].Stats().Sent, uint64(1))
	require.GreaterOrEqual(t, transports[1].Stats().Received, uint64(1))
}

func TestDrainingRefusesNewSends(t *testing.T) {
	reg := action.NewRegistry()
	transports := newMeshForTest(t, 2, reg)
	transports[0].SetDraining(true)
	err := transports[0].Send(1, action.Envelope{ActionID: "x"})
	require.Error(t, err)
}
