package callp

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
	"github.com/nicolagi/rpctree/internal/transport"
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

func newMeshForTest(t *testing.T, size int, reg *action.Registry) []*Caller {
	t.Helper()
	addrs := freeAddrs(t, size)
	pools := make([]*rthread.Pool, size)
	callers := make([]*Caller, size)
	var wg sync.WaitGroup
	wg.Add(size)
	errs := make([]error, size)
	for i := 0; i < size; i++ {
		i := i
		go func() {
			defer wg.Done()
			pools[i] = rthread.NewPool(2)
			tr, err := transport.New(transport.Config{Rank: i, Peers: addrs, ListenNet: "tcp"}, pools[i], reg)
			errs[i] = err
			if err == nil {
				callers[i] = NewCaller(tr, pools[i], reg)
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, p := range pools {
			p.Close()
		}
	})
	return callers
}

func TestSyncLocalShortCircuit(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	double := action.RegisterIn(reg, "callp_test.double", func(n int) (int, error) { return 2 * n, nil })
	callers := newMeshForTest(t, 2, reg)

	result, err := Sync(callers[0], callers[0].Rank(), double, 21)
	require.NoError(t, err)
	require.Equal(t, 42, result)
}

func TestSyncRemote(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	double := action.RegisterIn(reg, "callp_test.double_remote", func(n int) (int, error) { return 2 * n, nil })
	callers := newMeshForTest(t, 2, reg)

	result, err := Sync(callers[0], 1, double, 21)
	require.NoError(t, err)
	require.Equal(t, 42, result)
}

func TestAsyncDeferredDoesNotRunUntilWaited(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	var ran int32
	track := action.RegisterIn(reg, "callp_test.track", func(n int) (int, error) {
		ran++
		return n, nil
	})
	callers := newMeshForTest(t, 1, reg)

	f := Async(callers[0], rthread.LaunchDeferred, 0, track, 7)
	require.Equal(t, int32(0), ran)
	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, int32(1), ran)
}

func TestDetachedRemoteRunsExactlyOnce(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	done := make(chan struct{}, 1)
	notify := action.RegisterIn(reg, "callp_test.notify", func(struct{}) (struct{}, error) {
		done <- struct{}{}
		return struct{}{}, nil
	})
	callers := newMeshForTest(t, 2, reg)

	require.NoError(t, Detached(callers[0], 1, notify, struct{}{}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("detached call never ran on remote rank")
	}
}

func TestBroadcastFlatFanout(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	triple := action.RegisterIn(reg, "callp_test.triple", func(n int) (int, error) { return 3 * n, nil })
	callers := newMeshForTest(t, 3, reg)

	futures := Broadcast(callers[0], []int{0, 1, 2}, triple, 5)
	require.Len(t, futures, 3)
	for _, f := range futures {
		v, err := f.Get()
		require.NoError(t, err)
		require.Equal(t, 15, v)
	}
}

func TestAsyncBroadcastReachesEveryDestination(t *testing.T) {
	defer leaktest.CheckTimeout(t, 3*time.Second)()
	// The forwarding action itself is registered once, process-wide, in
	// action.Default (see broadcast.go), so the mesh under test must use
	// Default too rather than an isolated registry. This test also runs
	// every simulated rank as a goroutine in one process, so the
	// forwarding tree's later hops all end up issued through whichever
	// Caller SetActive installed rather than through each hop's "own"
	// rank; that is a test-harness artifact of simulating a multi-process
	// mesh in one binary; delivery to every destination still holds
	// because the mesh is fully connected.
	reg := action.Default
	var count int32
	mark := action.RegisterIn(reg, "callp_test.mark", func(struct{}) (struct{}, error) {
		atomic.AddInt32(&count, 1)
		return struct{}{}, nil
	})
	callers := newMeshForTest(t, 5, reg)
	SetActive(callers[0])

	require.NoError(t, AsyncBroadcast(callers[0], []int{0, 1, 2, 3, 4}, mark, struct{}{}))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMapReduceSumsInOrder(t *testing.T) {
	defer leaktest.CheckTimeout(t, 2*time.Second)()
	reg := action.NewRegistry()
	square := action.RegisterIn(reg, "callp_test.square", func(n int) (int, error) { return n * n, nil })
	callers := newMeshForTest(t, 3, reg)

	sum, err := MapReduce(callers[0], []int{0, 1, 2}, square, func(dest int) int { return dest + 1 }, 0, func(acc, v int) int { return acc + v })
	require.NoError(t, err)
	require.Equal(t, 1+4+9, sum)
}
