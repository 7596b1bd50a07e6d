// Command pingbench runs the ping round-trip scenario of spec.md §8:
// rank 0 issues a fixed number of synchronous calls to a trivial action
// on rank 1 and reports the measured throughput and the transport's
// final message counters.
package main

import (
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/bootstrap"
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
)

var pingAction = action.Register("pingbench.ping", func(x uint8) (uint8, error) {
	return x, nil
})

var iterations = flag.Int("n", 10000, "number of synchronous round trips to rank 1")

func main() {
	flag.Parse()
	bootstrap.Main(func(c *callp.Caller) int {
		if c.Size() < 2 {
			log.Fatal("pingbench: needs at least 2 peers, see spec.md §8 scenario 1")
		}
		start := time.Now()
		for i := 0; i < *iterations; i++ {
			v, err := callp.Sync(c, 1, pingAction, 42)
			if err != nil {
				log.WithError(err).Fatal("pingbench: round trip failed")
			}
			if v != 42 {
				log.WithField("got", v).Fatal("pingbench: ping did not echo its argument")
			}
		}
		elapsed := time.Since(start)
		stats := c.Stats()
		fmt.Printf("pingbench: %d round trips in %s (%.1f/s)\n", *iterations, elapsed, float64(*iterations)/elapsed.Seconds())
		fmt.Printf("pingbench: transport stats sent=%d received=%d\n", stats.Sent, stats.Received)
		return 0
	})
}
