package hull3d

import "runtime"

// forkSlack oversubscribes the spawn semaphore relative to the parallelism
// target. Parents block in joins while their spawned subtasks run, so without
// slack the tree would frequently degrade to inline execution with idle CPUs.
const forkSlack = 4

// Option is a functional option for configuring a Build call.
type Option func(*config)

type config struct {
	parallelism int
}

func defaultConfig() *config {
	return &config{
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// WithParallelism sets the target number of concurrently running tasks.
// Values below 1 are treated as 1, which still overlaps task execution but
// keeps at most one spawned goroutine batch in flight at a time.
func WithParallelism(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.parallelism = n
	}
}
