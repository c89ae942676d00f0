package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulomunizdev/sqlhunter/internal/probe"
)

// job is a single probe task.
type job struct {
	link string
}

// workerPool runs probes with a cap on in-flight requests.
type workerPool struct {
	workers int
	jobs    chan job
	results chan probe.Result
	wg      sync.WaitGroup
}

// newWorkerPool creates a pool with the given number of workers.
// The jobs channel is buffered at workers*2 to allow some pipelining.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	return &workerPool{
		workers: workers,
		jobs:    make(chan job, workers*2),
		results: make(chan probe.Result, workers*2),
	}
}

// start launches all worker goroutines. onStart is called before each probe.
func (p *workerPool) start(ctx context.Context, prober *probe.Prober, logger *slog.Logger, onStart func(string)) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, prober, logger, onStart)
	}
}

func (p *workerPool) worker(ctx context.Context, prober *probe.Prober, logger *slog.Logger, onStart func(string)) {
	defer p.wg.Done()

	for j := range p.jobs {
		if ctx.Err() != nil {
			continue
		}
		p.results <- p.run(ctx, prober, logger, onStart, j)
	}
}

// run probes one link. A panic is logged and turned into a NotVulnerable
// result so one bad candidate does not crash the pool.
func (p *workerPool) run(ctx context.Context, prober *probe.Prober, logger *slog.Logger, onStart func(string), j job) (res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker recovered from panic",
				"url", j.link,
				"panic", fmt.Sprintf("%v", r),
			)
			res = probe.Result{URL: j.link, Verdict: probe.NotVulnerable, Err: fmt.Errorf("probe panic: %v", r)}
		}
	}()
	if onStart != nil {
		onStart(j.link)
	}
	return prober.Probe(ctx, j.link)
}

// submit queues every link in order, then closes the jobs channel. It is
// meant to run in its own goroutine while results are consumed.
func (p *workerPool) submit(links []string) {
	for _, l := range links {
		p.jobs <- job{link: l}
	}
	close(p.jobs)
}

// wait blocks until every worker is done, then closes the results channel.
func (p *workerPool) wait() {
	p.wg.Wait()
	close(p.results)
}
