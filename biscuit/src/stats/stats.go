// Package stats is the kernel's metrics surface: a handful of
// Prometheus counters and gauges tracking process/thread lifecycle,
// page faults, and mutex contention, scraped over HTTP by whatever
// embeds this kernel (weenixctl's --metrics flag). Replaces the
// teacher's own stats.go, whose Counter_t/Cycles_t scheme compiled down
// to no-ops (const Stats = false) and leaned on runtime.Rdtsc — a
// method that does not exist on the stock Go runtime this module builds
// against (the teacher's biscuit ran its own patched runtime on bare
// metal; this kernel runs as an ordinary Go program, spec.md §1).
package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProcessesCreated counts every proc.Create call (spec.md §4.2).
	ProcessesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weenix_processes_created_total",
		Help: "Total processes created since boot.",
	})

	// ProcessesExited counts every proc.Cleanup call, labeled by whether
	// the process was killed or exited on its own.
	ProcessesExited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weenix_processes_exited_total",
		Help: "Total processes that have run proc_cleanup, by reason.",
	}, []string{"reason"})

	// LiveProcesses tracks the current size of the process table.
	LiveProcesses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "weenix_processes_live",
		Help: "Number of processes currently in the pid table (including zombies).",
	})

	// PageFaults counts vm.PageFault calls, labeled by outcome.
	PageFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weenix_page_faults_total",
		Help: "Total page faults handled, by outcome.",
	}, []string{"outcome"})

	// MutexContentions counts sched.Mutex.Lock calls that found the
	// mutex already held and had to block.
	MutexContentions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weenix_mutex_contentions_total",
		Help: "Total sched.Mutex.Lock calls that blocked on an already-held mutex.",
	})

	// ThreadsCreated counts every sched.NewThread call.
	ThreadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weenix_threads_created_total",
		Help: "Total kernel threads created since boot.",
	})
)

// Handler returns the HTTP handler weenixctl mounts at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
