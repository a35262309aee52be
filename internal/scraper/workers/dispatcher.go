package workers

import (
	"sync"
	"time"

	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
)

// Dispatcher distributes queued jobs to workers round-robin
type Dispatcher struct {
	jobQueue chan ExtractionJob
	workers  []*Worker
	quit     chan bool
	logger   types.Logger
	mu       sync.RWMutex
	running  bool
}

// NewDispatcher creates a new job dispatcher
func NewDispatcher(jobQueue chan ExtractionJob, workers []*Worker) *Dispatcher {
	return &Dispatcher{
		jobQueue: jobQueue,
		workers:  workers,
		quit:     make(chan bool),
		logger:   logging.GetGlobalLogger().WithField("component", "dispatcher"),
	}
}

// Start starts the dispatcher
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	go d.dispatch()

	d.running = true
	d.logger.Info("Job dispatcher started", map[string]interface{}{
		"workers": len(d.workers),
	})
}

// Stop stops the dispatcher
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	d.quit <- true

	d.running = false
	d.logger.Info("Job dispatcher stopped", nil)
}

// dispatch assigns each queued job to exactly one worker
func (d *Dispatcher) dispatch() {
	workerIndex := 0

	for {
		select {
		case job := <-d.jobQueue:
			assigned := false
			for !assigned {
				for range d.workers {
					worker := d.workers[workerIndex]
					workerIndex = (workerIndex + 1) % len(d.workers)
					select {
					case worker.JobChan <- job:
						assigned = true
					default:
					}
					if assigned {
						break
					}
				}
				if !assigned {
					// All workers busy; back off briefly before rescanning
					time.Sleep(10 * time.Millisecond)
				}
			}

		case <-d.quit:
			return
		}
	}
}

// IsRunning returns true if the dispatcher is running
func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}
