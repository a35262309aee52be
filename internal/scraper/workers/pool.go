package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
	"jobsift-utils/internal/scraper"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"
)

// JobResult represents the result of an extraction job
type JobResult struct {
	Result    *models.ExtractionResult
	Engine    string
	UsedLLM   bool
	Error     error
	RequestID string
	Duration  time.Duration
}

// ExtractionJob represents a job to be processed by workers. URL is the
// canonical form that gets fetched; SourceURL is the caller's original
// string, echoed back in the result.
type ExtractionJob struct {
	ID         string
	URL        string
	SourceURL  string
	Format     models.OutputFormat
	ResultChan chan JobResult
	Context    context.Context
	CreatedAt  time.Time
}

// Worker represents a single worker goroutine
type Worker struct {
	ID       int
	JobChan  chan ExtractionJob
	QuitChan chan bool
	Pool     *WorkerPool
	logger   types.Logger
}

// WorkerPool manages multiple worker goroutines and the job queue
type WorkerPool struct {
	config      *config.Config
	workers     []*Worker
	jobQueue    chan ExtractionJob
	dispatcher  *Dispatcher
	rateLimiter *RateLimiter
	engine      scraper.Engine
	llmManager  *llm.Manager
	logger      types.Logger
	mu          sync.RWMutex
	running     bool
	stats       *poolCounters
}

// poolCounters tracks worker pool statistics behind a mutex
type poolCounters struct {
	mu                  sync.RWMutex
	jobsQueued          int64
	jobsProcessed       int64
	jobsSuccessful      int64
	jobsFailed          int64
	totalProcessingTime time.Duration
}

// PoolStatsData is a point-in-time snapshot of pool statistics
type PoolStatsData struct {
	JobsQueued            int64         `json:"jobs_queued"`
	JobsProcessed         int64         `json:"jobs_processed"`
	JobsSuccessful        int64         `json:"jobs_successful"`
	JobsFailed            int64         `json:"jobs_failed"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
}

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(cfg *config.Config, engine scraper.Engine, llmManager *llm.Manager) *WorkerPool {
	logger := logging.GetGlobalLogger()

	pool := &WorkerPool{
		config:      cfg,
		jobQueue:    make(chan ExtractionJob, cfg.Workers.QueueSize),
		rateLimiter: NewRateLimiter(cfg),
		engine:      engine,
		llmManager:  llmManager,
		logger:      logger,
		stats:       &poolCounters{},
	}

	pool.workers = make([]*Worker, cfg.Workers.PoolSize)
	for i := 0; i < cfg.Workers.PoolSize; i++ {
		worker := &Worker{
			ID:       i + 1,
			JobChan:  make(chan ExtractionJob),
			QuitChan: make(chan bool),
			Pool:     pool,
			logger:   logger.WithField("worker_id", i+1),
		}
		pool.workers[i] = worker
	}

	pool.dispatcher = NewDispatcher(pool.jobQueue, pool.workers)

	logger.Info("Worker pool initialized", map[string]interface{}{
		"pool_size": cfg.Workers.PoolSize,
		"engine":    engine.Name(),
	})
	return pool
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	wp.logger.Info("Starting worker pool", nil)

	wp.dispatcher.Start()

	for _, worker := range wp.workers {
		go worker.Start()
	}

	wp.running = true
	wp.logger.Info("Worker pool started", map[string]interface{}{
		"workers": len(wp.workers),
	})
	return nil
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return nil
	}

	wp.logger.Info("Stopping worker pool", nil)

	wp.dispatcher.Stop()

	for _, worker := range wp.workers {
		worker.Stop()
	}

	close(wp.jobQueue)

	wp.running = false
	wp.logger.Info("Worker pool stopped", nil)
	return nil
}

// SubmitExtraction submits an extraction job and waits for its result.
// canonicalURL is fetched; sourceURL is echoed back in the result.
func (wp *WorkerPool) SubmitExtraction(ctx context.Context, canonicalURL, sourceURL string, format models.OutputFormat) (*JobResult, error) {
	if !wp.IsRunning() {
		return nil, fmt.Errorf("worker pool is not running")
	}

	domain := extractDomain(canonicalURL)
	if !wp.rateLimiter.Allow(domain) {
		return nil, utils.NewTooManyRequestsError(fmt.Sprintf("requests to %s are currently refused", domain))
	}

	job := ExtractionJob{
		ID:         utils.GenerateRequestID(),
		URL:        canonicalURL,
		SourceURL:  sourceURL,
		Format:     format,
		ResultChan: make(chan JobResult, 1),
		Context:    ctx,
		CreatedAt:  time.Now(),
	}

	wp.stats.mu.Lock()
	wp.stats.jobsQueued++
	wp.stats.mu.Unlock()

	select {
	case wp.jobQueue <- job:
		wp.logger.Debug("Job submitted to queue", map[string]interface{}{
			"job_id": job.ID,
			"url":    canonicalURL,
		})
	case <-time.After(5 * time.Second):
		return nil, utils.NewServiceBusyError("extraction queue is full")
	}

	select {
	case result := <-job.ResultChan:
		return &result, nil
	case <-time.After(wp.config.Workers.Timeout):
		return nil, utils.NewTimeoutError(fmt.Sprintf("extraction timed out after %v", wp.config.Workers.Timeout))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// GetStats returns a snapshot of current pool statistics
func (wp *WorkerPool) GetStats() PoolStatsData {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	stats := PoolStatsData{
		JobsQueued:          wp.stats.jobsQueued,
		JobsProcessed:       wp.stats.jobsProcessed,
		JobsSuccessful:      wp.stats.jobsSuccessful,
		JobsFailed:          wp.stats.jobsFailed,
		TotalProcessingTime: wp.stats.totalProcessingTime,
	}
	if stats.JobsProcessed > 0 {
		stats.AverageProcessingTime = stats.TotalProcessingTime / time.Duration(stats.JobsProcessed)
	}
	return stats
}

// Start starts the worker goroutine
func (w *Worker) Start() {
	w.logger.Debug("Worker started", nil)

	for {
		select {
		case job := <-w.JobChan:
			w.processJob(job)
		case <-w.QuitChan:
			w.logger.Debug("Worker stopping", nil)
			return
		}
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.QuitChan <- true
}

// processJob runs a single extraction job and reports its result
func (w *Worker) processJob(job ExtractionJob) {
	startTime := time.Now()

	w.logger.Debug("Processing job", map[string]interface{}{
		"job_id": job.ID,
		"url":    job.URL,
	})

	w.Pool.stats.mu.Lock()
	w.Pool.stats.jobsProcessed++
	w.Pool.stats.mu.Unlock()

	result := w.executeJob(job)

	processingTime := time.Since(startTime)
	result.Duration = processingTime

	w.Pool.stats.mu.Lock()
	w.Pool.stats.totalProcessingTime += processingTime
	if result.Error != nil {
		w.Pool.stats.jobsFailed++
	} else {
		w.Pool.stats.jobsSuccessful++
	}
	w.Pool.stats.mu.Unlock()

	// Non-blocking send; the client may have given up waiting
	select {
	case job.ResultChan <- result:
		w.logger.Info("Job completed", map[string]interface{}{
			"job_id":          job.ID,
			"worker_id":       w.ID,
			"processing_time": processingTime.String(),
			"success":         result.Error == nil,
		})
	case <-time.After(100 * time.Millisecond):
		w.logger.Debug("Result channel timeout, client may have disconnected", map[string]interface{}{
			"job_id": job.ID,
		})
	}
}

// executeJob runs the fetch and extraction pipeline for a job. The page is
// fetched exactly once; fetch failures go straight back to the caller.
func (w *Worker) executeJob(job ExtractionJob) JobResult {
	result := JobResult{
		RequestID: job.ID,
		Engine:    w.Pool.engine.Name(),
	}

	domain := extractDomain(job.URL)

	content, err := w.Pool.engine.FetchPage(job.Context, job.URL)
	if err != nil {
		w.Pool.rateLimiter.RecordFailure(domain, err)
		result.Error = err
		return result
	}
	w.Pool.rateLimiter.RecordSuccess(domain)

	extraction, err := w.Pool.llmManager.ExtractJob(job.Context, content, job.SourceURL, job.Format)
	if err != nil {
		result.Error = err
		return result
	}

	result.Result = extraction
	result.UsedLLM = job.Format == models.OutputFormatStructured
	return result
}

// extractDomain extracts the domain from a URL for rate limiting
func extractDomain(url string) string {
	return extractDomainFromURL(url)
}
