package meshing

import (
	"context"
	"sync"
)

// ChunkJob is a request to build triangles [First, First+Count) of a mesh.
type ChunkJob struct {
	Index int
	First int
	Count int
	// Result channel - will be sent the result when done
	ResultChan chan ChunkResult
}

// ChunkResult is the outcome of one ChunkJob.
type ChunkResult struct {
	Index int
	Mesh  *MeshData
	Error error
}

// ChunkBuilder builds the mesh for one job.
type ChunkBuilder func(job ChunkJob) (*MeshData, error)

// WorkerPool manages goroutines for chunk building
type WorkerPool struct {
	jobQueue chan ChunkJob
	workers  int
	build    ChunkBuilder
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a pool whose workers run build. The pool stops when
// parent is cancelled or Shutdown is called.
func NewWorkerPool(parent context.Context, workers int, queueSize int, build ChunkBuilder) *WorkerPool {
	ctx, cancel := context.WithCancel(parent)
	if workers < 1 {
		workers = 1
	}

	pool := &WorkerPool{
		jobQueue: make(chan ChunkJob, queueSize),
		workers:  workers,
		build:    build,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob queues a job without blocking.
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job ChunkJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking blocks until the job is queued or the pool stops.
func (p *WorkerPool) SubmitJobBlocking(job ChunkJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			md, err := p.build(job)
			result := ChunkResult{Index: job.Index, Mesh: md, Error: err}

			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}
