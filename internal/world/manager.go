package world

import (
	"container/heap"
	"context"
	"log"
	"sync"
)

// Generator bakes the voxel contents of a chunk. Implementations must be
// safe for concurrent use; the manager calls BakeChunk from several workers.
type Generator interface {
	BakeChunk(pos ChunkPos) *ChunkStorage
}

// BakeResult is delivered for every completed bake.
type BakeResult struct {
	Pos      ChunkPos
	Storage  *ChunkStorage
	Revision uint32
	Changed  bool
}

type bakeRequest struct {
	pos      ChunkPos
	distance float64
	seq      uint64
}

// bakeQueue orders pending requests by viewer distance, closest first, with
// submission order breaking ties so equal-distance requests stay FIFO.
type bakeQueue []bakeRequest

func (q bakeQueue) Len() int { return len(q) }
func (q bakeQueue) Less(i, j int) bool {
	if q[i].distance != q[j].distance {
		return q[i].distance < q[j].distance
	}
	return q[i].seq < q[j].seq
}
func (q bakeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *bakeQueue) Push(x any)   { *q = append(*q, x.(bakeRequest)) }
func (q *bakeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Manager owns the baked chunk state. A fixed pool of workers drains a
// distance-priority queue; once started a bake always runs to completion,
// there is no per-chunk cancellation.
type Manager struct {
	generator Generator
	store     *PayloadStore
	workers   int
	queueCap  int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   bakeQueue
	pending map[ChunkPos]struct{}
	chunks  map[ChunkPos]*ChunkStorage
	seq     uint64
	closed  bool

	results chan BakeResult
	wg      sync.WaitGroup
}

// NewManager creates a manager with the given worker pool size and pending
// queue capacity.
func NewManager(generator Generator, store *PayloadStore, workers, queueSize int) *Manager {
	if workers <= 0 {
		workers = 6
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	m := &Manager{
		generator: generator,
		store:     store,
		workers:   workers,
		queueCap:  queueSize,
		pending:   make(map[ChunkPos]struct{}),
		chunks:    make(map[ChunkPos]*ChunkStorage),
		results:   make(chan BakeResult, queueSize),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Start launches the worker pool. Workers stop when ctx is cancelled and the
// queue is empty, or when Close is called.
func (m *Manager) Start(ctx context.Context) {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	go func() {
		<-ctx.Done()
		m.Close()
	}()
}

// Request enqueues a chunk bake with the given viewer distance as priority.
// It reports whether the request was accepted: duplicates of a chunk already
// pending and requests past the queue capacity are dropped rather than
// blocking the caller.
func (m *Manager) Request(pos ChunkPos, distance float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	if _, ok := m.pending[pos]; ok {
		return false
	}
	if len(m.queue) >= m.queueCap {
		return false
	}

	m.seq++
	m.pending[pos] = struct{}{}
	heap.Push(&m.queue, bakeRequest{pos: pos, distance: distance, seq: m.seq})
	m.cond.Signal()
	return true
}

// Chunk returns the baked chunk for pos if one has completed.
func (m *Manager) Chunk(pos ChunkPos) (*ChunkStorage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.chunks[pos]
	return ch, ok
}

// Poll returns a completed bake result without blocking.
func (m *Manager) Poll() (BakeResult, bool) {
	select {
	case res := <-m.results:
		return res, true
	default:
		return BakeResult{}, false
	}
}

// Results exposes the completion channel for callers that prefer to block.
func (m *Manager) Results() <-chan BakeResult {
	return m.results
}

func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if m.closed && len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		req := heap.Pop(&m.queue).(bakeRequest)
		m.mu.Unlock()

		storage := m.generator.BakeChunk(req.pos)

		var revision uint32
		changed := true
		if m.store != nil {
			payload, err := MarshalChunk(storage)
			if err != nil {
				log.Printf("world: encode chunk %v: %v", req.pos, err)
			} else {
				revision, changed = m.store.Put(req.pos, payload)
			}
		}

		m.mu.Lock()
		m.chunks[req.pos] = storage
		delete(m.pending, req.pos)
		m.mu.Unlock()

		result := BakeResult{Pos: req.pos, Storage: storage, Revision: revision, Changed: changed}
		select {
		case m.results <- result:
		default:
			log.Printf("world: result channel full, dropping notification for %v", req.pos)
		}
	}
}

// Close stops accepting requests, waits for in-flight bakes to finish and
// flushes the payload store.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	m.wg.Wait()
	if m.store != nil {
		m.store.Close()
	}
}
