package world

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// PayloadStore keeps the latest encoded payload per chunk in memory with a
// monotonically increasing revision, deduplicated by content hash. Writes are
// mirrored to the database through a bounded queue; persistence failures are
// logged and never block or fail a bake.
type PayloadStore struct {
	db       *DB
	debugDir string

	mu      sync.RWMutex
	entries map[ChunkPos]*payloadEntry

	queue chan persistRequest
	wg    sync.WaitGroup
	once  sync.Once
}

type payloadEntry struct {
	payload  []byte
	hash     uint64
	revision uint32
}

type persistRequest struct {
	pos     ChunkPos
	payload []byte
}

// NewPayloadStore creates a store. db may be nil to keep payloads in memory
// only; debugDir may be empty to disable payload capture.
func NewPayloadStore(db *DB, debugDir string, queueSize int) *PayloadStore {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &PayloadStore{
		db:       db,
		debugDir: debugDir,
		entries:  make(map[ChunkPos]*payloadEntry),
		queue:    make(chan persistRequest, queueSize),
	}
	if db != nil {
		s.wg.Add(1)
		go s.persistLoop()
	}
	return s
}

// Put records a payload for a chunk. The revision advances only when the
// content actually changed; unchanged payloads return the current revision
// with changed=false and trigger no persistence.
func (s *PayloadStore) Put(pos ChunkPos, payload []byte) (uint32, bool) {
	hash := xxhash.Sum64(payload)

	s.mu.Lock()
	entry, ok := s.entries[pos]
	if ok && entry.hash == hash {
		revision := entry.revision
		s.mu.Unlock()
		return revision, false
	}

	revision := uint32(1)
	if ok {
		revision = entry.revision + 1
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.entries[pos] = &payloadEntry{payload: stored, hash: hash, revision: revision}
	s.mu.Unlock()

	if s.debugDir != "" {
		s.dumpPayload(pos, revision, stored)
	}

	if s.db != nil {
		select {
		case s.queue <- persistRequest{pos: pos, payload: stored}:
		default:
			log.Printf("payload store: persistence queue full, dropping chunk %v rev %d", pos, revision)
		}
	}

	return revision, true
}

// Get returns the stored payload and revision for a chunk.
func (s *PayloadStore) Get(pos ChunkPos) ([]byte, uint32, bool) {
	s.mu.RLock()
	entry, ok := s.entries[pos]
	s.mu.RUnlock()
	if !ok {
		return nil, 0, false
	}
	return entry.payload, entry.revision, true
}

// Revision returns the current revision for a chunk, zero when unknown.
func (s *PayloadStore) Revision(pos ChunkPos) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[pos]; ok {
		return entry.revision
	}
	return 0
}

// Len returns the number of chunks with a stored payload.
func (s *PayloadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *PayloadStore) persistLoop() {
	defer s.wg.Done()
	for req := range s.queue {
		if err := s.db.PutChunk(req.pos, req.payload); err != nil {
			log.Printf("payload store: persist chunk %v: %v", req.pos, err)
		}
	}
}

func (s *PayloadStore) dumpPayload(pos ChunkPos, revision uint32, payload []byte) {
	if err := os.MkdirAll(s.debugDir, 0o755); err != nil {
		log.Printf("payload store: create debug dir: %v", err)
		return
	}
	name := fmt.Sprintf("chunk_%d_%d_%d_rev%d.bin", pos.X, pos.Y, pos.Z, revision)
	if err := os.WriteFile(filepath.Join(s.debugDir, name), payload, 0o644); err != nil {
		log.Printf("payload store: write debug payload %s: %v", name, err)
	}
}

// Close drains the persistence queue and waits for in-flight writes. The
// underlying database is left open for the owner to close.
func (s *PayloadStore) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}
