package world

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// stubGenerator fills chunks with a single block derived from the position so
// tests can verify which chunk a result belongs to.
type stubGenerator struct {
	bakes atomic.Int64
}

func (g *stubGenerator) BakeChunk(pos ChunkPos) *ChunkStorage {
	g.bakes.Add(1)
	s := NewChunkStorage()
	if pos.Y == 0 {
		s.Fill(BlockStone)
	}
	return s
}

func TestManagerBakesRequestedChunks(t *testing.T) {
	gen := &stubGenerator{}
	store := NewPayloadStore(nil, "", 16)
	m := NewManager(gen, store, 3, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	requests := []ChunkPos{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 2}}
	for i, pos := range requests {
		m.Request(pos, float64(i))
	}

	deadline := time.After(5 * time.Second)
	seen := make(map[ChunkPos]bool)
	for len(seen) < len(requests) {
		select {
		case res := <-m.Results():
			seen[res.Pos] = true
			if res.Storage == nil {
				t.Fatalf("result for %v has no storage", res.Pos)
			}
			if res.Revision == 0 {
				t.Fatalf("result for %v has no revision", res.Pos)
			}
		case <-deadline:
			t.Fatalf("timed out, baked %d of %d chunks", len(seen), len(requests))
		}
	}

	for _, pos := range requests {
		ch, ok := m.Chunk(pos)
		if !ok {
			t.Fatalf("chunk %v missing after bake", pos)
		}
		wantStone := pos.Y == 0
		if got := ch.Get(0, 0, 0) == BlockStone; got != wantStone {
			t.Fatalf("chunk %v content mismatch", pos)
		}
	}

	if got := gen.bakes.Load(); got != int64(len(requests)) {
		t.Fatalf("generator ran %d times, want %d", got, len(requests))
	}

	m.Close()
}

func TestManagerDeduplicatesPendingRequests(t *testing.T) {
	gen := &stubGenerator{}
	m := NewManager(gen, nil, 1, 16)

	pos := ChunkPos{X: 4, Y: 0, Z: 4}
	m.Request(pos, 1)
	m.Request(pos, 1)
	m.Request(pos, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	select {
	case <-m.Results():
	case <-time.After(5 * time.Second):
		t.Fatalf("bake never completed")
	}

	// Give a duplicate bake a moment to surface if one was queued.
	time.Sleep(50 * time.Millisecond)
	if got := gen.bakes.Load(); got != 1 {
		t.Fatalf("generator ran %d times for one chunk", got)
	}

	m.Close()
}

func TestManagerPollNonBlocking(t *testing.T) {
	m := NewManager(&stubGenerator{}, nil, 1, 4)
	if _, ok := m.Poll(); ok {
		t.Fatalf("poll on idle manager returned a result")
	}
}

func TestManagerPrioritizesCloserChunks(t *testing.T) {
	m := NewManager(&stubGenerator{}, nil, 1, 16)

	// Enqueue far-to-near before any worker runs, then check pop order.
	m.Request(ChunkPos{X: 8, Y: 0, Z: 0}, 8)
	m.Request(ChunkPos{X: 2, Y: 0, Z: 0}, 2)
	m.Request(ChunkPos{X: 5, Y: 0, Z: 0}, 5)

	m.mu.Lock()
	first := m.queue[0]
	m.mu.Unlock()
	if first.distance != 2 {
		t.Fatalf("queue head distance = %v, want 2", first.distance)
	}
}
