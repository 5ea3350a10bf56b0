package world

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPayloadStoreRevisions(t *testing.T) {
	store := NewPayloadStore(nil, "", 8)
	defer store.Close()

	pos := ChunkPos{X: 1, Y: 0, Z: -2}
	payload := []byte("payload-a")

	rev, changed := store.Put(pos, payload)
	if rev != 1 || !changed {
		t.Fatalf("first put: rev=%d changed=%v, want 1 true", rev, changed)
	}

	// Identical content must not advance the revision.
	rev, changed = store.Put(pos, []byte("payload-a"))
	if rev != 1 || changed {
		t.Fatalf("duplicate put: rev=%d changed=%v, want 1 false", rev, changed)
	}

	rev, changed = store.Put(pos, []byte("payload-b"))
	if rev != 2 || !changed {
		t.Fatalf("changed put: rev=%d changed=%v, want 2 true", rev, changed)
	}

	got, gotRev, ok := store.Get(pos)
	if !ok || gotRev != 2 || string(got) != "payload-b" {
		t.Fatalf("get = %q rev %d ok %v", got, gotRev, ok)
	}

	if store.Revision(ChunkPos{X: 9, Y: 9, Z: 9}) != 0 {
		t.Fatalf("unknown chunk must report revision 0")
	}
}

func TestPayloadStoreCopiesInput(t *testing.T) {
	store := NewPayloadStore(nil, "", 8)
	defer store.Close()

	pos := ChunkPos{}
	payload := []byte{1, 2, 3}
	store.Put(pos, payload)
	payload[0] = 99

	got, _, _ := store.Get(pos)
	if got[0] != 1 {
		t.Fatalf("store aliases caller buffer")
	}
}

func TestPayloadStoreDebugDump(t *testing.T) {
	dir := t.TempDir()
	store := NewPayloadStore(nil, dir, 8)
	defer store.Close()

	pos := ChunkPos{X: 3, Y: 1, Z: -4}
	store.Put(pos, []byte("first"))
	store.Put(pos, []byte("second"))

	for _, name := range []string{"chunk_3_1_-4_rev1.bin", "chunk_3_1_-4_rev2.bin"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}
