package world

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/google/uuid"

	"planetforge/internal/config"
)

// WorldMetadata identifies a persisted world and carries everything needed to
// rebuild its generator deterministically.
type WorldMetadata struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Seed         int64                  `json:"seed"`
	SizeChunks   int                    `json:"sizeChunks"`
	HeightChunks int                    `json:"heightChunks"`
	PlanetSize   float64                `json:"planetSize"`
	CreatedAt    time.Time              `json:"createdAt"`
	WorldGen     *config.WorldGenConfig `json:"worldGen"`
}

// NewWorldMetadata stamps fresh metadata for a planet about to be baked for
// the first time.
func NewWorldMetadata(cfg *config.Config, gen *config.WorldGenConfig) *WorldMetadata {
	return &WorldMetadata{
		ID:           uuid.New(),
		Name:         cfg.Planet.Name,
		Seed:         gen.Seed,
		SizeChunks:   cfg.Planet.SizeChunks,
		HeightChunks: cfg.Planet.HeightChunks,
		PlanetSize:   gen.PlanetSize,
		CreatedAt:    time.Now().UTC(),
		WorldGen:     gen,
	}
}

const metadataKey = "meta/world"

// DB persists chunk payloads and world metadata in a LevelDB database.
type DB struct {
	ldb *leveldb.DB
}

// OpenDB opens (or creates) the world database under dir.
func OpenDB(dir string) (*DB, error) {
	ldb, err := leveldb.OpenFile(dir, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("open world db: %w", err)
	}
	return &DB{ldb: ldb}, nil
}

func chunkKey(pos ChunkPos) []byte {
	key := make([]byte, 6+12)
	copy(key, "chunk/")
	binary.LittleEndian.PutUint32(key[6:], uint32(pos.X))
	binary.LittleEndian.PutUint32(key[10:], uint32(pos.Y))
	binary.LittleEndian.PutUint32(key[14:], uint32(pos.Z))
	return key
}

// PutChunk stores an encoded chunk payload.
func (db *DB) PutChunk(pos ChunkPos, payload []byte) error {
	if err := db.ldb.Put(chunkKey(pos), payload, nil); err != nil {
		return fmt.Errorf("put chunk %v: %w", pos, err)
	}
	return nil
}

// Chunk loads an encoded chunk payload. The second return value reports
// whether the chunk exists.
func (db *DB) Chunk(pos ChunkPos) ([]byte, bool, error) {
	payload, err := db.ldb.Get(chunkKey(pos), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get chunk %v: %w", pos, err)
	}
	return payload, true, nil
}

// PutMetadata stores the world metadata, replacing any previous record.
func (db *DB) PutMetadata(meta *WorldMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := db.ldb.Put([]byte(metadataKey), data, nil); err != nil {
		return fmt.Errorf("put metadata: %w", err)
	}
	return nil
}

// Metadata loads the world metadata if present.
func (db *DB) Metadata() (*WorldMetadata, bool, error) {
	data, err := db.ldb.Get([]byte(metadataKey), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get metadata: %w", err)
	}
	meta := &WorldMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, false, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, true, nil
}

func (db *DB) Close() error {
	return db.ldb.Close()
}
