package vecindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

const (
	// VectorsFile is the binary vector blob artifact name.
	VectorsFile = "vectors.bin"
	// MetaFile is the SQLite metadata table artifact name.
	MetaFile = "meta.db"

	// FormatVersion tracks the persisted index layout. Loads reject a
	// different major version.
	FormatVersion = "1.0.0"

	// blobMagic marks the head of a vector blob ("CNVX").
	blobMagic = uint32(0x434E5658)
)

const metaSchema = `
CREATE TABLE IF NOT EXISTS index_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY,
    source TEXT NOT NULL,
    start_offset INTEGER NOT NULL,
    end_offset INTEGER NOT NULL,
    content TEXT NOT NULL
);
`

// Save persists the index to a named location as two co-located
// artifacts: the vector blob and the metadata table. The write is atomic
// from the caller's perspective: everything goes to a temporary location
// first and is swapped in only on success, so a failed save leaves any
// previous on-disk index untouched.
func Save(ctx context.Context, idx *Index, location string) error {
	tmp := location + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clear temporary location: %w", err)
	}
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return fmt.Errorf("create temporary location: %w", err)
	}

	if err := writeArtifacts(ctx, idx, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	// Swap: replace any previous index in one rename
	if err := os.RemoveAll(location); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("remove previous index: %w", err)
	}
	if err := os.Rename(tmp, location); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("publish index: %w", err)
	}

	return nil
}

func writeArtifacts(ctx context.Context, idx *Index, dir string) error {
	if err := writeVectorBlob(idx, filepath.Join(dir, VectorsFile)); err != nil {
		return fmt.Errorf("write vector blob: %w", err)
	}
	if err := writeMetaTable(ctx, idx, filepath.Join(dir, MetaFile)); err != nil {
		return fmt.Errorf("write metadata table: %w", err)
	}
	return nil
}

// writeVectorBlob serializes all vectors as little-endian float32 behind
// a fixed header of magic, dimension, and count.
func writeVectorBlob(idx *Index, path string) error {
	blob := make([]byte, 12+len(idx.vectors)*idx.dimension*4)
	binary.LittleEndian.PutUint32(blob[0:], blobMagic)
	binary.LittleEndian.PutUint32(blob[4:], uint32(idx.dimension))
	binary.LittleEndian.PutUint32(blob[8:], uint32(len(idx.vectors)))

	off := 12
	for _, vector := range idx.vectors {
		for _, v := range vector {
			binary.LittleEndian.PutUint32(blob[off:], math.Float32bits(v))
			off += 4
		}
	}

	return os.WriteFile(path, blob, 0644)
}

// writeMetaTable writes the chunk metadata rows, id-aligned with the
// blob's vector order, plus the format version and dimension.
func writeMetaTable(ctx context.Context, idx *Index, path string) error {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return fmt.Errorf("open metadata database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, metaSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	metaStmt := `INSERT INTO index_meta (key, value) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, metaStmt, "format_version", FormatVersion); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, metaStmt, "dimension", strconv.Itoa(idx.dimension)); err != nil {
		return err
	}

	chunkStmt := `INSERT INTO chunks (id, source, start_offset, end_offset, content) VALUES (?, ?, ?, ?, ?)`
	for i, c := range idx.chunks {
		if _, err := tx.ExecContext(ctx, chunkStmt, i+1, c.Source, c.Start, c.End, c.Text); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load deserializes a previously persisted index into a queryable
// in-memory handle. Both artifacts must be present; a missing artifact
// is ErrIndexNotFound, a vector/metadata mismatch is ErrIndexCorrupt.
func Load(ctx context.Context, location string) (*Index, error) {
	vectorsPath := filepath.Join(location, VectorsFile)
	metaPath := filepath.Join(location, MetaFile)

	for _, path := range []string{vectorsPath, metaPath} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: missing artifact %s", types.ErrIndexNotFound, path)
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	dim, vectors, err := readVectorBlob(vectorsPath)
	if err != nil {
		return nil, err
	}

	chunks, err := readMetaTable(ctx, metaPath, dim)
	if err != nil {
		return nil, err
	}

	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d vectors but %d metadata rows",
			types.ErrIndexCorrupt, len(vectors), len(chunks))
	}

	return &Index{
		dimension: dim,
		vectors:   vectors,
		chunks:    chunks,
	}, nil
}

func readVectorBlob(path string) (int, [][]float32, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("read vector blob: %w", err)
	}

	if len(blob) < 12 || binary.LittleEndian.Uint32(blob[0:]) != blobMagic {
		return 0, nil, fmt.Errorf("%w: bad vector blob header", types.ErrIndexCorrupt)
	}

	dim := int(binary.LittleEndian.Uint32(blob[4:]))
	count := int(binary.LittleEndian.Uint32(blob[8:]))
	if dim <= 0 || count < 0 {
		return 0, nil, fmt.Errorf("%w: invalid blob dimensions", types.ErrIndexCorrupt)
	}
	if len(blob) != 12+count*dim*4 {
		return 0, nil, fmt.Errorf("%w: blob size %d does not match %d vectors of dimension %d",
			types.ErrIndexCorrupt, len(blob), count, dim)
	}

	vectors := make([][]float32, count)
	off := 12
	for i := range vectors {
		vector := make([]float32, dim)
		for j := range vector {
			vector[j] = math.Float32frombits(binary.LittleEndian.Uint32(blob[off:]))
			off += 4
		}
		vectors[i] = vector
	}

	return dim, vectors, nil
}

func readMetaTable(ctx context.Context, path string, dim int) ([]types.Chunk, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open metadata database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := checkFormatVersion(ctx, db); err != nil {
		return nil, err
	}

	var storedDim string
	err = db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = 'dimension'`).Scan(&storedDim)
	if err != nil {
		return nil, fmt.Errorf("%w: missing dimension metadata", types.ErrIndexCorrupt)
	}
	if d, err := strconv.Atoi(storedDim); err != nil || d != dim {
		return nil, fmt.Errorf("%w: metadata dimension %q does not match blob dimension %d",
			types.ErrIndexCorrupt, storedDim, dim)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT source, start_offset, end_offset, content FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query chunks: %v", types.ErrIndexCorrupt, err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []types.Chunk
	for rows.Next() {
		var c types.Chunk
		if err := rows.Scan(&c.Source, &c.Start, &c.End, &c.Text); err != nil {
			return nil, fmt.Errorf("%w: scan chunk row: %v", types.ErrIndexCorrupt, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chunk rows: %w", err)
	}

	return chunks, nil
}

func checkFormatVersion(ctx context.Context, db *sql.DB) error {
	var stored string
	err := db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = 'format_version'`).Scan(&stored)
	if err != nil {
		return fmt.Errorf("%w: missing format version", types.ErrIndexCorrupt)
	}

	storedVersion, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("%w: unparseable format version %q", types.ErrIndexCorrupt, stored)
	}

	currentVersion := semver.MustParse(FormatVersion)
	if storedVersion.Major() != currentVersion.Major() {
		return fmt.Errorf("%w: format version %s incompatible with %s",
			types.ErrIndexCorrupt, stored, FormatVersion)
	}

	return nil
}
