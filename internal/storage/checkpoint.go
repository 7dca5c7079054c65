package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sats-budget/internal/common"
)

// CheckpointManager snapshots the budget database into a checkpoints directory beside it.
type CheckpointManager struct {
	db             *sql.DB
	dbPath         string
	checkpointsDir string
}

// CheckpointMetadata is written next to each snapshot as <id>.meta.json.
type CheckpointMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// CheckpointInfo represents information about a checkpoint for listing.
type CheckpointInfo struct {
	CreatedAt     time.Time
	ID            string
	Description   string
	FileSize      int64
	Transactions  int
	Categories    int
	Allocations   int
	Groups        int
	SchemaVersion int
	IsAuto        bool
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id")
)

// maxAutoCheckpoints is how many automatic snapshots are retained.
const maxAutoCheckpoints = 5

var countedTables = map[string]string{
	"transactions":    "SELECT COUNT(*) FROM transactions",
	"categories":      "SELECT COUNT(*) FROM categories",
	"allocations":     "SELECT COUNT(*) FROM allocations",
	"category_groups": "SELECT COUNT(*) FROM category_groups",
}

// NewCheckpointManager creates a new checkpoint manager.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	if dbPath == ":memory:" {
		return nil, errors.New("checkpoints require a file-backed database")
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	checkpointsDir := filepath.Join(filepath.Dir(absPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		dbPath:         absPath,
		checkpointsDir: checkpointsDir,
	}, nil
}

// Create snapshots the database under tag. An empty tag gets a timestamped name.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath := cm.snapshotPath(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := cm.collectRowCounts(ctx)

	if err := cm.backupDatabase(ctx, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	metadata := CheckpointMetadata{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
	}

	if err := cm.saveMetadata(metadata); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := cm.storeMetadataInDB(ctx, metadata); err != nil {
		slog.Warn("failed to store checkpoint metadata in database", "error", err)
	}

	slog.Info("created checkpoint", "id", tag, "size", metadata.FileSize)
	info := metadata.info()
	return &info, nil
}

// AutoCheckpoint snapshots the database before a destructive operation and prunes old automatic snapshots.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, operation string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, time.Now().Format("2006-01-02-150405.000000"))
	info, err := cm.Create(ctx, tag, fmt.Sprintf("Automatic checkpoint before %s", operation))
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	metadata, err := cm.loadMetadata(tag)
	if err == nil {
		metadata.IsAuto = true
		if saveErr := cm.saveMetadata(*metadata); saveErr != nil {
			slog.Error("failed to mark checkpoint as automatic", "error", saveErr)
		}
		if dbErr := cm.storeMetadataInDB(ctx, *metadata); dbErr != nil {
			slog.Debug("failed to update checkpoint metadata in database", "error", dbErr)
		}
		info.IsAuto = true
	}

	if err := cm.pruneAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}
	return info, nil
}

// List returns all checkpoints, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		metadata, err := cm.loadMetadata(strings.TrimSuffix(entry.Name(), ".meta.json"))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, metadata.info())
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// Get returns a single checkpoint's information.
func (cm *CheckpointManager) Get(_ context.Context, id string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(id); err != nil {
		return nil, err
	}
	metadata, err := cm.loadMetadata(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	info := metadata.info()
	return &info, nil
}

// Restore replaces the live database with a checkpoint. It closes the
// database handle the manager was built from; the caller must reopen storage.
func (cm *CheckpointManager) Restore(_ context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(checkpointPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			common.LogError(restoreErr, "failed to put original database back after restore failure",
				common.Fields{"checkpoint": id, "backup": backupPath})
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("restored checkpoint", "id", id)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(cm.metadataPath(id)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", id)
	}
	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove checkpoint metadata from database", "error", err, "id", id)
	}
	return nil
}

func (cm *CheckpointManager) pruneAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoCheckpoints {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				slog.Debug("failed to delete old auto-checkpoint", "error", err, "id", cp.ID)
			}
		}
	}
	return nil
}

func (cm *CheckpointManager) snapshotPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".meta.json")
}

func (cm *CheckpointManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(countedTables))
	for table, query := range countedTables {
		var count int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			// Older schemas may lack the table.
			count = 0
		}
		counts[table] = count
	}
	return counts
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path: contains forbidden characters")
	}
	// #nosec G201 - destPath is validated above
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(cm.dbPath, destPath)
	}
	return nil
}

func (cm *CheckpointManager) saveMetadata(metadata CheckpointMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	path := cm.metadataPath(metadata.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (cm *CheckpointManager) loadMetadata(id string) (*CheckpointMetadata, error) {
	// #nosec G304 - id is validated by every caller
	data, err := os.ReadFile(cm.metadataPath(id))
	if err != nil {
		return nil, err
	}

	var metadata CheckpointMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (cm *CheckpointManager) storeMetadataInDB(ctx context.Context, metadata CheckpointMetadata) error {
	rowCountsJSON, err := json.Marshal(metadata.RowCounts)
	if err != nil {
		return err
	}

	_, err = cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadata.ID,
		metadata.CreatedAt,
		metadata.Description,
		metadata.FileSize,
		string(rowCountsJSON),
		metadata.SchemaVersion,
		metadata.IsAuto,
	)
	return err
}

func (m CheckpointMetadata) info() CheckpointInfo {
	return CheckpointInfo{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		FileSize:      m.FileSize,
		Transactions:  m.RowCounts["transactions"],
		Categories:    m.RowCounts["categories"],
		Allocations:   m.RowCounts["allocations"],
		Groups:        m.RowCounts["category_groups"],
		SchemaVersion: m.SchemaVersion,
		IsAuto:        m.IsAuto,
	}
}

func validateCheckpointID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths are built from the configured database location
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmpDst := dst + ".tmp"
	// #nosec G304
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}
	return os.Rename(tmpDst, dst)
}
