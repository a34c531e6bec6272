package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// Repository defines persistence for the finalized session summary.
type Repository interface {
	Save(ctx context.Context, rows []behavior.SummaryRow) error
	Load(ctx context.Context) ([]behavior.SummaryRow, error)
}

// row is the on-disk JSON shape of one summary line.
type row struct {
	Tag            string  `json:"tag"`
	TotalSeconds   float64 `json:"total_seconds"`
	AlarmTriggered bool    `json:"alarm_triggered"`
}

// ErrNotFound is returned when no report has been written yet.
var ErrNotFound = errors.New("report not found")

// FileRepository persists the session summary to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Save writes the summary rows to disk, preserving their order.
func (r *FileRepository) Save(_ context.Context, rows []behavior.SummaryRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	converted := make([]row, 0, len(rows))
	for _, entry := range rows {
		converted = append(converted, row{
			Tag:            string(entry.Tag),
			TotalSeconds:   entry.TotalSeconds,
			AlarmTriggered: entry.EverTriggered,
		})
	}

	data, err := json.MarshalIndent(converted, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// Load reads the summary rows from disk.
func (r *FileRepository) Load(_ context.Context) ([]behavior.SummaryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var stored []row
	if err = json.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	rows := make([]behavior.SummaryRow, 0, len(stored))
	for _, entry := range stored {
		rows = append(rows, behavior.SummaryRow{
			Tag:           behavior.Tag(entry.Tag),
			TotalSeconds:  entry.TotalSeconds,
			EverTriggered: entry.AlarmTriggered,
		})
	}

	return rows, nil
}
