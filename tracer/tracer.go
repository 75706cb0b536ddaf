package tracer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/sjson"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/provider"
)

// Tracer persists conversation history snapshots.
type Tracer interface {
	// SaveHistory writes the history and the config that produced it under
	// fileID, which may contain path separators to group related traces
	// (for example "agent1/00001").
	SaveHistory(model string, history []messages.UniMessage, fileID string, cfg provider.Config) error
}

// FileTracer writes one JSON record and one human-readable transcript per
// trace into a cache directory.
type FileTracer struct {
	dir string
	_   struct{} // require keyed usage
}

var _ Tracer = (*FileTracer)(nil)

// NewFile builds a tracer rooted at dir. An empty dir falls back to
// AGENTHUB_CACHE_DIR, then to "cache" relative to the working directory.
func NewFile(dir string) *FileTracer {
	if dir == "" {
		dir = os.Getenv("AGENTHUB_CACHE_DIR")
	}
	if dir == "" {
		dir = "cache"
	}
	return &FileTracer{dir: dir}
}

// Dir returns the cache directory traces are written under.
func (t *FileTracer) Dir() string { return t.dir }

// SaveHistory implements Tracer.
func (t *FileTracer) SaveHistory(model string, history []messages.UniMessage, fileID string, cfg provider.Config) error {
	base, err := t.pathFor(fileID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return err
	}

	cfgView, err := cfg.TraceView()
	if err != nil {
		return err
	}
	cfgView, err = sjson.SetBytes(cfgView, "model", model)
	if err != nil {
		return err
	}

	now := time.Now()
	record := struct {
		History   []messages.UniMessage `json:"history"`
		Config    json.RawMessage       `json:"config"`
		Timestamp strfmt.DateTime       `json:"timestamp"`
	}{
		History:   history,
		Config:    cfgView,
		Timestamp: strfmt.DateTime(now),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return err
	}

	transcript, err := formatHistory(history, cfgView, now)
	if err != nil {
		return err
	}
	return os.WriteFile(base+".txt", []byte(transcript), 0o644)
}

// pathFor resolves fileID under the cache directory, refusing ids that
// would escape it.
func (t *FileTracer) pathFor(fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("trace file id is empty")
	}
	base := filepath.Join(t.dir, filepath.FromSlash(fileID))
	root := filepath.Clean(t.dir) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(base)+string(filepath.Separator), root) {
		return "", fmt.Errorf("trace file id %q escapes the cache directory", fileID)
	}
	return base, nil
}
