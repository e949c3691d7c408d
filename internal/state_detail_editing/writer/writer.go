package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
)

// EventPublisher pushes scan lifecycle events to connected dashboards.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event discovery.ScanEvent) error
}

// CacheInvalidator drops stale parse-cache entries for a rewritten file.
type CacheInvalidator interface {
	Invalidate(path string)
}

// Writer rewrites implication definition files. Every mutation loads
// the owning document as generic YAML/JSON, changes only the keys it
// owns, and writes atomically, so fields this tool does not know about
// survive a rewrite.
type Writer struct {
	events EventPublisher
	cache  CacheInvalidator
}

func New(events EventPublisher, cache CacheInvalidator) *Writer {
	return &Writer{events: events, cache: cache}
}

// metadataKeys are the document keys WriteMetadata owns. context and
// transitions are separate sub-objects with their own write paths.
var metadataKeys = []string{
	"className", "status", "hasXStateConfig", "platform", "platforms",
	"triggerButton", "requiredFields", "uiCoverage", "screen", "tags",
	"setup", "initial",
}

// WriteMetadata replaces the metadata keys of the file at path,
// leaving context, transitions, and unknown keys untouched. Publishes
// a rescan event on success.
func (w *Writer) WriteMetadata(ctx context.Context, projectPath, path string, meta discovery.ImplicationMetadata) error {
	if strings.TrimSpace(meta.ClassName) == "" {
		return &domain.ValidationError{Field: "className", Message: "is required"}
	}

	doc, err := loadDoc(path)
	if err != nil {
		return err
	}

	plain, err := toPlainMap(meta)
	if err != nil {
		return err
	}
	for _, k := range metadataKeys {
		if v, ok := plain[k]; ok {
			doc[k] = v
		} else {
			delete(doc, k)
		}
	}

	if err := writeDoc(path, doc); err != nil {
		return err
	}
	w.invalidate(path)
	w.publishRescan(ctx, projectPath, path)
	return nil
}

// WriteContext replaces the context schema of the file at path. A
// context-only edit does not warrant a rescan; the caller refreshes
// just the affected state.
func (w *Writer) WriteContext(ctx context.Context, projectPath, path string, fields []discovery.ContextField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return &domain.ValidationError{Field: "context", Message: "field name is required"}
		}
	}

	doc, err := loadDoc(path)
	if err != nil {
		return err
	}

	if len(fields) == 0 {
		delete(doc, "context")
	} else {
		plain, err := toPlain(fields)
		if err != nil {
			return err
		}
		doc["context"] = plain
	}

	if err := writeDoc(path, doc); err != nil {
		return err
	}
	w.invalidate(path)
	return nil
}

func (w *Writer) invalidate(path string) {
	if w.cache != nil {
		w.cache.Invalidate(path)
	}
}

func (w *Writer) publishRescan(ctx context.Context, projectPath, path string) {
	if w.events == nil {
		return
	}
	evt := discovery.ScanEvent{
		Type:        discovery.EventRescanRequested,
		ProjectPath: projectPath,
		Path:        path,
	}
	if err := w.events.PublishEvent(ctx, evt); err != nil {
		log.Printf("[writer] publish rescan for %s: %v", path, err)
	}
}

func loadDoc(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse json %s: %w", path, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return doc, nil
}

// writeDoc marshals per extension and writes atomically: temp file in
// the target dir, then rename.
func writeDoc(path string, doc map[string]any) error {
	var b []byte
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		b, err = json.MarshalIndent(doc, "", "  ")
		b = append(b, '\n')
	} else {
		b, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// toPlain round-trips a typed value through JSON into the generic
// form stored in a document, so struct tags decide the key names.
func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

func toPlainMap(v any) (map[string]any, error) {
	plain, err := toPlain(v)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("encode: expected object, got %T", plain)
	}
	return m, nil
}
