package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	discovery "github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_graph/build"
	"github.com/stateboard/stateboard-backend/internal/state_detail_editing/domain"
)

// UpdateMetadata resolves the state's owning file and replaces its
// metadata keys.
func (w *Writer) UpdateMetadata(ctx context.Context, result *discovery.DiscoveryResult, state string, meta discovery.ImplicationMetadata) (string, error) {
	file, err := findState(result, state)
	if err != nil {
		return "", err
	}
	if err := w.WriteMetadata(ctx, result.ProjectPath, file.Path, meta); err != nil {
		return "", err
	}
	return file.Path, nil
}

// UpdateContext resolves the state's owning file and replaces its
// context schema.
func (w *Writer) UpdateContext(ctx context.Context, result *discovery.DiscoveryResult, state string, fields []discovery.ContextField) (string, error) {
	file, err := findState(result, state)
	if err != nil {
		return "", err
	}
	if err := w.WriteContext(ctx, result.ProjectPath, file.Path, fields); err != nil {
		return "", err
	}
	return file.Path, nil
}

// UpdateTransition patches one transition identified by its
// (from, to, event) triple in the file that declares it.
func (w *Writer) UpdateTransition(ctx context.Context, result *discovery.DiscoveryResult, from, to, event string, patch domain.TransitionPatch) (string, error) {
	if patch.Empty() {
		return "", &domain.ValidationError{Field: "patch", Message: "no fields to update"}
	}
	if patch.Event != nil {
		if err := validateEventName(*patch.Event); err != nil {
			return "", err
		}
	}

	aliases := build.Aliases(result)
	if patch.To != nil {
		if _, ok := aliases.Resolve(*patch.To); !ok {
			return "", &domain.ValidationError{Field: "to", Message: "unknown state"}
		}
	}

	t, err := resolveTriple(result, aliases, from, to, event)
	if err != nil {
		return "", err
	}

	doc, err := loadDoc(t.SourcePath)
	if err != nil {
		return "", err
	}
	items, _ := doc["transitions"].([]any)
	fileClass := stringAt(doc, "className")

	matched := false
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok || !tripleMatches(aliases, item, fileClass, from, to, event) {
			continue
		}
		applyPatch(item, patch)
		matched = true
		break
	}
	if !matched {
		return "", domain.ErrTransitionNotFound
	}

	if err := writeDoc(t.SourcePath, doc); err != nil {
		return "", err
	}
	w.invalidate(t.SourcePath)
	w.publishRescan(ctx, result.ProjectPath, t.SourcePath)
	return t.SourcePath, nil
}

// DeleteTransition removes one transition from its declaring file.
func (w *Writer) DeleteTransition(ctx context.Context, result *discovery.DiscoveryResult, from, to, event string) (string, error) {
	aliases := build.Aliases(result)
	t, err := resolveTriple(result, aliases, from, to, event)
	if err != nil {
		return "", err
	}

	doc, err := loadDoc(t.SourcePath)
	if err != nil {
		return "", err
	}
	items, _ := doc["transitions"].([]any)
	fileClass := stringAt(doc, "className")

	kept := make([]any, 0, len(items))
	removed := false
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if ok && !removed && tripleMatches(aliases, item, fileClass, from, to, event) {
			removed = true
			continue
		}
		kept = append(kept, raw)
	}
	if !removed {
		return "", domain.ErrTransitionNotFound
	}
	if len(kept) == 0 {
		delete(doc, "transitions")
	} else {
		doc["transitions"] = kept
	}

	if err := writeDoc(t.SourcePath, doc); err != nil {
		return "", err
	}
	w.invalidate(t.SourcePath)
	w.publishRescan(ctx, result.ProjectPath, t.SourcePath)
	return t.SourcePath, nil
}

// AddTransition appends a transition to the source state's file after
// validating the event name, both endpoints, and triple uniqueness.
func (w *Writer) AddTransition(ctx context.Context, result *discovery.DiscoveryResult, t discovery.Transition) (string, error) {
	if err := validateEventName(t.Event); err != nil {
		return "", err
	}

	aliases := build.Aliases(result)
	if _, ok := aliases.Resolve(t.From); !ok {
		return "", &domain.ValidationError{Field: "from", Message: "unknown state"}
	}
	if _, ok := aliases.Resolve(t.To); !ok {
		return "", &domain.ValidationError{Field: "to", Message: "unknown state"}
	}
	if _, err := resolveTriple(result, aliases, t.From, t.To, t.Event); err == nil {
		return "", &domain.ValidationError{Field: "transition", Message: "duplicate (from, to, event)"}
	}

	file, err := findState(result, t.From)
	if err != nil {
		return "", err
	}
	doc, err := loadDoc(file.Path)
	if err != nil {
		return "", err
	}

	item := map[string]any{"from": t.From, "to": t.To, "event": t.Event}
	if len(t.Platforms) > 0 {
		item["platforms"] = toAnySlice(t.Platforms)
	}
	if t.Requires != "" {
		item["requires"] = t.Requires
	}
	if len(t.Conditions) > 0 {
		item["conditions"] = toAnySlice(t.Conditions)
	}
	if len(t.ActionDetails) > 0 {
		item["actionDetails"] = toAnySlice(t.ActionDetails)
	}

	items, _ := doc["transitions"].([]any)
	doc["transitions"] = append(items, item)

	if err := writeDoc(file.Path, doc); err != nil {
		return "", err
	}
	w.invalidate(file.Path)
	w.publishRescan(ctx, result.ProjectPath, file.Path)
	return file.Path, nil
}

// CreateState writes a fresh <name>.implication.yaml. Refuses to
// overwrite an existing file or shadow an existing state ID. New files
// land beside the existing definitions when the project has any.
func (w *Writer) CreateState(ctx context.Context, result *discovery.DiscoveryResult, name string, meta *discovery.ImplicationMetadata) (string, error) {
	if err := validateStateName(name); err != nil {
		return "", err
	}

	aliases := build.Aliases(result)
	if _, ok := aliases.Resolve(name); ok {
		return "", &domain.ValidationError{Field: "name", Message: "state already exists"}
	}

	dir := result.ProjectPath
	if len(result.Files.Implications) > 0 {
		dir = filepath.Dir(result.Files.Implications[0].Path)
	}
	path := filepath.Join(dir, name+".implication.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", &domain.ValidationError{Field: "name", Message: "definition file already exists"}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	doc := map[string]any{}
	if meta != nil {
		plain, err := toPlainMap(*meta)
		if err != nil {
			return "", err
		}
		for _, k := range metadataKeys {
			if v, ok := plain[k]; ok {
				doc[k] = v
			}
		}
		if v, ok := plain["context"]; ok {
			doc["context"] = v
		}
	}
	if stringAt(doc, "className") == "" {
		doc["className"] = classNameFor(name)
	}
	// A created state is stateful by definition.
	doc["hasXStateConfig"] = true

	if err := writeDoc(path, doc); err != nil {
		return "", err
	}
	w.publishRescan(ctx, result.ProjectPath, path)
	return path, nil
}

func findState(result *discovery.DiscoveryResult, name string) (*discovery.ImplicationFile, error) {
	aliases := build.Aliases(result)
	id, ok := aliases.Resolve(name)
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	for i := range result.Files.Implications {
		f := &result.Files.Implications[i]
		if fid, ok := aliases.Resolve(f.Metadata.ClassName); ok && fid == id {
			return f, nil
		}
	}
	return nil, domain.ErrStateNotFound
}

func resolveTriple(result *discovery.DiscoveryResult, aliases build.AliasIndex, from, to, event string) (*discovery.Transition, error) {
	for i := range result.Transitions {
		t := &result.Transitions[i]
		if t.Event != event {
			continue
		}
		if sameState(aliases, t.From, from) && sameState(aliases, t.To, to) {
			return t, nil
		}
	}
	return nil, domain.ErrTransitionNotFound
}

func tripleMatches(aliases build.AliasIndex, item map[string]any, fileClass, from, to, event string) bool {
	if stringAt(item, "event") != event {
		return false
	}
	itemFrom := stringAt(item, "from")
	if itemFrom == "" {
		// Transitions without an explicit source belong to the
		// declaring file's state.
		itemFrom = fileClass
	}
	return sameState(aliases, itemFrom, from) && sameState(aliases, stringAt(item, "to"), to)
}

// sameState compares two endpoint names through the alias index;
// names that resolve to the same node ID are the same state.
func sameState(aliases build.AliasIndex, a, b string) bool {
	ra, aok := aliases.Resolve(a)
	rb, bok := aliases.Resolve(b)
	if aok && bok {
		return ra == rb
	}
	return a == b
}

func applyPatch(item map[string]any, patch domain.TransitionPatch) {
	if patch.To != nil {
		item["to"] = *patch.To
	}
	if patch.Event != nil {
		item["event"] = *patch.Event
	}
	if patch.Platforms != nil {
		setOrDelete(item, "platforms", toAnySlice(patch.Platforms))
	}
	if patch.Requires != nil {
		if *patch.Requires == "" {
			delete(item, "requires")
		} else {
			item["requires"] = *patch.Requires
		}
	}
	if patch.Conditions != nil {
		setOrDelete(item, "conditions", toAnySlice(patch.Conditions))
	}
	if patch.ActionDetails != nil {
		setOrDelete(item, "actionDetails", toAnySlice(patch.ActionDetails))
	}
}

func setOrDelete(item map[string]any, key string, v []any) {
	if len(v) == 0 {
		delete(item, key)
	} else {
		item[key] = v
	}
}

func toAnySlice(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func classNameFor(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "") + "Implications"
}
