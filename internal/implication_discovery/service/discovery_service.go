package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/time/rate"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/scanner"
)

const scanTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ResultStore is the persistence surface the service needs; satisfied
// by repository.ScanRepository.
type ResultStore interface {
	SaveResult(ctx context.Context, result *domain.DiscoveryResult) error
	GetResult(ctx context.Context, projectPath string) (*domain.DiscoveryResult, error)
	PublishEvent(ctx context.Context, ev domain.ScanEvent) error
}

// DiscoveryService orchestrates project scans: path validation,
// throttling, parsing, caching, and event publication.
type DiscoveryService struct {
	scanner      *scanner.Scanner
	store        ResultStore
	projectsRoot string
	scanInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewDiscoveryService(sc *scanner.Scanner, store ResultStore, projectsRoot string, scanInterval time.Duration) *DiscoveryService {
	return &DiscoveryService{
		scanner:      sc,
		store:        store,
		projectsRoot: projectsRoot,
		scanInterval: scanInterval,
		limiters:     map[string]*rate.Limiter{},
	}
}

// Scan performs a full project scan and caches the result. One scan per
// project per interval; excess calls get ErrScanThrottled.
func (s *DiscoveryService) Scan(ctx context.Context, projectPath string) (*domain.DiscoveryResult, error) {
	projectPath, err := s.ResolveProjectPath(projectPath)
	if err != nil {
		return nil, err
	}

	if !s.limiter(projectPath).Allow() {
		return nil, domain.ErrScanThrottled
	}

	files, transitions, warnings, err := s.scanner.Scan(projectPath)
	if err != nil {
		return nil, err
	}

	token, err := nanoid.Generate(scanTokenAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("scan token: %w", err)
	}

	result := &domain.DiscoveryResult{
		ProjectPath: projectPath,
		ScanID:      "scan-" + token,
		ScannedAt:   time.Now().UTC(),
		Files:       domain.DiscoveredFiles{Implications: files},
		Transitions: transitions,
		Warnings:    warnings,
	}

	if err := s.store.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	if err := s.store.PublishEvent(ctx, domain.ScanEvent{
		Type:        domain.EventScanCompleted,
		ProjectPath: projectPath,
		ScanID:      result.ScanID,
	}); err != nil {
		log.Printf("[discovery] publish scan event: %v", err)
	}

	log.Printf("[discovery] scan %s: %d implications, %d transitions, %d warnings (%s)",
		projectPath, len(files), len(transitions), len(warnings), result.ScanID)

	return result, nil
}

// ParseSingleFile re-parses one implication file and patches it into
// the cached discovery result, the fast path after an edit.
func (s *DiscoveryService) ParseSingleFile(ctx context.Context, filePath string) (*domain.ImplicationFile, error) {
	filePath = filepath.Clean(filePath)

	file, transitions, warnings, err := s.scanner.ParseOne(filePath)
	if err != nil {
		return nil, err
	}

	projectPath := s.projectFor(filePath)
	if projectPath != "" {
		if result, err := s.store.GetResult(ctx, projectPath); err == nil {
			patchResult(result, filePath, file, transitions, warnings)
			if err := s.store.SaveResult(ctx, result); err != nil {
				log.Printf("[discovery] save patched result: %v", err)
			}
			if err := s.store.PublishEvent(ctx, domain.ScanEvent{
				Type:        domain.EventFileUpdated,
				ProjectPath: projectPath,
				ScanID:      result.ScanID,
				Path:        filePath,
			}); err != nil {
				log.Printf("[discovery] publish file event: %v", err)
			}
		}
	}

	return file, nil
}

// Result returns the cached discovery result for a project, scanning
// when nothing is cached yet.
func (s *DiscoveryService) Result(ctx context.Context, projectPath string) (*domain.DiscoveryResult, error) {
	projectPath, err := s.ResolveProjectPath(projectPath)
	if err != nil {
		return nil, err
	}

	result, err := s.store.GetResult(ctx, projectPath)
	if err == domain.ErrNoDiscovery {
		return s.Scan(ctx, projectPath)
	}
	return result, err
}

// Invalidate drops the scanner's cached parse for a path. Called by
// editors after rewriting a file.
func (s *DiscoveryService) Invalidate(path string) {
	s.scanner.Invalidate(path)
}

// ResolveProjectPath cleans the path and confirms it sits inside the
// configured projects root.
func (s *DiscoveryService) ResolveProjectPath(projectPath string) (string, error) {
	if strings.TrimSpace(projectPath) == "" {
		return "", domain.ErrProjectNotFound
	}
	projectPath = filepath.Clean(projectPath)

	root, err := filepath.Abs(s.projectsRoot)
	if err != nil {
		return "", fmt.Errorf("resolve projects root: %w", err)
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", domain.ErrProjectNotFound
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", domain.ErrProjectNotFound
	}
	return abs, nil
}

func (s *DiscoveryService) limiter(projectPath string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[projectPath]
	if !ok {
		interval := s.scanInterval
		if interval <= 0 {
			lim = rate.NewLimiter(rate.Inf, 1)
		} else {
			lim = rate.NewLimiter(rate.Every(interval), 1)
		}
		s.limiters[projectPath] = lim
	}
	return lim
}

// projectFor maps a file path back to the project directory that
// contains it, relative to the projects root.
func (s *DiscoveryService) projectFor(filePath string) string {
	root, err := filepath.Abs(s.projectsRoot)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return root
	}
	return filepath.Join(root, parts[0])
}

func patchResult(result *domain.DiscoveryResult, filePath string, file *domain.ImplicationFile, transitions []domain.Transition, warnings []string) {
	replaced := false
	for i := range result.Files.Implications {
		if result.Files.Implications[i].Path == filePath {
			result.Files.Implications[i] = *file
			replaced = true
			break
		}
	}
	if !replaced {
		result.Files.Implications = append(result.Files.Implications, *file)
	}

	// Drop the file's previous transitions, then append the fresh set.
	kept := result.Transitions[:0]
	for _, t := range result.Transitions {
		if t.SourcePath != filePath {
			kept = append(kept, t)
		}
	}
	result.Transitions = append(kept, transitions...)
	result.Warnings = append(result.Warnings, warnings...)
	result.ScannedAt = time.Now().UTC()
}
