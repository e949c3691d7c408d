package scanner

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
	"github.com/stateboard/stateboard-backend/internal/implication_discovery/parser"
)

// Directories never descended into during a project walk.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	".stateboard":  {},
}

var implicationSuffixes = []string{".implication.yaml", ".implication.yml", ".implication.json"}

type parsedEntry struct {
	file        *domain.ImplicationFile
	transitions []domain.Transition
	warnings    []string
}

// Scanner walks project trees for implication definition files. Parse
// results are cached per (path, mtime, size) so unchanged files are not
// re-parsed across scans.
type Scanner struct {
	maxFileSize int64
	cache       *lru.Cache[string, parsedEntry]
}

func New(cacheSize int, maxFileSizeKB int) (*Scanner, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, parsedEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	return &Scanner{
		maxFileSize: int64(maxFileSizeKB) * 1024,
		cache:       cache,
	}, nil
}

// Scan walks projectPath and parses every implication file found.
// Unreadable or invalid files are skipped and recorded as warnings;
// zero files is a valid, empty result.
func (s *Scanner) Scan(projectPath string) ([]domain.ImplicationFile, []domain.Transition, []string, error) {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return nil, nil, nil, domain.ErrProjectNotFound
	}

	var paths []string
	err = filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Printf("[discovery] walk %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImplicationFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("walk %s: %w", projectPath, err)
	}
	sort.Strings(paths)

	var (
		files       []domain.ImplicationFile
		transitions []domain.Transition
		warnings    []string
	)
	for _, path := range paths {
		entry, err := s.parse(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		warnings = append(warnings, entry.warnings...)
		if entry.file == nil {
			continue
		}
		files = append(files, *entry.file)
		transitions = append(transitions, entry.transitions...)
	}

	return files, transitions, warnings, nil
}

// ParseOne parses a single implication file, going through the same
// cache as a full scan.
func (s *Scanner) ParseOne(path string) (*domain.ImplicationFile, []domain.Transition, []string, error) {
	if !IsImplicationFile(path) {
		return nil, nil, nil, domain.ErrFileNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, nil, domain.ErrFileNotFound
	}
	entry, err := s.parse(path)
	if err != nil {
		return nil, nil, nil, err
	}
	return entry.file, entry.transitions, entry.warnings, nil
}

// Invalidate drops any cached parse for path. Called after an edit
// rewrites the file so the next parse sees fresh content even when
// mtime granularity is coarse.
func (s *Scanner) Invalidate(path string) {
	keys := s.cache.Keys()
	prefix := path + "|"
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			s.cache.Remove(k)
		}
	}
}

func (s *Scanner) parse(path string) (parsedEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return parsedEntry{}, err
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return parsedEntry{}, fmt.Errorf("file exceeds size cap (%d bytes)", info.Size())
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if entry, ok := s.cache.Get(key); ok {
		return entry, nil
	}

	file, transitions, warnings, err := parser.ParseFile(path)
	if err != nil {
		return parsedEntry{}, err
	}
	entry := parsedEntry{file: file, transitions: transitions, warnings: warnings}
	s.cache.Add(key, entry)
	return entry, nil
}

// IsImplicationFile reports whether path names an implication
// definition file by suffix.
func IsImplicationFile(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range implicationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
