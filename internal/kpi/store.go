package kpi

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// StoreOptions configures a Store
type StoreOptions struct {
	Keywords Keywords
	// DisableCache parses the source bytes on every Document call
	DisableCache bool
	Logger       logrus.FieldLogger
}

type source struct {
	path string
	ext  string
	data []byte
}

// Store holds the raw bytes of every KPI document of a directory, read once,
// and parses them on demand. Parsed documents are cached by key; concurrent
// first lookups may both parse, and the last write wins.
type Store struct {
	dir     string
	parser  *Parser
	sources map[string]source
	keys    []string

	cacheEnabled bool
	mu           sync.RWMutex
	cache        map[string]*types.KpiDocument

	logger logrus.FieldLogger
}

// OpenStore reads every .md and .xlsx file of dir. When a key exists in both
// formats the markdown document is used.
func OpenStore(dir string, opts StoreOptions) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SourceError{Path: dir, Message: "failed to read KPI directory", Cause: err}
	}

	s := newStore(dir, opts)
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &SourceError{Path: path, Message: "failed to read", Cause: err}
		}
		s.add(KeyFromPath(path), path, data)
	}
	s.seal()

	s.logger.WithFields(logrus.Fields{
		"dir":       dir,
		"documents": len(s.keys),
		"cache":     s.cacheEnabled,
	}).Info("KPI documents loaded")
	return s, nil
}

// NewStore builds a store from in-memory sources keyed by file name, e.g.
// "IT.md" or "Finance.xlsx".
func NewStore(files map[string][]byte, opts StoreOptions) (*Store, error) {
	s := newStore("", opts)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !Supported(name) {
			return nil, &SourceError{Path: name, Message: "unsupported extension " + filepath.Ext(name)}
		}
		s.add(KeyFromPath(name), name, files[name])
	}
	s.seal()
	return s, nil
}

func newStore(dir string, opts StoreOptions) *Store {
	return &Store{
		dir:          dir,
		parser:       NewParser(opts.Keywords),
		sources:      make(map[string]source),
		cacheEnabled: !opts.DisableCache,
		cache:        make(map[string]*types.KpiDocument),
		logger:       logging.Component(opts.Logger, "kpi.store"),
	}
}

func (s *Store) add(key, path string, data []byte) {
	ext := strings.ToLower(filepath.Ext(path))
	if prev, dup := s.sources[key]; dup {
		if prev.ext == ExtMarkdown {
			s.logger.WithFields(logrus.Fields{"key": key, "kept": prev.path, "skipped": path}).Warn("Duplicate KPI document key")
			return
		}
		s.logger.WithFields(logrus.Fields{"key": key, "kept": path, "skipped": prev.path}).Warn("Duplicate KPI document key")
	}
	s.sources[key] = source{path: path, ext: ext, data: data}
}

func (s *Store) seal() {
	s.keys = make([]string, 0, len(s.sources))
	for k := range s.sources {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)
}

// Dir returns the directory the store was read from.
func (s *Store) Dir() string {
	return s.dir
}

// Keys returns the department keys in sorted order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.keys)
}

// Document returns the parsed document for key. The returned document is
// shared and must not be modified.
func (s *Store) Document(key string) (*types.KpiDocument, bool) {
	src, ok := s.sources[key]
	if !ok {
		return nil, false
	}

	if s.cacheEnabled {
		s.mu.RLock()
		doc, hit := s.cache[key]
		s.mu.RUnlock()
		if hit {
			return doc, true
		}
	}

	doc := s.parser.Parse(key, src.ext, src.data)
	doc.Source = src.path
	if len(doc.Warnings) > 0 {
		s.logger.WithFields(logrus.Fields{
			"key":      key,
			"rows":     len(doc.Rows),
			"warnings": doc.Warnings,
		}).Warn("KPI document parsed with warnings")
	}

	if s.cacheEnabled {
		s.mu.Lock()
		s.cache[key] = doc
		s.mu.Unlock()
	}
	return doc, true
}
