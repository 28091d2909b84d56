package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Anuraj-IND/RAG-BASED-CODE-NAVIGATOR/pkg/types"
)

// DefaultExtensions is the default allow-list of code file extensions.
var DefaultExtensions = []string{".py", ".js", ".ts", ".java", ".go", ".rs", ".md"}

// Config controls which files a scan yields.
type Config struct {
	// AllowedExtensions is the extension allow-list. Empty means DefaultExtensions.
	AllowedExtensions []string
}

// Warning records a file that was skipped during a scan.
// Skips are never fatal: a single unreadable file must not abort the walk.
type Warning struct {
	Path   string
	Reason string
}

// Report aggregates the outcome of one scan.
type Report struct {
	FilesScanned int
	Warnings     []Warning
}

// Scanner walks a source tree and yields text files matching the allow-list.
type Scanner struct {
	allowed map[string]struct{}
}

// New creates a Scanner for the given configuration.
func New(cfg Config) *Scanner {
	exts := cfg.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &Scanner{allowed: allowed}
}

// Scan walks rootPath recursively and calls yield for every regular file
// whose extension is in the allow-list. File contents are decoded with a
// lossy fallback; files that cannot be read are recorded as warnings and
// skipped. Each call re-walks the filesystem.
func (s *Scanner) Scan(rootPath string, yield func(types.SourceFile) error) (*Report, error) {
	report := &Report{}

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable directory entry: record and keep walking
			report.Warnings = append(report.Warnings, Warning{Path: path, Reason: err.Error()})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			// Skip hidden directories such as .git
			if path != rootPath && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if _, ok := s.allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			report.Warnings = append(report.Warnings, Warning{Path: path, Reason: err.Error()})
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			relPath = path
		}

		report.FilesScanned++
		return yield(types.SourceFile{
			Path:    filepath.ToSlash(relPath),
			Content: decodeLossy(raw),
		})
	})

	if err != nil {
		return report, fmt.Errorf("scan %s: %w", rootPath, err)
	}

	return report, nil
}

// decodeLossy interprets raw bytes as UTF-8, replacing invalid sequences
// with the Unicode replacement rune instead of failing the scan.
func decodeLossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
