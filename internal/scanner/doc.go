// Package scanner walks a source tree and yields raw file contents for
// indexing.
//
// Files are selected by a configurable extension allow-list. Traversal is
// recursive, hidden directories are skipped, and file order is not
// significant. Contents are decoded as UTF-8 with a lossy fallback; a file
// that cannot be read is recorded as a warning on the scan Report rather
// than aborting the walk.
//
//	s := scanner.New(scanner.Config{})
//	report, err := s.Scan(root, func(f types.SourceFile) error {
//	    return indexFile(f)
//	})
package scanner
