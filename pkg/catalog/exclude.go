package catalog

import (
	"path/filepath"
	"strings"
)

// shouldExclude reports whether a relative path matches any exclude pattern.
// Supported forms:
//   - basename globs: *.tmp, ~$*
//   - directory patterns: .git/, archive/
//   - path globs: exports/*.csv
//   - any-depth globs: **/backup/*, **/*.bak
//
// Directory paths are passed with a trailing slash and only match directory patterns.
func shouldExclude(relativePath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	isDir := strings.HasSuffix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/")
	base := normalized[strings.LastIndex(normalized, "/")+1:]

	for _, raw := range patterns {
		pattern := filepath.ToSlash(strings.TrimSpace(raw))
		if pattern == "" {
			continue
		}

		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if isDir && matchDir(normalized, dir) {
				return true
			}
			continue
		}
		if isDir {
			continue
		}

		if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matchAnyDepth(normalized, suffix) {
				return true
			}
			continue
		}

		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, normalized); matched {
				return true
			}
			continue
		}

		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// matchDir matches a directory pattern against the directory itself or any ancestor segment
func matchDir(dirPath, pattern string) bool {
	if dirPath == pattern || strings.HasSuffix(dirPath, "/"+pattern) {
		return true
	}
	for _, part := range strings.Split(dirPath, "/") {
		if matched, _ := filepath.Match(pattern, part); matched {
			return true
		}
	}
	return false
}

// matchAnyDepth tries the pattern against every trailing sub-path
func matchAnyDepth(path, pattern string) bool {
	parts := strings.Split(path, "/")
	for i := range parts {
		tail := strings.Join(parts[i:], "/")
		if matched, _ := filepath.Match(pattern, tail); matched {
			return true
		}
	}
	return false
}
