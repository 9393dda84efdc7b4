package pipeline

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/GauravRatnawat/claudetop/internal/source"
)

// RealPathSet tracks which physical log files have been claimed during one
// load. It is safe for concurrent use. Every alias that resolves to a claimed
// file is remembered so ownership can be settled deterministically once all
// tasks have joined.
type RealPathSet struct {
	mu      sync.Mutex
	aliases map[string][]alias
}

type alias struct {
	df     source.DiscoveredFile
	direct bool
}

// NewRealPathSet returns an empty set scoped to one load.
func NewRealPathSet() *RealPathSet {
	return &RealPathSet{aliases: make(map[string][]alias)}
}

// Claim records df as an alias of realPath and reports whether this call was the
// first to see realPath. Exactly one caller wins per real path.
func (s *RealPathSet) Claim(realPath string, df source.DiscoveredFile) bool {
	a := alias{df: df, direct: isDirect(df.Path)}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, seen := s.aliases[realPath]
	s.aliases[realPath] = append(prev, a)
	return !seen
}

// Owner returns the alias reached without following a symlink, so the file
// belongs to the project that really holds it. Among several such aliases,
// or when every alias is a link, the lexicographically smallest path wins.
// Which task won the race does not matter.
func (s *RealPathSet) Owner(realPath string) (source.DiscoveredFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.aliases[realPath]
	if !ok {
		return source.DiscoveredFile{}, false
	}
	best := list[0]
	for _, a := range list[1:] {
		if a.direct != best.direct {
			if a.direct {
				best = a
			}
			continue
		}
		if a.df.Path < best.df.Path {
			best = a
		}
	}
	return best.df, true
}

// Len is the number of distinct physical files claimed.
func (s *RealPathSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aliases)
}

// isDirect reports whether neither the file nor its project directory is a
// symlink. Links above the projects root affect every alias alike.
func isDirect(path string) bool {
	for _, p := range []string{path, filepath.Dir(path)} {
		info, err := os.Lstat(p)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			return false
		}
	}
	return true
}

// resolveRealPath follows symlinks and returns an absolute path.
func resolveRealPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
