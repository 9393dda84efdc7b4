package source

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

const claudeMdName = "CLAUDE.md"

// ScanClaudeMd reports the CLAUDE.md footprint of each project. The file
// inside the project's log directory wins; otherwise the project root
// decoded from the directory name is tried. Unreadable files are skipped.
func ScanClaudeMd(projectsDir string, projects []string) []model.ClaudeMdFile {
	files := []model.ClaudeMdFile{}
	for _, pd := range projects {
		if f, ok := readClaudeMd(pd, filepath.Join(projectsDir, pd, claudeMdName)); ok {
			files = append(files, f)
			continue
		}
		if f, ok := readClaudeMd(pd, filepath.Join(DecodeProjectRoot(pd), claudeMdName)); ok {
			files = append(files, f)
		}
	}
	return files
}

// DecodeProjectRoot reverses the directory encoding: "-home-me-app" becomes
// "/home/me/app". Dashes that were part of a real name are lost.
func DecodeProjectRoot(projectDir string) string {
	return "/" + strings.TrimPrefix(strings.ReplaceAll(projectDir, "-", "/"), "/")
}

func readClaudeMd(project, path string) (model.ClaudeMdFile, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return model.ClaudeMdFile{}, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return model.ClaudeMdFile{}, false
	}
	// ~4 characters per token.
	est := int64(model.RoundHalfUp(float64(utf8.RuneCount(content)) / 4))
	return model.ClaudeMdFile{
		Project:         project,
		Bytes:           info.Size(),
		EstimatedTokens: est,
		Path:            path,
	}, true
}
