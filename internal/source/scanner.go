package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ListProjects returns the project directory names under projectsDir in
// lexical order. Symlinked directories count; entries that cannot be
// stat'ed are skipped.
func ListProjects(projectsDir string) ([]string, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, err
	}

	var projects []string
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(projectsDir, e.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		projects = append(projects, e.Name())
	}
	return projects, nil
}

// ListSessionFiles returns every *.jsonl file directly inside one project
// directory. Subdirectories are not descended into.
func ListSessionFiles(projectsDir, projectDir string) ([]DiscoveredFile, error) {
	dir := filepath.Join(projectsDir, projectDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:       filepath.Join(dir, name),
			ProjectDir: projectDir,
			SessionID:  strings.TrimSuffix(name, ".jsonl"),
		})
	}
	return files, nil
}
