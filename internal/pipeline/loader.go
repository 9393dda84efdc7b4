package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Sessions      []model.Session
	ClaudeMdFiles []model.ClaudeMdFile
	TotalFiles    int
	ParsedFiles   int
	Duplicates    int
	ParseErrors   int
	FileErrors    int
	ProjectCount  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadOptions tunes a Load call. The zero value is usable.
type LoadOptions struct {
	Progress       ProgressFunc
	Logger         *slog.Logger
	ProjectWorkers int // default GOMAXPROCS
	FileWorkers    int // per project, default 8
}

const defaultFileWorkers = 8

// parsedFile is a reconstruction waiting for its owner to be settled.
type parsedFile struct {
	real string
	rec  source.Reconstruction
}

// Load discovers and parses every session log under dataDir/projects.
// Projects are parsed concurrently, and files within a project are parsed
// concurrently under a second limit. A file reachable through more than one
// path is parsed once.
//
// A missing data directory is not an error; Load returns an empty result.
func Load(ctx context.Context, dataDir string, opts LoadOptions) (*LoadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	projectWorkers := opts.ProjectWorkers
	if projectWorkers < 1 {
		projectWorkers = runtime.GOMAXPROCS(0)
	}
	fileWorkers := opts.FileWorkers
	if fileWorkers < 1 {
		fileWorkers = defaultFileWorkers
	}

	projectsDir := filepath.Join(dataDir, "projects")
	if _, err := os.Stat(projectsDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no projects directory", "path", projectsDir)
			return emptyLoadResult(), nil
		}
		return nil, fmt.Errorf("scanning %s: %w", projectsDir, err)
	}

	projects, err := source.ListProjects(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", projectsDir, err)
	}

	labels, err := source.LoadHistory(filepath.Join(dataDir, "history.jsonl"))
	if err != nil {
		logger.Debug("history skipped", "err", err)
	}

	result := emptyLoadResult()
	result.ProjectCount = len(projects)
	result.ClaudeMdFiles = source.ScanClaudeMd(projectsDir, projects)

	// Discovery. A project that cannot be listed contributes nothing.
	perProject := make([][]source.DiscoveredFile, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(projectWorkers)
	for i, pd := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := source.ListSessionFiles(projectsDir, pd)
			if err != nil {
				logger.Debug("project skipped", "project", pd, "err", err)
				return nil
			}
			perProject[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, files := range perProject {
		total += len(files)
	}
	result.TotalFiles = total

	// Parsing.
	var (
		set         = NewRealPathSet()
		processed   atomic.Int64
		duplicates  atomic.Int64
		fileErrors  atomic.Int64
		parseErrors atomic.Int64
		parsed      = make([][]*parsedFile, len(projects))
	)
	report := func() {
		n := processed.Add(1)
		if opts.Progress != nil {
			opts.Progress(int(n), total)
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(projectWorkers)
	for i, files := range perProject {
		if len(files) == 0 {
			continue
		}
		parsed[i] = make([]*parsedFile, len(files))
		g.Go(func() error {
			fg, fctx := errgroup.WithContext(gctx)
			fg.SetLimit(fileWorkers)
			for j, df := range files {
				fg.Go(func() error {
					if err := fctx.Err(); err != nil {
						return err
					}
					defer report()

					realPath, err := resolveRealPath(df.Path)
					if err != nil {
						fileErrors.Add(1)
						logger.Debug("file skipped", "path", df.Path, "err", err)
						return nil
					}
					if !set.Claim(realPath, df) {
						duplicates.Add(1)
						logger.Debug("duplicate log", "path", df.Path, "real", realPath)
						return nil
					}

					rec, err := source.Reconstruct(source.OpenLog(df.Path).Entries())
					if err != nil {
						fileErrors.Add(1)
						logger.Debug("file skipped", "path", df.Path, "err", err)
						return nil
					}
					if rec.ParseErrors > 0 {
						parseErrors.Add(int64(rec.ParseErrors))
						logger.Debug("malformed lines", "path", df.Path, "count", rec.ParseErrors)
					}
					parsed[i][j] = &parsedFile{real: realPath, rec: rec}
					return nil
				})
			}
			return fg.Wait()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duplicates = int(duplicates.Load())
	result.FileErrors = int(fileErrors.Load())
	result.ParseErrors = int(parseErrors.Load())

	// Attribution happens after the join so that it does not depend on
	// which alias was parsed first.
	for _, files := range parsed {
		for _, pf := range files {
			if pf == nil {
				continue
			}
			result.ParsedFiles++
			owner, _ := set.Owner(pf.real)
			if s := source.SessionFrom(owner, labels, pf.rec); s != nil {
				result.Sessions = append(result.Sessions, *s)
			}
		}
	}
	SortSessions(result.Sessions, SortTotal)

	logger.Debug("load complete",
		"projects", result.ProjectCount,
		"files", result.TotalFiles,
		"sessions", len(result.Sessions),
		"duplicates", result.Duplicates,
		"file_errors", result.FileErrors,
		"parse_errors", result.ParseErrors,
	)
	return result, nil
}

func emptyLoadResult() *LoadResult {
	return &LoadResult{
		Sessions:      []model.Session{},
		ClaudeMdFiles: []model.ClaudeMdFile{},
	}
}
