package sync

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/prashanthellina/pullbox/internal/utils"
)

// IgnoreFileName is looked up at the root of the sync directory. Patterns
// use gitignore syntax and are matched against root-relative paths.
const IgnoreFileName = ".pullboxignore"

var defaultIgnoreLines = []string{
	// editor droppings
	"*~",
	"*.swp",
	"*.swx",
	"*.tmp",
	// OS droppings
	".DS_Store",
	"Thumbs.db",
	// python
	"__pycache__/",
	"*.py[cod]",
}

// IgnoreList filters watcher events beyond the built-in noise rules.
type IgnoreList struct {
	baseDir string
	log     *slog.Logger
	ignore  *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string, log *slog.Logger) *IgnoreList {
	return &IgnoreList{
		baseDir: baseDir,
		log:     log,
		ignore:  gitignore.CompileIgnoreLines(defaultIgnoreLines...),
	}
}

// Load compiles the default patterns plus the root ignore file when one
// exists. A missing file leaves the defaults in place.
func (l *IgnoreList) Load() {
	ignorePath := filepath.Join(l.baseDir, IgnoreFileName)
	ignoreLines := append([]string(nil), defaultIgnoreLines...)

	if utils.FileExists(ignorePath) {
		file, err := os.Open(ignorePath)
		if err != nil {
			l.log.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()

			rules := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line != "" {
					ignoreLines = append(ignoreLines, line)
					rules++
				}
			}

			if err := scanner.Err(); err != nil {
				l.log.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				l.log.Info("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	l.ignore = gitignore.CompileIgnoreLines(ignoreLines...)
}

// Match reports whether a root-relative path is ignored.
func (l *IgnoreList) Match(relPath string) bool {
	return l.ignore.MatchesPath(relPath)
}
