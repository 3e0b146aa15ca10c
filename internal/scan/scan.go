// Package scan implements a non-recursive depth-first directory walk
// bounded by an explicit stack rather than native call depth, yielding a
// flat, serializable tree summary.
package scan

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// Item is one entry in a scan result.
type Item struct {
	RelativePath string `json:"relative_path"`
	Name         string `json:"name"`
	IsFolder     bool   `json:"is_folder"`
	Size         int64  `json:"size"`
	AbsolutePath string `json:"absolute_path"`
}

// Result is the complete output of a Walk.
type Result struct {
	RootPath        string `json:"root_path"`
	Items           []Item `json:"items"`
	TotalSize       int64  `json:"total_size"`
	FileCount       int    `json:"file_count"`
	FolderCount     int    `json:"folder_count"`
	ScanDurationMS  int64  `json:"scan_duration_ms"`
}

type stackEntry struct {
	absPath string
	relPath string
	depth   int
}

// Walk performs an iterative depth-first traversal of root. Symlinks are
// skipped entirely (no traversal, no entry in the result) to avoid
// cycles. Within each directory, folders are listed before files, each
// group sorted by name ascending. Unreadable subdirectories are skipped
// (the scan continues) rather than aborting the whole walk.
func Walk(root string) (*Result, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferr.Wrap(ferr.InvalidPath, "scan: resolve absolute root failed", err)
	}

	result := &Result{RootPath: absRoot}
	stack := []stackEntry{{absPath: absRoot, relPath: "", depth: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(top.absPath)
		if err != nil {
			continue
		}

		folders, files := splitAndSortEntries(entries)

		for _, e := range folders {
			result.Items = append(result.Items, Item{
				RelativePath: joinRel(top.relPath, e.Name()),
				Name:         e.Name(),
				IsFolder:     true,
				Size:         0,
				AbsolutePath: filepath.Join(top.absPath, e.Name()),
			})
			result.FolderCount++
		}

		// Push subdirectories in reverse order so the stack still pops
		// them in name-ascending order (LIFO).
		for i := len(folders) - 1; i >= 0; i-- {
			e := folders[i]
			absPath := filepath.Join(top.absPath, e.Name())
			relPath := joinRel(top.relPath, e.Name())
			stack = append(stack, stackEntry{absPath: absPath, relPath: relPath, depth: top.depth + 1})
		}

		for _, e := range files {
			absPath := filepath.Join(top.absPath, e.Name())
			relPath := joinRel(top.relPath, e.Name())

			info, err := e.Info()
			if err != nil {
				continue
			}
			result.Items = append(result.Items, Item{
				RelativePath: relPath,
				Name:         e.Name(),
				IsFolder:     false,
				Size:         info.Size(),
				AbsolutePath: absPath,
			})
			result.FileCount++
			result.TotalSize += info.Size()
		}
	}

	result.ScanDurationMS = time.Since(start).Milliseconds()
	return result, nil
}

// splitAndSortEntries separates symlinks out, then splits the remainder
// into folders and files, each sorted by name ascending.
func splitAndSortEntries(entries []os.DirEntry) (folders, files []os.DirEntry) {
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			continue
		}
		if e.IsDir() {
			folders = append(folders, e)
		} else {
			files = append(files, e)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name() < folders[j].Name() })
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	return folders, files
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
