// Package picker lists the files an operator may attach to a message.
package picker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/walink/internal/media"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name string
	Path string
	Dir  bool
	Size int64
	Kind media.Kind
}

// Result is the outcome of one picker session: a single path, or nothing.
type Result struct {
	Path      string
	Cancelled bool
}

// Selected returns a result for path.
func Selected(path string) Result {
	return Result{Path: path}
}

// Cancelled returns the result of a dismissed picker.
func Cancelled() Result {
	return Result{Cancelled: true}
}

// List returns the subdirectories of dir and the files whose extension is
// on the attachment allow-list. Hidden entries are skipped. Directories
// sort before files; each group is ordered by name.
func List(dir string) ([]Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	dirents, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(abs, name)
		info, err := os.Stat(path)
		if err != nil {
			// dangling symlinks and races with deletion
			continue
		}
		if info.IsDir() {
			entries = append(entries, Entry{Name: name, Path: path, Dir: true})
			continue
		}
		if !info.Mode().IsRegular() || !media.Selectable(name) {
			continue
		}
		entries = append(entries, Entry{
			Name: name,
			Path: path,
			Size: info.Size(),
			Kind: media.Classify(name),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Dir != entries[j].Dir {
			return entries[i].Dir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// Parent returns the directory above dir, and false at the filesystem root.
func Parent(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return "", false
	}
	return parent, true
}
