package audit

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
)

// Entry is the metadata of one visited file or directory, taken from the
// entry itself and never from a symlink target.
type Entry struct {
	// Path is the absolute path of the entry.
	Path string
	// Size is the size in bytes.
	Size int64
	// Mode holds the type and permission bits.
	Mode fs.FileMode
	// UID is the owning user id, -1 when unknown.
	UID int64
	// GID is the owning group id, -1 when unknown.
	GID int64
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Mode.IsDir() }

// Name returns the final path element.
func (e Entry) Name() string { return filepath.Base(e.Path) }

// Visit is yielded once per directory. Files holds the immediate
// non-directory children in lexical order; subdirectories arrive as later
// visits of their own.
type Visit struct {
	// Dir is the directory's own entry.
	Dir Entry
	// Files are symlinks, regular files and any other non-directory children.
	Files []Entry
	// ReadErr is set when the directory listing failed. Files then holds
	// whatever was read before the failure.
	ReadErr error
}

// SkipFunc receives entries the walker could not inspect.
type SkipFunc func(path string, err error)

func newEntry(path string, info fs.FileInfo) Entry {
	uid, gid := ownerOf(info)

	return Entry{
		Path: path,
		Size: info.Size(),
		Mode: info.Mode(),
		UID:  uid,
		GID:  gid,
	}
}

// Walk returns a lazy depth-first traversal of root. Directories are visited
// in lexical order using an explicit stack, so deep trees do not grow the
// call stack. Symlinks are reported as files and never descended into.
//
// The root itself is resolved with os.Stat so a symlinked root is walked; every
// other entry uses os.Lstat. Entries that cannot be stat'ed are passed to
// onSkip and left out. A directory whose listing fails is still yielded so its
// own metadata is recorded.
func Walk(root string, onSkip SkipFunc) iter.Seq[Visit] {
	if onSkip == nil {
		onSkip = func(string, error) {}
	}

	return func(yield func(Visit) bool) {
		info, err := os.Stat(root)
		if err != nil {
			onSkip(root, err)

			return
		}

		if !info.IsDir() {
			return
		}

		stack := []Entry{newEntry(root, info)}

		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			visit, subdirs := readDir(dir, onSkip)
			if !yield(visit) {
				return
			}

			// Push in reverse so the lexically first subdirectory is popped first.
			slices.Reverse(subdirs)
			stack = append(stack, subdirs...)
		}
	}
}

// readDir lists dir and splits its children into files and subdirectories.
func readDir(dir Entry, onSkip SkipFunc) (Visit, []Entry) {
	visit := Visit{Dir: dir}

	// os.ReadDir sorts by name and returns the entries read before any error.
	children, err := os.ReadDir(dir.Path)
	if err != nil {
		visit.ReadErr = err
		onSkip(dir.Path, err)
	}

	var subdirs []Entry

	for _, child := range children {
		path := filepath.Join(dir.Path, child.Name())

		info, err := os.Lstat(path)
		if err != nil {
			onSkip(path, err)

			continue
		}

		entry := newEntry(path, info)
		if entry.IsDir() {
			subdirs = append(subdirs, entry)
		} else {
			visit.Files = append(visit.Files, entry)
		}
	}

	return visit, subdirs
}
