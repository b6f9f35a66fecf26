package observable

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher emits a patch document stored on disk each time its contents
// change.
//
// The parent directory is watched rather than the file, so the path keeps
// being followed when an editor saves by renaming a temporary file over it.
// Contents equal to the last emitted document are not emitted again, and an
// empty read is skipped as a file caught between truncate and write.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for the given path. Pair it with
// CodecForPath(path) when the document is not JSON.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: filepath.Clean(path)}
}

// Watch reads the file and emits its contents, then emits them again after
// every write, create or rename onto the path that leaves different bytes
// behind. Reads that fail because the file is briefly absent are skipped.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch directory of %s: %w", w.path, err)
	}

	initial, err := os.ReadFile(w.path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to read patch file: %w", err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer fsw.Close()

		last := initial
		if !forward(ctx, out, initial) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !w.touches(event) {
					continue
				}
				data, err := os.ReadFile(w.path)
				if err != nil {
					continue
				}
				if len(data) == 0 || bytes.Equal(data, last) {
					continue
				}
				last = data
				if !forward(ctx, out, data) {
					return
				}

			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// touches reports whether event may have left new contents at the path.
func (w *FileWatcher) touches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
