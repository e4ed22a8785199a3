// Package watch reloads a dictionary archive when the file on disk
// changes, using fsnotify.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
)

// Watcher watches a single dictionary archive file and swaps in a freshly
// loaded Dictionary whenever it changes on disk.
type Watcher struct {
	fw   *fsnotify.Watcher
	path string
	mode dictionary.LoadMode

	current *dictionary.Dictionary
}

// New opens fw on the directory containing path (editors and atomic
// writers replace a file via rename, which fsnotify only reports on the
// containing directory, not the file itself) and loads the dictionary
// once up front.
func New(path string, mode dictionary.LoadMode) (*Watcher, error) {
	dict, err := dictionary.LoadArchive(path, mode)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{fw: fw, path: path, mode: mode, current: dict}, nil
}

// Current returns the most recently loaded Dictionary.
func (w *Watcher) Current() *dictionary.Dictionary { return w.current }

// Run blocks, reloading the dictionary on every write or create
// event that targets path, until done is closed or an unrecoverable
// error occurs. Call it in a goroutine and read Current from the main
// goroutine only after a reload notification.
func (w *Watcher) Run(done <-chan struct{}, onReload func(*dictionary.Dictionary)) error {
	var pending *time.Timer
	for {
		select {
		case <-done:
			return w.fw.Close()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(300*time.Millisecond, func() {
				dict, err := dictionary.LoadArchive(w.path, w.mode)
				if err != nil {
					fmt.Fprintf(os.Stderr, "[watch] reload %s failed: %v\n", w.path, err)
					return
				}
				w.current = dict
				if onReload != nil {
					onReload(dict)
				}
			})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "[watch] error: %v\n", err)
		}
	}
}
