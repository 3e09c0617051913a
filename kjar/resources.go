package kjar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

// MinResourceSize is the size a process definition must exceed. Anything smaller is a truncated
// or placeholder file.
const MinResourceSize = 100

// BPMNResource is one process definition to include in a kjar.
type BPMNResource struct {
	Name    string
	Content []byte
}

// LoadBPMNResources reads every file in dir within fsys, in name order. If fsys is nil or has no
// files there, the same directory is read from disk relative to the working directory.
func LoadBPMNResources(fsys fs.FS, dir string) ([]BPMNResource, error) {
	var resources []BPMNResource
	var err error
	if fsys != nil {
		resources, err = readResourceDir(fsys, dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if len(resources) == 0 {
		resources, err = readResourceDir(os.DirFS("."), dir)
		if err != nil {
			return nil, fmt.Errorf("unable to load BPMN resources: %w", err)
		}
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("unable to load BPMN resources: no files in %s", dir)
	}
	return resources, nil
}

func readResourceDir(fsys fs.FS, dir string) ([]BPMNResource, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var ret []BPMNResource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(content) <= MinResourceSize {
			return nil, fmt.Errorf("resource %s is only %d bytes", e.Name(), len(content))
		}
		ret = append(ret, BPMNResource{Name: e.Name(), Content: content})
	}
	return ret, nil
}
