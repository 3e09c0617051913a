package war

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	libDir     = "WEB-INF/lib/"
	classesDir = "WEB-INF/classes/"
)

// Archive is an in-memory zip archive whose entries keep their insertion order.
type Archive struct {
	name    string
	names   []string
	entries map[string][]byte
}

// NewArchive creates an empty archive.
func NewArchive(name string) *Archive {
	return &Archive{name: name, entries: make(map[string][]byte)}
}

// ImportZip reads a zip file from disk into a new archive named name.
func ImportZip(name, zipPath string) (*Archive, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", zipPath, err)
	}
	defer r.Close() //nolint:errcheck
	a := NewArchive(name)
	if err := a.importFiles(r.File); err != nil {
		return nil, fmt.Errorf("could not import %s: %w", zipPath, err)
	}
	return a, nil
}

// ImportZipBytes reads zip data into a new archive named name.
func ImportZipBytes(name string, data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	a := NewArchive(name)
	if err := a.importFiles(r.File); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) importFiles(files []*zip.File) error {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		a.Add(f.Name, data)
	}
	return nil
}

// Name is the archive's file name, such as test.war.
func (a *Archive) Name() string { return a.name }

// Add adds or replaces an entry.
func (a *Archive) Add(name string, data []byte) *Archive {
	name = strings.TrimPrefix(name, "/")
	if _, exists := a.entries[name]; !exists {
		a.names = append(a.names, name)
	}
	a.entries[name] = data
	return a
}

// Delete removes an entry and reports whether it was there.
func (a *Archive) Delete(name string) bool {
	name = strings.TrimPrefix(name, "/")
	if _, exists := a.entries[name]; !exists {
		return false
	}
	delete(a.entries, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the archive has an entry.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[strings.TrimPrefix(name, "/")]
	return ok
}

// Get returns an entry's content.
func (a *Archive) Get(name string) ([]byte, bool) {
	data, ok := a.entries[strings.TrimPrefix(name, "/")]
	return data, ok
}

// Names returns the entry names in insertion order.
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

// AddAsLibraries adds jar files from disk under WEB-INF/lib.
func (a *Archive) AddAsLibraries(files ...string) error {
	for _, f := range files {
		data, err := os.ReadFile(f) //nolint:gosec
		if err != nil {
			return err
		}
		a.Add(libDir+filepath.Base(f), data)
	}
	return nil
}

// AddPackage copies every file below pkgPath in fsys to WEB-INF/classes/<pkgPath>. Subpackages
// are not included.
func (a *Archive) AddPackage(fsys fs.FS, pkgPath string) error {
	pkgPath = strings.Trim(pkgPath, "/")
	entries, err := fs.ReadDir(fsys, pkgPath)
	if err != nil {
		return fmt.Errorf("could not add package %s: %w", pkgPath, err)
	}
	added := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := path.Join(pkgPath, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		a.Add(classesDir+p, data)
		added++
	}
	if added == 0 {
		return fmt.Errorf("package %s has no files", pkgPath)
	}
	return nil
}

// WriteTo writes the archive as zip data.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, name := range a.names {
		method := zip.Deflate
		if strings.HasSuffix(name, ".jar") {
			method = zip.Store
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		if err != nil {
			return cw.n, err
		}
		if _, err := f.Write(a.entries[name]); err != nil {
			return cw.n, err
		}
	}
	err := zw.Close()
	return cw.n, err
}

// ExportTo writes the archive to a file, creating its directory if necessary.
func (a *Archive) ExportTo(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(filePath, buf.Bytes(), 0644) //nolint:gosec
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
