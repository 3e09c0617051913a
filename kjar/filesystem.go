package kjar

import (
	"sort"
	"strings"
)

const (
	KModuleXMLPath = "src/main/resources/META-INF/kmodule.xml"
	POMXMLPath     = "pom.xml"
	resourcesRoot  = "src/main/resources/"
)

// KieFileSystem is the in-memory source tree of a kjar, in Maven project layout.
type KieFileSystem struct {
	files map[string][]byte
}

func NewKieFileSystem() *KieFileSystem {
	return &KieFileSystem{files: make(map[string][]byte)}
}

// Write adds or replaces a file. Leading slashes in the path are ignored.
func (k *KieFileSystem) Write(path string, content []byte) *KieFileSystem {
	k.files[strings.TrimPrefix(path, "/")] = content
	return k
}

func (k *KieFileSystem) WriteKModuleXML(content string) *KieFileSystem {
	return k.Write(KModuleXMLPath, []byte(content))
}

func (k *KieFileSystem) WritePOMXML(content string) *KieFileSystem {
	return k.Write(POMXMLPath, []byte(content))
}

// Read returns a file's content.
func (k *KieFileSystem) Read(path string) ([]byte, bool) {
	data, ok := k.files[strings.TrimPrefix(path, "/")]
	return data, ok
}

// Paths returns all file paths in sorted order.
func (k *KieFileSystem) Paths() []string {
	ret := make([]string, 0, len(k.files))
	for p := range k.files {
		ret = append(ret, p)
	}
	sort.Strings(ret)
	return ret
}

// ResourcePath is where a resource named name belongs in the given kbase.
func ResourcePath(kbaseName, name string) string {
	return resourcesRoot + kbaseName + "/" + name
}
