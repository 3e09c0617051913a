package data

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

//go:embed data-files
var dataFilesRoot embed.FS

//go:embed repo
var repoRoot embed.FS

//go:embed services
var servicesRoot embed.FS

const dataBasePath = "data-files"

// BPMNTestDirectory is the directory, within BPMNResources, that holds the test processes.
const BPMNTestDirectory = "test"

// DataServicePackage is the Java package path of the data-service resources added to the test WAR.
const DataServicePackage = "org/kie/tests/wb/base/services/data"

// BPMNResources returns the bundled process definitions, rooted so that BPMNTestDirectory is at
// the top level.
func BPMNResources() fs.FS {
	sub, _ := fs.Sub(repoRoot, "repo")
	return sub
}

// DataServiceResources returns a tree with DataServicePackage at its root level.
func DataServiceResources() fs.FS {
	sub, _ := fs.Sub(servicesRoot, "services")
	return sub
}

// SourceInfo is JSON or YAML data read from a file after constants and parameters were expanded.
// A parameterized file yields one SourceInfo per parameter set.
type SourceInfo struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

// ParseInto decodes the data with ParseJSONOrYAML.
func (s SourceInfo) ParseInto(target interface{}) error {
	if err := ParseJSONOrYAML(s.Data, target); err != nil {
		return fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return nil
}

// ParamsString describes the parameter set as "(k=v,...)" in key order, or "" if there is none.
// String values appear unquoted; other values as JSON.
func (s SourceInfo) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := s.Params[k]
		if v.IsString() {
			parts = append(parts, k+"="+v.StringValue())
		} else {
			parts = append(parts, k+"="+v.JSONString())
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// LoadDataFile reads one file below data-files and expands its substitutions.
func LoadDataFile(filePath string) ([]SourceInfo, error) {
	raw, err := dataFilesRoot.ReadFile(dataBasePath + "/" + filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(raw)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	for i := range sources {
		sources[i].FilePath = filePath
		sources[i].BaseName = path.Base(filePath)
	}
	return sources, nil
}

// LoadAllDataFiles reads every file in a directory below data-files, in name order.
func LoadAllDataFiles(dir string) ([]SourceInfo, error) {
	entries, err := dataFilesRoot.ReadDir(dataBasePath + "/" + dir)
	if err != nil {
		return nil, err
	}
	var ret []SourceInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sources, err := LoadDataFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, err
		}
		ret = append(ret, sources...)
	}
	return ret, nil
}
