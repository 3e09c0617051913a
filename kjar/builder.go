package kjar

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// MessageLevel is the severity of a build message.
type MessageLevel string

const (
	LevelError   MessageLevel = "ERROR"
	LevelWarning MessageLevel = "WARNING"
)

// Message is a problem found while building.
type Message struct {
	Level MessageLevel
	Path  string
	Text  string
}

func (m Message) String() string {
	if m.Path == "" {
		return fmt.Sprintf("[%s] %s", m.Level, m.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", m.Level, m.Path, m.Text)
}

// Results are the messages of one build. Any message at all means the build is not usable.
type Results struct {
	Messages []Message
}

func (r *Results) add(level MessageLevel, path, format string, args ...any) {
	r.Messages = append(r.Messages, Message{Level: level, Path: path, Text: fmt.Sprintf(format, args...)})
}

// Err returns an error listing the messages, or nil if there are none.
func (r *Results) Err() error {
	if len(r.Messages) == 0 {
		return nil
	}
	lines := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		lines = append(lines, m.String())
	}
	return fmt.Errorf("kjar build failed:\n%s", strings.Join(lines, "\n"))
}

// KieModule is a built kjar.
type KieModule struct {
	ReleaseID  ReleaseID
	POM        []byte
	Jar        []byte
	ProcessIDs []string
}

// KieBuilder validates a KieFileSystem and packages it.
type KieBuilder struct {
	kfs     *KieFileSystem
	results *Results
	module  *KieModule
}

func NewKieBuilder(kfs *KieFileSystem) *KieBuilder {
	return &KieBuilder{kfs: kfs}
}

// BuildAll checks the kmodule, the pom and every process definition, and packages the jar if
// nothing was wrong.
func (b *KieBuilder) BuildAll() *Results {
	results := &Results{}
	b.results = results
	b.module = nil

	kmoduleXML, ok := b.kfs.Read(KModuleXMLPath)
	var kmodule *KieModuleModel
	if !ok {
		results.add(LevelError, KModuleXMLPath, "kmodule.xml is missing")
	} else {
		var err error
		if kmodule, err = ParseKModuleXML(kmoduleXML); err != nil {
			results.add(LevelError, KModuleXMLPath, "%s", err)
		} else if len(kmodule.KBases) == 0 {
			results.add(LevelWarning, KModuleXMLPath, "no kbase is defined")
		}
	}

	var releaseID ReleaseID
	pomXML, ok := b.kfs.Read(POMXMLPath)
	if !ok {
		results.add(LevelError, POMXMLPath, "pom.xml is missing")
	} else {
		pom, err := parsePOM(pomXML)
		switch {
		case err != nil:
			results.add(LevelError, POMXMLPath, "invalid pom: %s", err)
		case pom.GroupID == "" || pom.ArtifactID == "" || pom.Version == "":
			results.add(LevelError, POMXMLPath, "pom must declare groupId, artifactId and version")
		default:
			releaseID = ReleaseID{GroupID: pom.GroupID, ArtifactID: pom.ArtifactID, Version: pom.Version}
		}
	}

	seen := make(map[string]string)
	var processIDs []string
	for _, p := range b.kfs.Paths() {
		if !isProcessResource(p) {
			continue
		}
		if kmodule != nil {
			if kbase := kbaseOf(p); kbase != "" && kmodule.KBase(kbase) == nil {
				results.add(LevelWarning, p, "folder %s is not a kbase in kmodule.xml", kbase)
			}
		}
		content, _ := b.kfs.Read(p)
		ids, err := processIDsOf(content)
		if err != nil {
			results.add(LevelError, p, "%s", err)
			continue
		}
		if len(ids) == 0 {
			results.add(LevelError, p, "no process is defined")
		}
		for _, id := range ids {
			if other, dup := seen[id]; dup {
				results.add(LevelError, p, "process id %s is also defined in %s", id, other)
				continue
			}
			seen[id] = p
			processIDs = append(processIDs, id)
		}
	}

	if len(results.Messages) != 0 {
		return results
	}
	jar, err := b.packageJar(releaseID, kmoduleXML, pomXML)
	if err != nil {
		results.add(LevelError, "", "could not write jar: %s", err)
		return results
	}
	sort.Strings(processIDs)
	b.module = &KieModule{ReleaseID: releaseID, POM: pomXML, Jar: jar, ProcessIDs: processIDs}
	return results
}

// KieModule returns the result of the last successful BuildAll.
func (b *KieBuilder) KieModule() (*KieModule, error) {
	if b.results == nil {
		return nil, errors.New("BuildAll has not been called")
	}
	if err := b.results.Err(); err != nil {
		return nil, err
	}
	return b.module, nil
}

func isProcessResource(p string) bool {
	return strings.HasPrefix(p, resourcesRoot) && (strings.HasSuffix(p, ".bpmn2") || strings.HasSuffix(p, ".bpmn"))
}

func kbaseOf(p string) string {
	rel := strings.TrimPrefix(p, resourcesRoot)
	if i := strings.Index(rel, "/"); i > 0 {
		return rel[:i]
	}
	return ""
}

// processIDsOf reads the whole document, so that malformed XML is reported, and returns the ids of
// its process elements.
func processIDsOf(content []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var ids []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "process" {
			for _, a := range start.Attr {
				if a.Name.Local == "id" && a.Name.Space == "" && a.Value != "" {
					ids = append(ids, a.Value)
				}
			}
		}
	}
}

type jarEntry struct {
	name    string
	content []byte
}

func (b *KieBuilder) packageJar(releaseID ReleaseID, kmoduleXML, pomXML []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mavenDir := path.Join("META-INF", "maven", releaseID.GroupID, releaseID.ArtifactID)
	entries := []jarEntry{
		{"META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\r\nCreated-By: kie-remote-tests\r\n\r\n")},
		{"META-INF/kmodule.xml", kmoduleXML},
		{mavenDir + "/pom.xml", pomXML},
		{mavenDir + "/pom.properties", []byte(fmt.Sprintf("groupId=%s\nartifactId=%s\nversion=%s\n",
			releaseID.GroupID, releaseID.ArtifactID, releaseID.Version))},
	}
	for _, p := range b.kfs.Paths() {
		if p == KModuleXMLPath || !strings.HasPrefix(p, resourcesRoot) {
			continue
		}
		content, _ := b.kfs.Read(p)
		entries = append(entries, jarEntry{strings.TrimPrefix(p, resourcesRoot), content})
	}
	for _, e := range entries {
		f, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(e.content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
