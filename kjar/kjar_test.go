package kjar

import (
	"bytes"
	"context"
	"io"
	"testing"
	"testing/fstest"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUnit = DeploymentUnit{
	ReleaseID:    ReleaseID{GroupID: "org.test", ArtifactID: "kjar", Version: "1.0"},
	KBaseName:    "defaultKieBase",
	KSessionName: "defaultKieSession",
}

func TestReleaseID(t *testing.T) {
	r, err := ParseReleaseID("org.test:kjar:1.0")
	require.NoError(t, err)
	assert.Equal(t, testUnit.ReleaseID, r)
	assert.Equal(t, "org.test:kjar:1.0", r.String())
	assert.Equal(t, "org/test/kjar/1.0/kjar-1.0.jar", r.Artifact().Path())

	_, err = ParseReleaseID("org.test:kjar")
	assert.Error(t, err)
}

func TestDeploymentUnitIdentifier(t *testing.T) {
	assert.Equal(t, "org.test:kjar:1.0:defaultKieBase:defaultKieSession", testUnit.Identifier())
	assert.Equal(t, "org.test:kjar:1.0", DeploymentUnit{ReleaseID: testUnit.ReleaseID, KBaseName: "x"}.Identifier())

	api := testUnit.API()
	assert.Equal(t, kieapi.StrategySingleton, api.Strategy)
	assert.Equal(t, testUnit.Identifier(), api.Identifier())
}

func TestKieModuleModelXML(t *testing.T) {
	x, err := TestKieModuleModel("defaultKieBase", "defaultKieSession").ToXML()
	require.NoError(t, err)
	assert.Contains(t, x, `<kmodule xmlns="http://jboss.org/kie/6.0.0/kmodule">`)
	assert.Contains(t, x, `equalsBehavior="equality"`)
	assert.Contains(t, x, `eventProcessingMode="stream"`)
	assert.Contains(t, x, `clockType="realtime"`)

	m, err := ParseKModuleXML([]byte(x))
	require.NoError(t, err)
	kb := m.KBase("defaultKieBase")
	require.NotNil(t, kb)
	assert.True(t, kb.Default)
	require.Len(t, kb.KSessions, 1)
	assert.Equal(t, KieSessionStateful, kb.KSessions[0].Type)
	assert.True(t, kb.KSessions[0].Default)
	assert.Nil(t, m.KBase("other"))
}

func TestGetPOM(t *testing.T) {
	pom := GetPOM(testUnit.ReleaseID)
	assert.Contains(t, pom, "<modelVersion>4.0.0</modelVersion>")
	assert.NotContains(t, pom, "<dependencies>")

	dep := ReleaseID{GroupID: "org.kie.tests", ArtifactID: "types", Version: "2.0"}
	p, err := parsePOM([]byte(GetPOM(testUnit.ReleaseID, dep)))
	require.NoError(t, err)
	assert.Equal(t, "org.test", p.GroupID)
	assert.Equal(t, "kjar", p.ArtifactID)
	assert.Equal(t, "1.0", p.Version)
	assert.Equal(t, []ReleaseID{dep}, p.Dependencies)
}

func TestLoadBundledBPMNResources(t *testing.T) {
	resources, err := LoadBPMNResources(data.BPMNResources(), data.BPMNTestDirectory)
	require.NoError(t, err)
	var names []string
	for _, r := range resources {
		names = append(names, r.Name)
		assert.Greater(t, len(r.Content), MinResourceSize)
	}
	assert.Equal(t, []string{"humanTask.bpmn2", "humanTaskVariable.bpmn2", "objectVariable.bpmn2",
		"scriptTask.bpmn2", "scriptTaskVariable.bpmn2"}, names)
}

func TestLoadBPMNResourcesRejectsSmallFiles(t *testing.T) {
	fsys := fstest.MapFS{"test/tiny.bpmn2": {Data: []byte("<definitions/>")}}
	_, err := LoadBPMNResources(fsys, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tiny.bpmn2")
}

func TestLoadBPMNResourcesFailsWithNothingToLoad(t *testing.T) {
	_, err := LoadBPMNResources(fstest.MapFS{}, "no-such-directory")
	assert.Error(t, err)
}

func TestCreateKieJar(t *testing.T) {
	resources, err := LoadBPMNResources(data.BPMNResources(), data.BPMNTestDirectory)
	require.NoError(t, err)
	module, err := CreateKieJar(testUnit, resources)
	require.NoError(t, err)

	assert.Equal(t, testUnit.ReleaseID, module.ReleaseID)
	assert.Equal(t, []string{"org.jbpm.humantask", "org.jbpm.humantask.var", "org.jbpm.scripttask",
		"org.jbpm.scripttask.var", "org.jbpm.type.var"}, module.ProcessIDs)

	zr, err := zip.NewReader(bytes.NewReader(module.Jar), int64(len(module.Jar)))
	require.NoError(t, err)
	contents := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		_ = r.Close()
		contents[f.Name] = string(b)
	}
	assert.Equal(t, "META-INF/MANIFEST.MF", zr.File[0].Name)
	assert.Contains(t, contents["META-INF/kmodule.xml"], "defaultKieSession")
	assert.Contains(t, contents["META-INF/maven/org.test/kjar/pom.xml"], "<artifactId>kjar</artifactId>")
	assert.Contains(t, contents["META-INF/maven/org.test/kjar/pom.properties"], "version=1.0")
	assert.Contains(t, contents["defaultKieBase/humanTask.bpmn2"], `id="org.jbpm.humantask"`)
}

func TestBuildAllReportsProblems(t *testing.T) {
	process := func(id string) []byte {
		return []byte(`<?xml version="1.0" encoding="UTF-8"?><definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL">` +
			`<process id="` + id + `" name="p"></process></definitions>`)
	}
	kmodule, err := TestKieModuleModel("kb", "ks").ToXML()
	require.NoError(t, err)

	t.Run("missing descriptors", func(t *testing.T) {
		b := NewKieBuilder(NewKieFileSystem())
		results := b.BuildAll()
		require.Len(t, results.Messages, 2)
		_, err := b.KieModule()
		assert.Error(t, err)
	})

	t.Run("duplicate process ids and malformed xml", func(t *testing.T) {
		kfs := NewKieFileSystem().WriteKModuleXML(kmodule).WritePOMXML(GetPOM(testUnit.ReleaseID))
		kfs.Write(ResourcePath("kb", "a.bpmn2"), process("p1"))
		kfs.Write(ResourcePath("kb", "b.bpmn2"), process("p1"))
		kfs.Write(ResourcePath("kb", "c.bpmn2"), []byte("<definitions><process id='x'>"))
		kfs.Write(ResourcePath("kb", "d.bpmn2"), []byte("<definitions/>"))
		results := NewKieBuilder(kfs).BuildAll()
		require.Len(t, results.Messages, 3)
		assert.Contains(t, results.Messages[0].Text, "p1 is also defined in "+ResourcePath("kb", "a.bpmn2"))
		assert.Equal(t, ResourcePath("kb", "c.bpmn2"), results.Messages[1].Path)
		assert.Equal(t, "no process is defined", results.Messages[2].Text)
		assert.Error(t, results.Err())
	})

	t.Run("resource outside any kbase", func(t *testing.T) {
		kfs := NewKieFileSystem().WriteKModuleXML(kmodule).WritePOMXML(GetPOM(testUnit.ReleaseID))
		kfs.Write(ResourcePath("other", "a.bpmn2"), process("p1"))
		results := NewKieBuilder(kfs).BuildAll()
		require.Len(t, results.Messages, 1)
		assert.Equal(t, LevelWarning, results.Messages[0].Level)
	})

	t.Run("valid", func(t *testing.T) {
		kfs := NewKieFileSystem().WriteKModuleXML(kmodule).WritePOMXML(GetPOM(testUnit.ReleaseID))
		kfs.Write(ResourcePath("kb", "a.bpmn2"), process("p1"))
		b := NewKieBuilder(kfs)
		assert.Len(t, b.BuildAll().Messages, 0)
		module, err := b.KieModule()
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, module.ProcessIDs)
	})
}

func TestDeployKjarToMaven(t *testing.T) {
	repo, err := mavenrepo.NewLocalRepository(t.TempDir())
	require.NoError(t, err)

	module, err := DeployKjarToMaven(context.Background(), repo, testUnit, data.BPMNResources(),
		data.BPMNTestDirectory, nil)
	require.NoError(t, err)

	jarPath, err := repo.ResolveFile(testUnit.Artifact())
	require.NoError(t, err)
	assert.FileExists(t, jarPath)
	pomPath, err := repo.ResolveFile(testUnit.Artifact().POM())
	require.NoError(t, err)
	assert.FileExists(t, pomPath)
	assert.NotEmpty(t, module.Jar)
}
