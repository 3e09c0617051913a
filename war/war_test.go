package war

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/kjar"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVersion = "6.2.0-SNAPSHOT"

var testUnit = kjar.DeploymentUnit{
	ReleaseID:    kjar.ReleaseID{GroupID: "org.test", ArtifactID: "kjar", Version: "1.0"},
	KBaseName:    "defaultKieBase",
	KSessionName: "defaultKieSession",
}

func zipBytes(t *testing.T, a *Archive) []byte {
	var buf bytes.Buffer
	_, err := a.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestArchiveEntries(t *testing.T) {
	a := NewArchive("x.war")
	a.Add("b.txt", []byte("b")).Add("/a.txt", []byte("a")).Add("b.txt", []byte("bb"))
	assert.Equal(t, []string{"b.txt", "a.txt"}, a.Names())
	assert.True(t, a.Contains("a.txt"))
	data, ok := a.Get("b.txt")
	require.True(t, ok)
	assert.Equal(t, "bb", string(data))

	assert.True(t, a.Delete("b.txt"))
	assert.False(t, a.Delete("b.txt"))
	assert.Equal(t, []string{"a.txt"}, a.Names())
}

func TestArchiveZipRoundTrip(t *testing.T) {
	a := NewArchive("x.war")
	a.Add("WEB-INF/web.xml", []byte("<web-app/>"))
	a.Add("WEB-INF/lib/x.jar", []byte("jar"))

	b, err := ImportZipBytes("copy.war", zipBytes(t, a))
	require.NoError(t, err)
	assert.Equal(t, a.Names(), b.Names())
	data, _ := b.Get("WEB-INF/lib/x.jar")
	assert.Equal(t, "jar", string(data))

	p := filepath.Join(t.TempDir(), "out", "x.war")
	require.NoError(t, a.ExportTo(p))
	c, err := ImportZip("x.war", p)
	require.NoError(t, err)
	assert.Equal(t, a.Names(), c.Names())
}

func TestAddAsLibrariesAndPackage(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib-1.0.jar")
	require.NoError(t, os.WriteFile(jar, []byte("lib"), 0600))

	a := NewArchive("x.war")
	require.NoError(t, a.AddAsLibraries(jar))
	assert.True(t, a.Contains("WEB-INF/lib/lib-1.0.jar"))
	assert.Error(t, a.AddAsLibraries(filepath.Join(dir, "missing.jar")))

	require.NoError(t, a.AddPackage(data.DataServiceResources(), data.DataServicePackage))
	assert.True(t, a.Contains("WEB-INF/classes/"+data.DataServicePackage+"/jaxb.index"))

	assert.Error(t, a.AddPackage(fstest.MapFS{"org/empty/sub/x": {}}, "org/empty"))
	assert.Error(t, a.AddPackage(fstest.MapFS{}, "org/none"))
}

func setUpRepository(t *testing.T) *mavenrepo.LocalRepository {
	repo, err := mavenrepo.NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	dist := NewArchive("dist.war")
	dist.Add("WEB-INF/web.xml", []byte("<web-app/>"))
	dist.Add("WEB-INF/lib/kie-remote-services-"+testVersion+".jar", []byte("old services"))
	dist.Add("WEB-INF/lib/kie-remote-client-"+testVersion+".jar", []byte("old client"))
	dist.Add("WEB-INF/lib/kie-api-"+testVersion+".jar", []byte("api"))
	require.NoError(t, repo.Deploy(ctx, DistributionArtifact("eap6_4", testVersion), zipBytes(t, dist)))

	for _, id := range RemoteArtifactIDs {
		a := mavenrepo.Artifact{GroupID: "org.kie.remote", ArtifactID: id, Version: testVersion}
		require.NoError(t, repo.Deploy(ctx, a, []byte("new "+id)))
	}
	return repo
}

func TestCreateTestWar(t *testing.T) {
	repo := setUpRepository(t)
	published := mavenrepo.MultiRepository{}
	war, err := CreateTestWar(context.Background(), Options{
		Classifier:     "eap6_4",
		ProjectVersion: testVersion,
		Repository:     repo,
		Publish:        published,
		Unit:           testUnit,
	})
	require.NoError(t, err)

	services, ok := war.Get("WEB-INF/lib/kie-remote-services-" + testVersion + ".jar")
	require.True(t, ok)
	assert.Equal(t, "new kie-remote-services", string(services))
	client, ok := war.Get("WEB-INF/lib/kie-remote-client-" + testVersion + ".jar")
	require.True(t, ok)
	assert.Equal(t, "new kie-remote-client", string(client))
	assert.True(t, war.Contains("WEB-INF/lib/kie-api-"+testVersion+".jar"))
	assert.True(t, war.Contains("WEB-INF/classes/"+data.DataServicePackage+"/beans.properties"))

	_, err = repo.ResolveFile(testUnit.Artifact())
	assert.NoError(t, err)
}

func TestCreateTestWarReportsAllMissingJars(t *testing.T) {
	repo, err := mavenrepo.NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	dist := NewArchive("dist.war").Add("WEB-INF/web.xml", []byte("<web-app/>"))
	require.NoError(t, repo.Deploy(context.Background(), DistributionArtifact("tomcat7", testVersion), zipBytes(t, dist)))

	_, err = CreateTestWar(context.Background(), Options{
		Classifier:     "tomcat7",
		ProjectVersion: testVersion,
		Repository:     repo,
		Unit:           testUnit,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kie-remote-services")
	assert.Contains(t, err.Error(), "kie-remote-client")
}

func TestCreateTestWarNeedsDistribution(t *testing.T) {
	repo, err := mavenrepo.NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	_, err = CreateTestWar(context.Background(), Options{
		Classifier:     "eap6_4",
		ProjectVersion: testVersion,
		Repository:     repo,
		SkipKjar:       true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kie-wb-distribution-wars")
}
