package mavenrepo

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKjar = Artifact{GroupID: "org.test", ArtifactID: "kjar", Version: "1.0"}

func fixedTime() time.Time {
	return time.Date(2015, time.March, 4, 10, 20, 30, 0, time.UTC)
}

func TestLocalRepositoryDeploy(t *testing.T) {
	root := t.TempDir()
	repo, err := NewLocalRepository(root)
	require.NoError(t, err)
	repo.now = fixedTime

	require.NoError(t, repo.Deploy(context.Background(), testKjar, []byte("jar-data")))
	require.NoError(t, repo.Deploy(context.Background(), testKjar.POM(), []byte("<project/>")))

	jar, err := os.ReadFile(filepath.Join(root, "org", "test", "kjar", "1.0", "kjar-1.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar-data", string(jar))

	sum, err := os.ReadFile(filepath.Join(root, "org", "test", "kjar", "1.0", "kjar-1.0.jar.sha1"))
	require.NoError(t, err)
	assert.Equal(t, sha1Hex([]byte("jar-data")), string(sum))

	metadataBytes, err := os.ReadFile(filepath.Join(root, "org", "test", "kjar", localMetadataFileName))
	require.NoError(t, err)
	var m metadata
	require.NoError(t, xml.Unmarshal(metadataBytes, &m))
	assert.Equal(t, "org.test", m.GroupID)
	assert.Equal(t, []string{"1.0"}, m.Versioning.Versions)
	assert.Equal(t, "20150304102030", m.Versioning.LastUpdated)

	require.NoError(t, repo.Deploy(context.Background(), testKjar.WithVersion("1.1"), []byte("newer")))
	metadataBytes, err = os.ReadFile(filepath.Join(root, "org", "test", "kjar", localMetadataFileName))
	require.NoError(t, err)
	var updated metadata
	require.NoError(t, xml.Unmarshal(metadataBytes, &updated))
	assert.Equal(t, []string{"1.0", "1.1"}, updated.Versioning.Versions)
	assert.Equal(t, "1.1", updated.Versioning.Latest)
}

func TestLocalRepositoryRejectsIncompleteArtifact(t *testing.T) {
	repo, err := NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, repo.Deploy(context.Background(), Artifact{GroupID: "org.test", ArtifactID: "kjar"}, nil))
}

func TestLocalRepositoryResolveAndOpen(t *testing.T) {
	repo, err := NewLocalRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.ResolveFile(testKjar)
	assert.Error(t, err)

	require.NoError(t, repo.Deploy(context.Background(), testKjar, []byte("jar-data")))
	p, err := repo.ResolveFile(testKjar)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.Root(), "org", "test", "kjar", "1.0", "kjar-1.0.jar"), p)

	r, err := repo.Open(testKjar)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "jar-data", string(data))
}

func TestDefaultLocalRepositoryPath(t *testing.T) {
	p, err := DefaultLocalRepositoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".m2", "repository"), filepath.Join(filepath.Base(filepath.Dir(p)), filepath.Base(p)))
	assert.True(t, filepath.IsAbs(p))
}
