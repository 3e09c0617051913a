package mavenrepo

import (
	"context"
	"encoding/xml"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3RepositoryRequiresBucket(t *testing.T) {
	_, err := NewS3Repository(S3Config{}, nil)
	assert.Error(t, err)
}

func TestS3RepositoryDeploy(t *testing.T) {
	remote := newFakeRemote()
	httphelpers.WithServer(remote.handler(), func(server *httptest.Server) {
		repo, err := NewS3Repository(S3Config{
			Bucket:          "builds",
			Prefix:          "/maven/releases/",
			Endpoint:        server.URL,
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}, nil)
		require.NoError(t, err)
		repo.now = fixedTime

		require.NoError(t, repo.Deploy(context.Background(), testKjar, []byte("jar-data")))
		require.NoError(t, repo.Deploy(context.Background(), testKjar.POM(), []byte("<project/>")))

		jar, ok := remote.file("/builds/maven/releases/org/test/kjar/1.0/kjar-1.0.jar")
		require.True(t, ok)
		assert.Equal(t, "jar-data", string(jar))
		_, ok = remote.file("/builds/maven/releases/org/test/kjar/1.0/kjar-1.0.pom.sha1")
		assert.True(t, ok)

		metadataBytes, ok := remote.file("/builds/maven/releases/org/test/kjar/maven-metadata.xml")
		require.True(t, ok)
		var m metadata
		require.NoError(t, xml.Unmarshal(metadataBytes, &m))
		assert.Equal(t, []string{"1.0"}, m.Versioning.Versions)
	})
}
