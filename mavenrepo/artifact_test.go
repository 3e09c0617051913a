package mavenrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	for _, p := range []struct {
		in       string
		expected Artifact
	}{
		{"org.test:kjar", Artifact{GroupID: "org.test", ArtifactID: "kjar"}},
		{"org.test:kjar:1.0", Artifact{GroupID: "org.test", ArtifactID: "kjar", Version: "1.0"}},
		{"org.test:kjar:pom:1.0", Artifact{GroupID: "org.test", ArtifactID: "kjar", Packaging: "pom", Version: "1.0"}},
		{
			"org.kie:kie-wb-distribution-wars:war:eap6_4:6.2.0",
			Artifact{GroupID: "org.kie", ArtifactID: "kie-wb-distribution-wars", Packaging: "war",
				Classifier: "eap6_4", Version: "6.2.0"},
		},
	} {
		t.Run(p.in, func(t *testing.T) {
			a, err := ParseCoordinates(p.in)
			require.NoError(t, err)
			assert.Equal(t, p.expected, a)
		})
	}

	for _, bad := range []string{"", "org.test", "a:b:c:d:e:f", "org.test::1.0"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseCoordinates(bad)
			assert.Error(t, err)
		})
	}
}

func TestArtifactPaths(t *testing.T) {
	a := Artifact{GroupID: "org.kie.remote", ArtifactID: "kie-remote-client", Version: "6.2.0"}
	assert.Equal(t, "org/kie/remote/kie-remote-client", a.ArtifactDir())
	assert.Equal(t, "org/kie/remote/kie-remote-client/6.2.0/kie-remote-client-6.2.0.jar", a.Path())
	assert.Equal(t, "org.kie.remote:kie-remote-client:jar:6.2.0", a.String())
	assert.Equal(t, "kie-remote-client-6.2.0.pom", a.POM().FileName())

	war := Artifact{GroupID: "org.kie", ArtifactID: "kie-wb-distribution-wars", Version: "6.2.0",
		Packaging: "war", Classifier: "eap6_4"}
	assert.Equal(t, "kie-wb-distribution-wars-6.2.0-eap6_4.war", war.FileName())
	assert.Equal(t, "org.kie:kie-wb-distribution-wars:war:eap6_4:6.2.0", war.String())

	parsed, err := ParseCoordinates(war.String())
	require.NoError(t, err)
	assert.Equal(t, war, parsed)
}
