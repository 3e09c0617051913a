package kjar

import (
	"fmt"
	"strings"

	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"
)

// ReleaseID is the Maven identity of a kjar.
type ReleaseID struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// ParseReleaseID parses "group:artifact:version".
func ParseReleaseID(s string) (ReleaseID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ReleaseID{}, fmt.Errorf("invalid release id %q, expected group:artifact:version", s)
	}
	return ReleaseID{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
}

func (r ReleaseID) String() string {
	return r.GroupID + ":" + r.ArtifactID + ":" + r.Version
}

// Artifact is the jar artifact for this release.
func (r ReleaseID) Artifact() mavenrepo.Artifact {
	return mavenrepo.Artifact{GroupID: r.GroupID, ArtifactID: r.ArtifactID, Version: r.Version}
}

// DeploymentUnit is a kjar release plus the kbase and ksession the server should use from it.
type DeploymentUnit struct {
	ReleaseID
	KBaseName    string
	KSessionName string
	Strategy     kieapi.RuntimeStrategy
}

// Identifier is the deployment id: g:a:v, or g:a:v:kbase:ksession if both names are set.
func (u DeploymentUnit) Identifier() string {
	return kieapi.DeploymentIdentifier(u.GroupID, u.ArtifactID, u.Version, u.KBaseName, u.KSessionName)
}

// API returns the unit as the deployment resource describes it.
func (u DeploymentUnit) API() kieapi.DeploymentUnit {
	strategy := u.Strategy
	if strategy == "" {
		strategy = kieapi.StrategySingleton
	}
	return kieapi.DeploymentUnit{
		GroupID:      u.GroupID,
		ArtifactID:   u.ArtifactID,
		Version:      u.Version,
		KBaseName:    u.KBaseName,
		KSessionName: u.KSessionName,
		Strategy:     strategy,
	}
}
