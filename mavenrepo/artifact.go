package mavenrepo

import (
	"fmt"
	"path"
	"strings"
)

// DefaultPackaging is used when an Artifact has no Packaging.
const DefaultPackaging = "jar"

// Artifact identifies one file in a Maven repository.
type Artifact struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string
	Classifier string
}

// ParseCoordinates parses Maven coordinates in any of the forms g:a, g:a:v, g:a:p:v or
// g:a:p:c:v.
func ParseCoordinates(s string) (Artifact, error) {
	parts := strings.Split(s, ":")
	for _, p := range parts {
		if p == "" {
			return Artifact{}, fmt.Errorf("invalid coordinates %q: empty element", s)
		}
	}
	switch len(parts) {
	case 2:
		return Artifact{GroupID: parts[0], ArtifactID: parts[1]}, nil
	case 3:
		return Artifact{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 4:
		return Artifact{GroupID: parts[0], ArtifactID: parts[1], Packaging: parts[2], Version: parts[3]}, nil
	case 5:
		return Artifact{GroupID: parts[0], ArtifactID: parts[1], Packaging: parts[2], Classifier: parts[3],
			Version: parts[4]}, nil
	}
	return Artifact{}, fmt.Errorf("invalid coordinates %q: expected 2 to 5 elements", s)
}

// WithPackaging returns a copy of the artifact with another packaging and no classifier, such as
// the pom that accompanies a jar.
func (a Artifact) WithPackaging(packaging string) Artifact {
	a.Packaging = packaging
	a.Classifier = ""
	return a
}

// WithVersion returns a copy of the artifact with another version.
func (a Artifact) WithVersion(version string) Artifact {
	a.Version = version
	return a
}

// POM returns the artifact's pom.
func (a Artifact) POM() Artifact {
	return a.WithPackaging("pom")
}

func (a Artifact) packaging() string {
	if a.Packaging == "" {
		return DefaultPackaging
	}
	return a.Packaging
}

// String returns the coordinates in the g:a:p[:c]:v form accepted by ParseCoordinates.
func (a Artifact) String() string {
	if a.Classifier != "" {
		return strings.Join([]string{a.GroupID, a.ArtifactID, a.packaging(), a.Classifier, a.Version}, ":")
	}
	return strings.Join([]string{a.GroupID, a.ArtifactID, a.packaging(), a.Version}, ":")
}

// FileName is the name of the artifact's file, such as kjar-1.0.jar or
// kie-wb-distribution-wars-6.2.0-eap6_4.war.
func (a Artifact) FileName() string {
	name := a.ArtifactID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return name + "." + a.packaging()
}

// ArtifactDir is the slash-separated directory holding all versions of the artifact.
func (a Artifact) ArtifactDir() string {
	return path.Join(strings.ReplaceAll(a.GroupID, ".", "/"), a.ArtifactID)
}

// Dir is the slash-separated directory holding this version of the artifact.
func (a Artifact) Dir() string {
	return path.Join(a.ArtifactDir(), a.Version)
}

// Path is the artifact's location relative to the repository root.
func (a Artifact) Path() string {
	return path.Join(a.Dir(), a.FileName())
}

func (a Artifact) validate() error {
	if a.GroupID == "" || a.ArtifactID == "" || a.Version == "" {
		return fmt.Errorf("artifact %q needs a group id, artifact id and version", a)
	}
	return nil
}
