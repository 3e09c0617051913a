package mavenrepo

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"encoding/xml"
	"time"

	"golang.org/x/exp/slices"
)

const (
	metadataFileName      = "maven-metadata.xml"
	localMetadataFileName = "maven-metadata-local.xml"
	metadataTimeFormat    = "20060102150405"
)

type metadata struct {
	XMLName    xml.Name           `xml:"metadata"`
	GroupID    string             `xml:"groupId"`
	ArtifactID string             `xml:"artifactId"`
	Versioning metadataVersioning `xml:"versioning"`
}

type metadataVersioning struct {
	Latest      string   `xml:"latest,omitempty"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated"`
}

// mergeMetadata adds the artifact's version to an existing artifact-level metadata file, or
// creates one if existing is empty.
func mergeMetadata(existing []byte, a Artifact, now time.Time) ([]byte, error) {
	m := metadata{GroupID: a.GroupID, ArtifactID: a.ArtifactID}
	if len(existing) != 0 {
		if err := xml.Unmarshal(existing, &m); err != nil {
			return nil, err
		}
	}
	if !slices.Contains(m.Versioning.Versions, a.Version) {
		m.Versioning.Versions = append(m.Versioning.Versions, a.Version)
	}
	m.Versioning.Latest = a.Version
	m.Versioning.Release = a.Version
	m.Versioning.LastUpdated = now.UTC().Format(metadataTimeFormat)
	data, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// checksumFiles returns the checksum files that accompany a file at path.
func checksumFiles(path string, data []byte) map[string][]byte {
	return map[string][]byte{
		path + ".sha1": []byte(sha1Hex(data)),
		path + ".md5":  []byte(md5Hex(data)),
	}
}
