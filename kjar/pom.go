package kjar

import (
	"encoding/xml"
	"strings"
)

const pomHeader = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
         xsi:schemaLocation="http://maven.apache.org/POM/4.0.0 http://maven.apache.org/maven-v4_0_0.xsd">
  <modelVersion>4.0.0</modelVersion>

`

// GetPOM returns a minimal pom for the release, listing the given dependencies.
func GetPOM(releaseID ReleaseID, dependencies ...ReleaseID) string {
	var b strings.Builder
	b.WriteString(pomHeader)
	writeCoordinates(&b, "  ", releaseID)
	b.WriteString("\n")
	if len(dependencies) > 0 {
		b.WriteString("  <dependencies>\n")
		for _, dep := range dependencies {
			b.WriteString("    <dependency>\n")
			writeCoordinates(&b, "      ", dep)
			b.WriteString("    </dependency>\n")
		}
		b.WriteString("  </dependencies>\n")
	}
	b.WriteString("</project>\n")
	return b.String()
}

func writeCoordinates(b *strings.Builder, indent string, r ReleaseID) {
	for _, e := range [][2]string{{"groupId", r.GroupID}, {"artifactId", r.ArtifactID}, {"version", r.Version}} {
		b.WriteString(indent + "<" + e[0] + ">")
		_ = xml.EscapeText(b, []byte(e[1]))
		b.WriteString("</" + e[0] + ">\n")
	}
}

type pomModel struct {
	GroupID      string      `xml:"groupId"`
	ArtifactID   string      `xml:"artifactId"`
	Version      string      `xml:"version"`
	Dependencies []ReleaseID `xml:"dependencies>dependency"`
}

func parsePOM(data []byte) (pomModel, error) {
	var p pomModel
	err := xml.Unmarshal(data, &p)
	return p, err
}
