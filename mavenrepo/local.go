package mavenrepo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// LocalRepository is a Maven repository on the local filesystem, laid out as ~/.m2/repository is.
type LocalRepository struct {
	root string
	now  func() time.Time
}

// DefaultLocalRepositoryPath returns the expanded path of ~/.m2/repository.
func DefaultLocalRepositoryPath() (string, error) {
	return homedir.Expand(filepath.Join("~", ".m2", "repository"))
}

// NewLocalRepository returns a repository rooted at root, which may start with "~". If root is
// empty, the user's default local repository is used.
func NewLocalRepository(root string) (*LocalRepository, error) {
	var err error
	if root == "" {
		root, err = DefaultLocalRepositoryPath()
	} else {
		root, err = homedir.Expand(root)
	}
	if err != nil {
		return nil, fmt.Errorf("could not determine local repository path: %w", err)
	}
	return &LocalRepository{root: root, now: time.Now}, nil
}

// Root is the repository's directory.
func (l *LocalRepository) Root() string { return l.root }

func (l *LocalRepository) filePath(slashPath string) string {
	return filepath.Join(l.root, filepath.FromSlash(slashPath))
}

func (l *LocalRepository) Deploy(_ context.Context, artifact Artifact, data []byte) error {
	if err := artifact.validate(); err != nil {
		return err
	}
	target := l.filePath(artifact.Path())
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("could not install %s: %w", artifact, err)
	}
	if err := os.WriteFile(target+".sha1", []byte(sha1Hex(data)), 0644); err != nil { //nolint:gosec
		return err
	}

	metadataPath := l.filePath(artifact.ArtifactDir() + "/" + localMetadataFileName)
	existing, err := os.ReadFile(metadataPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merged, err := mergeMetadata(existing, artifact, l.now())
	if err != nil {
		return fmt.Errorf("invalid metadata in %s: %w", metadataPath, err)
	}
	return os.WriteFile(metadataPath, merged, 0644) //nolint:gosec
}

// ResolveFile returns the path of an installed artifact, or an error if it is not installed.
func (l *LocalRepository) ResolveFile(artifact Artifact) (string, error) {
	if err := artifact.validate(); err != nil {
		return "", err
	}
	p := l.filePath(artifact.Path())
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("artifact %s is not in the local repository %s", artifact, l.root)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", p)
	}
	return p, nil
}

// Open opens an installed artifact for reading.
func (l *LocalRepository) Open(artifact Artifact) (io.ReadCloser, error) {
	p, err := l.ResolveFile(artifact)
	if err != nil {
		return nil, err
	}
	return os.Open(p) //nolint:gosec
}
