package config

import (
	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"
)

// LocalRepository opens the configured local Maven repository, or ~/.m2/repository if none.
func (c Config) LocalRepository() (*mavenrepo.LocalRepository, error) {
	return mavenrepo.NewLocalRepository(c.Repository.Local)
}

// RemoteRepositories returns the configured remote publishing targets, or nil if there are none.
func (c Config) RemoteRepositories(logger framework.Logger) (mavenrepo.Repository, error) {
	var remotes mavenrepo.MultiRepository
	if c.Repository.HTTP.URL != "" {
		remotes = append(remotes, mavenrepo.NewHTTPRepository(
			c.Repository.HTTP.URL, c.Repository.HTTP.User, c.Repository.HTTP.Password, logger))
	}
	if c.Repository.S3.Bucket != "" {
		s3Repo, err := mavenrepo.NewS3Repository(mavenrepo.S3Config{
			Bucket:   c.Repository.S3.Bucket,
			Prefix:   c.Repository.S3.Prefix,
			Region:   c.Repository.S3.Region,
			Endpoint: c.Repository.S3.Endpoint,
		}, logger)
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, s3Repo)
	}
	if len(remotes) == 0 {
		return nil, nil
	}
	return remotes, nil
}

// PublishRepositories returns the local repository together with every remote target.
func (c Config) PublishRepositories(logger framework.Logger) (*mavenrepo.LocalRepository, mavenrepo.Repository, error) {
	local, err := c.LocalRepository()
	if err != nil {
		return nil, nil, err
	}
	remotes, err := c.RemoteRepositories(logger)
	if err != nil {
		return nil, nil, err
	}
	if remotes == nil {
		return local, local, nil
	}
	return local, mavenrepo.MultiRepository{local, remotes}, nil
}
