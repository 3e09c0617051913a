package mavenrepo

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// Repository is somewhere an artifact can be published.
type Repository interface {
	// Deploy stores the artifact's file and updates the repository's metadata for it.
	Deploy(ctx context.Context, artifact Artifact, data []byte) error
}

// MultiRepository deploys to every one of its repositories. A failure in one does not prevent the
// others from being tried.
type MultiRepository []Repository

func (m MultiRepository) Deploy(ctx context.Context, artifact Artifact, data []byte) error {
	var result *multierror.Error
	for _, r := range m {
		if err := r.Deploy(ctx, artifact, data); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
