package war

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/kjar"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"

	"github.com/hashicorp/go-multierror"
)

const (
	distributionGroupID    = "org.kie"
	distributionArtifactID = "kie-wb-distribution-wars"
	remoteGroupID          = "org.kie.remote"
)

// RemoteArtifactIDs are the jars of the remote API that the test WAR takes from the local build
// instead of from the distribution.
var RemoteArtifactIDs = []string{"kie-remote-services", "kie-remote-client"} //nolint:gochecknoglobals

// Options control CreateTestWar.
type Options struct {
	// Classifier selects the distribution flavor, such as eap6_4 or tomcat7.
	Classifier string
	// ProjectVersion is the version of both the distribution and the remote API jars.
	ProjectVersion string
	// Repository is where the distribution and remote API jars are resolved from, and where the
	// test kjar is installed unless Publish is set.
	Repository *mavenrepo.LocalRepository
	// Publish receives the test kjar in addition to Repository, if set.
	Publish mavenrepo.Repository
	// Unit is the test kjar to build.
	Unit kjar.DeploymentUnit
	// Processes holds the process definitions; defaults to the bundled ones.
	Processes fs.FS
	// DataService holds the data-service package; defaults to the bundled one.
	DataService fs.FS
	// SkipKjar disables building and publishing the test kjar.
	SkipKjar bool
	Logger   framework.Logger
}

// DistributionArtifact is the workbench WAR this test WAR is derived from.
func DistributionArtifact(classifier, version string) mavenrepo.Artifact {
	return mavenrepo.Artifact{
		GroupID:    distributionGroupID,
		ArtifactID: distributionArtifactID,
		Packaging:  "war",
		Classifier: classifier,
		Version:    version,
	}
}

// CreateTestWar imports the distribution WAR, replaces its remote API jars, adds the data-service
// package and deploys the test kjar. The returned archive is not written anywhere; use ExportTo.
func CreateTestWar(ctx context.Context, opts Options) (*Archive, error) {
	logger := framework.LoggerOrNull(opts.Logger)
	if opts.Repository == nil {
		return nil, fmt.Errorf("a local repository is required")
	}
	if opts.ProjectVersion == "" || opts.Classifier == "" {
		return nil, fmt.Errorf("classifier and project version are required")
	}

	distribution := DistributionArtifact(opts.Classifier, opts.ProjectVersion)
	warFile, err := opts.Repository.ResolveFile(distribution)
	if err != nil {
		return nil, err
	}
	logger.Printf("Importing %s", warFile)
	war, err := ImportZip("test.war", warFile)
	if err != nil {
		return nil, err
	}

	var libraries []string
	var resolveErrors *multierror.Error
	for _, id := range RemoteArtifactIDs {
		old := mavenrepo.Artifact{GroupID: remoteGroupID, ArtifactID: id, Version: opts.ProjectVersion}
		if !war.Delete(libDir + old.FileName()) {
			logger.Printf("%s did not contain %s", distribution, old.FileName())
		}
		f, err := opts.Repository.ResolveFile(old)
		if err != nil {
			resolveErrors = multierror.Append(resolveErrors, err)
			continue
		}
		libraries = append(libraries, f)
	}
	if err := resolveErrors.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := war.AddAsLibraries(libraries...); err != nil {
		return nil, err
	}

	dataService := opts.DataService
	if dataService == nil {
		dataService = data.DataServiceResources()
	}
	if err := war.AddPackage(dataService, data.DataServicePackage); err != nil {
		return nil, err
	}

	if !opts.SkipKjar {
		var target mavenrepo.Repository = opts.Repository
		if opts.Publish != nil {
			target = mavenrepo.MultiRepository{opts.Repository, opts.Publish}
		}
		processes := opts.Processes
		if processes == nil {
			processes = data.BPMNResources()
		}
		if _, err := kjar.DeployKjarToMaven(ctx, target, opts.Unit, processes, data.BPMNTestDirectory, logger); err != nil {
			return nil, err
		}
	}
	return war, nil
}
