package kjar

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"
)

// CreateKieJar builds a kjar holding the given processes in the unit's kbase.
func CreateKieJar(unit DeploymentUnit, resources []BPMNResource) (*KieModule, error) {
	kmodule, err := TestKieModuleModel(unit.KBaseName, unit.KSessionName).ToXML()
	if err != nil {
		return nil, err
	}
	kfs := NewKieFileSystem().
		WriteKModuleXML(kmodule).
		WritePOMXML(GetPOM(unit.ReleaseID))
	for _, r := range resources {
		kfs.Write(ResourcePath(unit.KBaseName, r.Name), r.Content)
	}
	builder := NewKieBuilder(kfs)
	builder.BuildAll()
	return builder.KieModule()
}

// DeployKjarToMaven builds the kjar for unit from the resources in dir of fsys and publishes its
// jar and pom to repo.
func DeployKjarToMaven(
	ctx context.Context,
	repo mavenrepo.Repository,
	unit DeploymentUnit,
	fsys fs.FS,
	dir string,
	logger framework.Logger,
) (*KieModule, error) {
	logger = framework.LoggerOrNull(logger)
	resources, err := LoadBPMNResources(fsys, dir)
	if err != nil {
		return nil, err
	}
	module, err := CreateKieJar(unit, resources)
	if err != nil {
		return nil, err
	}
	artifact := unit.Artifact()
	if err := repo.Deploy(ctx, artifact, module.Jar); err != nil {
		return nil, fmt.Errorf("unable to deploy kjar to maven: %w", err)
	}
	if err := repo.Deploy(ctx, artifact.POM(), module.POM); err != nil {
		return nil, fmt.Errorf("unable to deploy kjar pom to maven: %w", err)
	}
	logger.Printf("Deployed kjar %s with processes %v", artifact, module.ProcessIDs)
	return module, nil
}
