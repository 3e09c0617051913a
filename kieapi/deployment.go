package kieapi

// DeploymentUnit is the deployment resource's view of a kjar deployment.
type DeploymentUnit struct {
	GroupID      string           `xml:"groupId" json:"groupId"`
	ArtifactID   string           `xml:"artifactId" json:"artifactId"`
	Version      string           `xml:"version" json:"version"`
	KBaseName    string           `xml:"kbaseName,omitempty" json:"kbaseName,omitempty"`
	KSessionName string           `xml:"ksessionName,omitempty" json:"ksessionName,omitempty"`
	Strategy     RuntimeStrategy  `xml:"strategy,omitempty" json:"strategy,omitempty"`
	Status       DeploymentStatus `xml:"status,omitempty" json:"status,omitempty"`
}

func (DeploymentUnit) XMLRootName() string { return "deployment-unit" }

// Identifier returns the deployment id the server would assign to this unit.
func (u DeploymentUnit) Identifier() string {
	return DeploymentIdentifier(u.GroupID, u.ArtifactID, u.Version, u.KBaseName, u.KSessionName)
}

// DeploymentUnitList is returned by the deployment list resource.
type DeploymentUnitList struct {
	Units []DeploymentUnit `xml:"deployment-unit" json:"deploymentUnitList"`
}

func (DeploymentUnitList) XMLRootName() string { return "deployment-unit-list" }

// Find returns the unit with the given identifier.
func (l DeploymentUnitList) Find(identifier string) (DeploymentUnit, bool) {
	for _, u := range l.Units {
		if u.Identifier() == identifier {
			return u, true
		}
	}
	return DeploymentUnit{}, false
}

// DeploymentJobResult acknowledges a deploy or undeploy request. The job itself runs asynchronously
// on the server, so Success only means that it was accepted.
type DeploymentJobResult struct {
	JobID          string         `xml:"jobId,omitempty" json:"jobId,omitempty"`
	Operation      string         `xml:"operation" json:"operation"`
	DeploymentUnit DeploymentUnit `xml:"deploymentUnit" json:"deploymentUnit"`
	Success        bool           `xml:"success" json:"success"`
	Explanation    string         `xml:"explanation,omitempty" json:"explanation,omitempty"`
}

func (DeploymentJobResult) XMLRootName() string { return "deployment-job-result" }

const (
	OperationDeploy   = "DEPLOY"
	OperationUndeploy = "UNDEPLOY"
)
