package kietests

const (
	// CapabilityDataService means the server was built with the test data service package, which
	// adds the rest/data resources.
	CapabilityDataService = "data-service"

	// CapabilityRemoteAPI means the command execute resources used by the remote session API are
	// available.
	CapabilityRemoteAPI = "remote-api"

	// CapabilityDeploymentAPI means the harness may deploy and undeploy the test unit.
	CapabilityDeploymentAPI = "deployment-api"
)

// Process definitions in the test kjar.
const (
	humanTaskProcessID         = "org.jbpm.humantask"
	scriptTaskProcessID        = "org.jbpm.scripttask"
	scriptTaskVarProcessID     = "org.jbpm.scripttask.var"
	humanTaskVarProcessID      = "org.jbpm.humantask.var"
	objectVariableProcessID    = "org.jbpm.type.var"
	objectVariableInputName    = "myobject"
	objectVariableTypeVariable = "type"
)

// myTypeClassName is the class of the custom object passed to the object variable process.
const myTypeClassName = "org.kie.tests.wb.base.services.data.MyType"
