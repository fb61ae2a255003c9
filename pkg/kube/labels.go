package kube

// Standard Kubernetes label keys following kubernetes.io conventions.
//
// See: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
const (
	// LabelAppName is the standard label key for the application name.
	LabelAppName = "app.kubernetes.io/name"

	// LabelAppInstance is the standard label key for the unique instance name.
	LabelAppInstance = "app.kubernetes.io/instance"

	// LabelAppComponent is the standard label key for the component within
	// the application.
	LabelAppComponent = "app.kubernetes.io/component"

	// LabelAppManagedBy is the standard label key for the tool managing the
	// resource.
	LabelAppManagedBy = "app.kubernetes.io/managed-by"
)

const (
	// AppNameMongoDB is the fixed application name for all managed resources.
	AppNameMongoDB = "mongodb"

	// ComponentMongod identifies the replica set member component.
	ComponentMongod = "mongod"

	// ManagedByOperator identifies the operator managing these resources.
	ManagedByOperator = "mongodb-operator"
)

// BuildStandardLabels returns the label set applied to every resource
// derived from the named cluster. The same set is used as the Service
// selector and the StatefulSet pod selector, so it must stay deterministic
// for a given cluster name.
func BuildStandardLabels(clusterName string) map[string]string {
	return map[string]string{
		LabelAppName:      AppNameMongoDB,
		LabelAppInstance:  clusterName,
		LabelAppComponent: ComponentMongod,
		LabelAppManagedBy: ManagedByOperator,
	}
}
