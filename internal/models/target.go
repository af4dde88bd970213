package models

// NotApplicable is the sentinel used in place of registry, cluster and service
// identifiers for repositories that are not deployed as containers (for
// example a static site hosted outside ECS).
const NotApplicable = "N/A"

// DeploymentTarget is the resolved application/registry/cluster/service tuple
// for a single application repository.
type DeploymentTarget struct {
	// AppName is the application name used in the dispatch payload.
	AppName string `yaml:"app_name" json:"app_name"`

	// Registry is the ECR repository URI images are pushed to.
	Registry string `yaml:"registry" json:"ecr_repository"`

	// Cluster is the ECS cluster the service runs in.
	Cluster string `yaml:"cluster" json:"ecs_cluster"`

	// Service is the ECS service name inside Cluster.
	Service string `yaml:"service" json:"ecs_service"`
}

// Containerized reports whether t is deployed to a container cluster, i.e.
// none of its deployment fields carry the NotApplicable sentinel.
func (t DeploymentTarget) Containerized() bool {
	return t.Registry != NotApplicable &&
		t.Cluster != NotApplicable &&
		t.Service != NotApplicable
}
