// Package kube wraps the Kubernetes API with the typed operations the
// operator needs: a bounded watch subscription over MongoDBCluster objects,
// CRUD on the three derived resources (Service, StatefulSet, Secret), and
// the one-time installation of the MongoDBCluster custom resource
// definition.
package kube
