// Package controller converges declared MongoDBCluster objects with their
// derived Kubernetes resources. The EventHandler consumes the lifecycle
// event stream and drives create/update/delete convergence; the
// RestoreChecker periodically applies requested backup restores. Both are
// task.Workers and run on their own runner.
package controller
