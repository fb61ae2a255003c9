/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import "fmt"

const (
	// DefaultReplicas is the replica set size used when the spec leaves
	// it unset.
	DefaultReplicas int32 = 3

	// DefaultBackupPrefix is the object key prefix used when the backup
	// spec leaves it unset.
	DefaultBackupPrefix = "backups"

	// RestoreLatest is the sentinel RestoreFrom value selecting the most
	// recently created backup artifact.
	RestoreLatest = "latest"
)

// ReplicaCount returns the desired number of replica set members,
// applying the default when unset.
func (c *MongoDBCluster) ReplicaCount() int32 {
	if c.Spec.MongoDB.Replicas != nil {
		return *c.Spec.MongoDB.Replicas
	}
	return DefaultReplicas
}

// GCS returns the GCS backup configuration, or nil when backups are not
// configured.
func (c *MongoDBCluster) GCS() *GCSSpec {
	if c.Spec.Backups == nil {
		return nil
	}
	return c.Spec.Backups.GCS
}

// RestoreRequested reports whether the spec declares a restore source.
func (c *MongoDBCluster) RestoreRequested() bool {
	gcs := c.GCS()
	return gcs != nil && gcs.RestoreFrom != ""
}

// ServiceName returns the name of the headless Service fronting the
// replica set members.
func (c *MongoDBCluster) ServiceName() string {
	return c.Name
}

// AdminSecretName returns the name of the Secret holding the operator
// admin credentials for this cluster.
func (c *MongoDBCluster) AdminSecretName() string {
	return AdminSecretNameFor(c.Name)
}

// AdminSecretNameFor returns the admin credentials Secret name for a
// cluster with the given name. Deletion handlers only have the name left,
// so the format is exposed separately from the method.
func AdminSecretNameFor(clusterName string) string {
	return clusterName + "-admin-credentials"
}

// MemberHostname returns the stable DNS name of the replica set member
// with the given ordinal.
func (c *MongoDBCluster) MemberHostname(ordinal int32) string {
	return fmt.Sprintf("%s-%d.%s.%s.svc.cluster.local", c.Name, ordinal, c.ServiceName(), c.Namespace)
}

// RestoreBucketName returns the bucket restore artifacts are read from,
// falling back to the backup bucket when no override is set.
func (g *GCSSpec) RestoreBucketName() string {
	if g.RestoreBucket != "" {
		return g.RestoreBucket
	}
	return g.Bucket
}

// BackupPrefix returns the object key prefix, applying the default when
// unset.
func (g *GCSSpec) BackupPrefix() string {
	if g.Prefix != "" {
		return g.Prefix
	}
	return DefaultBackupPrefix
}
