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

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MongoDBClusterSpec defines the desired state of MongoDBCluster.
type MongoDBClusterSpec struct {
	// MongoDB defines the managed replica set workload.
	MongoDB MongoDBSpec `json:"mongodb"`

	// Backups configures the backup storage location and, optionally, a
	// restore to perform when the cluster is first brought up.
	// +optional
	Backups *BackupsSpec `json:"backups,omitempty"`
}

// MongoDBSpec defines the shape of the replica set members.
type MongoDBSpec struct {
	// Replicas is the desired number of replica set members.
	// +kubebuilder:validation:Minimum=1
	// +optional
	Replicas *int32 `json:"replicas,omitempty"`

	// Image overrides the default mongod container image.
	// +optional
	Image string `json:"image,omitempty"`

	// StorageSize is the size of the persistent volume per member.
	// +optional
	// +kubebuilder:validation:Pattern="^([0-9]+)(.+)$"
	StorageSize string `json:"storageSize,omitempty"`

	// StorageClassName is the StorageClass for member volumes.
	// +optional
	StorageClassName *string `json:"storageClassName,omitempty"`

	// Resources defines the compute resource requirements per member.
	// +optional
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`
}

// BackupsSpec selects the backup storage backend.
type BackupsSpec struct {
	// GCS configures Google Cloud Storage as the backup target.
	// +optional
	GCS *GCSSpec `json:"gcs,omitempty"`
}

// GCSSpec configures backup storage in a Google Cloud Storage bucket.
type GCSSpec struct {
	// Bucket is the bucket backup archives are written to.
	// +kubebuilder:validation:MinLength:=1
	Bucket string `json:"bucket"`

	// RestoreBucket overrides Bucket when looking up restore artifacts.
	// +optional
	RestoreBucket string `json:"restoreBucket,omitempty"`

	// Prefix is the object key prefix under which archives live.
	// Defaults to "backups".
	// +optional
	Prefix string `json:"prefix,omitempty"`

	// RestoreFrom names the backup archive to restore into the cluster.
	// The sentinel value "latest" selects the most recently created
	// artifact under the prefix. Empty means no restore is requested.
	// +optional
	RestoreFrom string `json:"restoreFrom,omitempty"`

	// ServiceAccount references the secret holding the storage
	// credentials JSON.
	ServiceAccount ServiceAccountRef `json:"serviceAccount"`
}

// ServiceAccountRef points at the secret key containing service account
// credentials.
type ServiceAccountRef struct {
	SecretKeyRef corev1.SecretKeySelector `json:"secretKeyRef"`
}

// MongoDBClusterStatus defines the observed state of MongoDBCluster.
type MongoDBClusterStatus struct {
	// ObservedGeneration is the most recent generation observed by the
	// operator.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// Conditions represent the latest available observations of the
	// cluster's state.
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced
// +kubebuilder:printcolumn:name="Replicas",type="integer",JSONPath=".spec.mongodb.replicas",description="Desired replica set members"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// MongoDBCluster is the Schema for the mongodbclusters API.
type MongoDBCluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   MongoDBClusterSpec   `json:"spec,omitempty"`
	Status MongoDBClusterStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// MongoDBClusterList contains a list of MongoDBCluster.
type MongoDBClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MongoDBCluster `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MongoDBCluster{}, &MongoDBClusterList{})
}
