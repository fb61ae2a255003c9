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
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

func TestReplicaCount(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		replicas *int32
		want     int32
	}{
		"unset uses default":  {replicas: nil, want: DefaultReplicas},
		"explicit value wins": {replicas: ptr.To(int32(5)), want: 5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := &MongoDBCluster{
				Spec: MongoDBClusterSpec{
					MongoDB: MongoDBSpec{Replicas: tc.replicas},
				},
			}
			if got := c.ReplicaCount(); got != tc.want {
				t.Errorf("ReplicaCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRestoreRequested(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		backups *BackupsSpec
		want    bool
	}{
		"no backups": {backups: nil, want: false},
		"backups without gcs": {
			backups: &BackupsSpec{},
			want:    false,
		},
		"gcs without restore source": {
			backups: &BackupsSpec{GCS: &GCSSpec{Bucket: "b"}},
			want:    false,
		},
		"explicit restore source": {
			backups: &BackupsSpec{GCS: &GCSSpec{Bucket: "b", RestoreFrom: "some.archive.gz"}},
			want:    true,
		},
		"latest sentinel": {
			backups: &BackupsSpec{GCS: &GCSSpec{Bucket: "b", RestoreFrom: RestoreLatest}},
			want:    true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := &MongoDBCluster{Spec: MongoDBClusterSpec{Backups: tc.backups}}
			if got := c.RestoreRequested(); got != tc.want {
				t.Errorf("RestoreRequested() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMemberHostname(t *testing.T) {
	t.Parallel()

	c := &MongoDBCluster{
		ObjectMeta: metav1.ObjectMeta{Name: "shop", Namespace: "prod"},
	}

	want := "shop-2.shop.prod.svc.cluster.local"
	if got := c.MemberHostname(2); got != want {
		t.Errorf("MemberHostname(2) = %q, want %q", got, want)
	}
}

func TestGCSSpecDefaults(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		spec       GCSSpec
		wantBucket string
		wantPrefix string
	}{
		"defaults": {
			spec:       GCSSpec{Bucket: "primary"},
			wantBucket: "primary",
			wantPrefix: DefaultBackupPrefix,
		},
		"restore bucket override": {
			spec:       GCSSpec{Bucket: "primary", RestoreBucket: "archive", Prefix: "dumps"},
			wantBucket: "archive",
			wantPrefix: "dumps",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := tc.spec.RestoreBucketName(); got != tc.wantBucket {
				t.Errorf("RestoreBucketName() = %q, want %q", got, tc.wantBucket)
			}
			if got := tc.spec.BackupPrefix(); got != tc.wantPrefix {
				t.Errorf("BackupPrefix() = %q, want %q", got, tc.wantPrefix)
			}
		})
	}
}
