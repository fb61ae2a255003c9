package controller_test

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
	"github.com/numtide/mongodb-operator/pkg/backup"
	"github.com/numtide/mongodb-operator/pkg/controller"
	"github.com/numtide/mongodb-operator/pkg/kube"
)

// emptyStore is a backup store with no artifacts.
type emptyStore struct{}

func (emptyStore) ListArtifacts(context.Context, string, string) ([]backup.Artifact, error) {
	return nil, nil
}

func (emptyStore) Download(context.Context, string, string, string) error {
	return nil
}

func newRestoreCluster(name, namespace string) *mongodbv1alpha1.MongoDBCluster {
	cluster := newCluster(name, namespace)
	cluster.Spec.Backups = &mongodbv1alpha1.BackupsSpec{
		GCS: &mongodbv1alpha1.GCSSpec{
			Bucket:      "shop-backups",
			RestoreFrom: mongodbv1alpha1.RestoreLatest,
			ServiceAccount: mongodbv1alpha1.ServiceAccountRef{
				SecretKeyRef: corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "gcs-creds"},
					Key:                  "json",
				},
			},
		},
	}
	return cluster
}

func newCredentialsSecret(namespace string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "gcs-creds", Namespace: namespace},
		Data:       map[string][]byte{"json": []byte(`{"type":"service_account"}`)},
	}
}

func TestRestoreCheckerChecksEachClusterOnce(t *testing.T) {
	t.Parallel()

	kubeClient := kube.NewClient(fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(newRestoreCluster("shop", "prod"), newCredentialsSecret("prod")).
		Build(), logr.Discard())

	var factoryCalls int
	restorer := &backup.Restorer{
		Kube: kubeClient,
		NewStore: func(context.Context, []byte) (backup.Store, error) {
			factoryCalls++
			return emptyStore{}, nil
		},
		Log: logr.Discard(),
	}
	checker := controller.NewRestoreChecker(kubeClient, restorer, logr.Discard())

	// A "latest" request against an empty bucket completes the check.
	if err := checker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if factoryCalls != 1 {
		t.Fatalf("store factory calls after first cycle = %d, want 1", factoryCalls)
	}

	// Later cycles must not look at the same cluster again.
	if err := checker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if factoryCalls != 1 {
		t.Errorf("store factory calls after second cycle = %d, want 1", factoryCalls)
	}
}

func TestRestoreCheckerRetriesFailedCluster(t *testing.T) {
	t.Parallel()

	// The credentials secret is missing at first, so the restore attempt
	// fails and the cluster stays unchecked.
	kubeClient := kube.NewClient(fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(newRestoreCluster("shop", "prod")).
		Build(), logr.Discard())

	var factoryCalls int
	restorer := &backup.Restorer{
		Kube: kubeClient,
		NewStore: func(context.Context, []byte) (backup.Store, error) {
			factoryCalls++
			return emptyStore{}, nil
		},
		Log: logr.Discard(),
	}
	checker := controller.NewRestoreChecker(kubeClient, restorer, logr.Discard())

	if err := checker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if factoryCalls != 0 {
		t.Fatalf("store factory calls with missing secret = %d, want 0", factoryCalls)
	}

	if err := kubeClient.Create(context.Background(), newCredentialsSecret("prod")); err != nil {
		t.Fatalf("Create secret: %v", err)
	}

	// The next cycle retries and completes the check.
	if err := checker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if factoryCalls != 1 {
		t.Errorf("store factory calls after retry = %d, want 1", factoryCalls)
	}
}

func TestRestoreCheckerSkipsClustersWithoutRestoreSource(t *testing.T) {
	t.Parallel()

	kubeClient := kube.NewClient(fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(newCluster("plain", "prod")).
		Build(), logr.Discard())

	restorer := &backup.Restorer{
		Kube: kubeClient,
		NewStore: func(context.Context, []byte) (backup.Store, error) {
			t.Error("store factory called for a cluster without a restore source")
			return emptyStore{}, nil
		},
		Log: logr.Discard(),
	}
	checker := controller.NewRestoreChecker(kubeClient, restorer, logr.Discard())

	if err := checker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	// Sanity: the loop actually saw the cluster.
	clusters := &mongodbv1alpha1.MongoDBClusterList{}
	if err := kubeClient.List(context.Background(), clusters, client.InNamespace("prod")); err != nil {
		t.Fatalf("List clusters: %v", err)
	}
	if len(clusters.Items) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters.Items))
	}
}
