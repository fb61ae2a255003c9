package kube

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"sigs.k8s.io/controller-runtime/pkg/client"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

// Client bundles the typed operations the operator performs against the
// cluster. All derived resources are addressed by deterministic names
// computed from the owning MongoDBCluster, so every method is safe to
// replay.
type Client struct {
	client.WithWatch
	log logr.Logger
}

// NewClient wraps the given watch-capable client.
func NewClient(c client.WithWatch, log logr.Logger) *Client {
	return &Client{WithWatch: c, log: log}
}

// WatchClusters opens a watch over all MongoDBCluster objects. The server
// closes the stream after the given timeout; callers treat a closed stream
// as "no event available" and reopen it.
func (c *Client) WatchClusters(ctx context.Context, timeout time.Duration) (watch.Interface, error) {
	seconds := int64(timeout / time.Second)
	return c.Watch(ctx, &mongodbv1alpha1.MongoDBClusterList{}, &client.ListOptions{
		Raw: &metav1.ListOptions{TimeoutSeconds: &seconds},
	})
}

// GetCluster fetches a single MongoDBCluster.
func (c *Client) GetCluster(ctx context.Context, name, namespace string) (*mongodbv1alpha1.MongoDBCluster, error) {
	cluster := &mongodbv1alpha1.MongoDBCluster{}
	if err := c.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, cluster); err != nil {
		return nil, err
	}
	return cluster, nil
}

// ListClusters fetches all MongoDBCluster objects across namespaces.
func (c *Client) ListClusters(ctx context.Context) (*mongodbv1alpha1.MongoDBClusterList, error) {
	clusters := &mongodbv1alpha1.MongoDBClusterList{}
	if err := c.List(ctx, clusters); err != nil {
		return nil, fmt.Errorf("failed to list MongoDBCluster objects: %w", err)
	}
	return clusters, nil
}

// CreateService creates the headless Service for the cluster.
func (c *Client) CreateService(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) error {
	if err := c.Create(ctx, BuildService(cluster)); err != nil {
		return fmt.Errorf("failed to create Service: %w", err)
	}
	c.log.Info("created service", "name", cluster.ServiceName(), "namespace", cluster.Namespace)
	return nil
}

// UpdateService re-applies the desired Service state. A missing Service is
// created, so a Modified event converges even after manual deletion.
func (c *Client) UpdateService(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) error {
	desired := BuildService(cluster)

	existing := &corev1.Service{}
	err := c.Get(ctx, client.ObjectKey{Namespace: cluster.Namespace, Name: cluster.ServiceName()}, existing)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return c.CreateService(ctx, cluster)
		}
		return fmt.Errorf("failed to get Service: %w", err)
	}

	existing.Spec.Ports = desired.Spec.Ports
	existing.Spec.Selector = desired.Spec.Selector
	existing.Labels = desired.Labels
	if err := c.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update Service: %w", err)
	}
	return nil
}

// DeleteService removes the cluster's Service. A Service that is already
// gone is not an error.
func (c *Client) DeleteService(ctx context.Context, name, namespace string) error {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	if err := client.IgnoreNotFound(c.Delete(ctx, svc)); err != nil {
		return fmt.Errorf("failed to delete Service: %w", err)
	}
	return nil
}

// CreateStatefulSet creates the replica set workload for the cluster.
func (c *Client) CreateStatefulSet(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) error {
	if err := c.Create(ctx, BuildStatefulSet(cluster)); err != nil {
		return fmt.Errorf("failed to create StatefulSet: %w", err)
	}
	c.log.Info("created statefulset", "name", cluster.Name, "namespace", cluster.Namespace)
	return nil
}

// UpdateStatefulSet re-applies the desired StatefulSet state, creating it
// when missing.
func (c *Client) UpdateStatefulSet(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) error {
	desired := BuildStatefulSet(cluster)

	existing := &appsv1.StatefulSet{}
	err := c.Get(ctx, client.ObjectKey{Namespace: cluster.Namespace, Name: cluster.Name}, existing)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return c.CreateStatefulSet(ctx, cluster)
		}
		return fmt.Errorf("failed to get StatefulSet: %w", err)
	}

	existing.Spec = desired.Spec
	existing.Labels = desired.Labels
	if err := c.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update StatefulSet: %w", err)
	}
	return nil
}

// DeleteStatefulSet removes the cluster's workload. A StatefulSet that is
// already gone is not an error.
func (c *Client) DeleteStatefulSet(ctx context.Context, name, namespace string) error {
	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	if err := client.IgnoreNotFound(c.Delete(ctx, sts)); err != nil {
		return fmt.Errorf("failed to delete StatefulSet: %w", err)
	}
	return nil
}

// EnsureAdminSecret creates the admin credentials Secret for the cluster.
// If a secret with the deterministic name already exists it is fetched and
// returned instead: the password was generated at first creation and must
// never be regenerated, since the running members already trust it.
func (c *Client) EnsureAdminSecret(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) (*corev1.Secret, error) {
	secret, err := BuildAdminSecret(cluster)
	if err != nil {
		return nil, err
	}

	if err := c.Create(ctx, secret); err != nil {
		if apierrors.IsAlreadyExists(err) {
			c.log.Info("admin secret already exists, reusing it",
				"name", cluster.AdminSecretName(), "namespace", cluster.Namespace)
			return c.GetSecret(ctx, cluster.AdminSecretName(), cluster.Namespace)
		}
		return nil, fmt.Errorf("failed to create admin secret: %w", err)
	}
	c.log.Info("created admin secret", "name", cluster.AdminSecretName(), "namespace", cluster.Namespace)
	return secret, nil
}

// GetSecret fetches a Secret by name.
func (c *Client) GetSecret(ctx context.Context, name, namespace string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	if err := c.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// DeleteAdminSecret removes the admin credentials Secret for the named
// cluster. A Secret that is already gone is not an error.
func (c *Client) DeleteAdminSecret(ctx context.Context, clusterName, namespace string) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      mongodbv1alpha1.AdminSecretNameFor(clusterName),
			Namespace: namespace,
		},
	}
	if err := client.IgnoreNotFound(c.Delete(ctx, secret)); err != nil {
		return fmt.Errorf("failed to delete admin secret: %w", err)
	}
	return nil
}
