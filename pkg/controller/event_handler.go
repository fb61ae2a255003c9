package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/watch"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
	"github.com/numtide/mongodb-operator/pkg/kube"
)

// EventHandler consumes the MongoDBCluster watch stream and converges the
// derived resources for every lifecycle event. It holds no state of its
// own: the API server is authoritative, every event carries a full
// snapshot, and each convergence action is idempotent, so the handler is
// safe to restart and to replay events at any point.
type EventHandler struct {
	Kube *kube.Client

	// WatchTimeout bounds one watch request server-side. An expired
	// watch is not an error; the next iteration reopens it.
	WatchTimeout time.Duration

	Log logr.Logger
}

// Name implements task.Worker.
func (h *EventHandler) Name() string { return "cluster-events" }

// RunOnce opens a watch over MongoDBCluster objects and handles events
// until the stream expires or the context is cancelled.
func (h *EventHandler) RunOnce(ctx context.Context) error {
	w, err := h.Kube.WatchClusters(ctx, h.WatchTimeout)
	if err != nil {
		return fmt.Errorf("failed to open cluster watch: %w", err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.ResultChan():
			if !ok {
				// The bounded long poll expired with no further events.
				return nil
			}
			h.HandleEvent(ctx, event)
		}
	}
}

// HandleEvent classifies one lifecycle event and dispatches it. Malformed
// events and events of unhandled types are logged and dropped; they never
// reach a convergence branch.
func (h *EventHandler) HandleEvent(ctx context.Context, event watch.Event) {
	if event.Type == "" || event.Object == nil {
		h.Log.Info("dropping malformed event", "type", event.Type)
		return
	}
	cluster, ok := event.Object.(*mongodbv1alpha1.MongoDBCluster)
	if !ok {
		h.Log.Info("dropping event with unexpected payload",
			"type", event.Type, "payload", fmt.Sprintf("%T", event.Object))
		return
	}

	log := h.Log.WithValues("cluster", cluster.Name, "namespace", cluster.Namespace, "event", event.Type)

	switch event.Type {
	case watch.Added:
		h.onAdded(ctx, log, cluster)
	case watch.Modified:
		h.onModified(ctx, log, cluster)
	case watch.Deleted:
		h.onDeleted(ctx, log, cluster)
	default:
		log.Info("dropping event of unhandled type")
	}
}

// onAdded creates the derived resources for a new cluster. The
// StatefulSet's readiness probe needs the credentials and the service DNS
// records, so the secret and service come first. A failure ends the event;
// the next watch cycle re-delivers current state.
func (h *EventHandler) onAdded(ctx context.Context, log logr.Logger, cluster *mongodbv1alpha1.MongoDBCluster) {
	if _, err := h.Kube.EnsureAdminSecret(ctx, cluster); err != nil {
		log.Error(err, "failed to ensure admin secret")
		return
	}
	if err := h.Kube.CreateService(ctx, cluster); err != nil {
		log.Error(err, "failed to create service")
		return
	}
	if err := h.Kube.CreateStatefulSet(ctx, cluster); err != nil {
		log.Error(err, "failed to create statefulset")
		return
	}
	log.Info("cluster resources created")
}

// onModified re-applies the desired state to the service and workload. The
// admin secret is immutable after creation: the generated password is
// already trusted by the running members and a spec change never rotates
// it.
func (h *EventHandler) onModified(ctx context.Context, log logr.Logger, cluster *mongodbv1alpha1.MongoDBCluster) {
	if err := h.Kube.UpdateService(ctx, cluster); err != nil {
		log.Error(err, "failed to update service")
		return
	}
	if err := h.Kube.UpdateStatefulSet(ctx, cluster); err != nil {
		log.Error(err, "failed to update statefulset")
		return
	}
	log.Info("cluster resources updated")
}

// onDeleted removes the derived resources in reverse creation order, so
// dependents go before their dependencies.
func (h *EventHandler) onDeleted(ctx context.Context, log logr.Logger, cluster *mongodbv1alpha1.MongoDBCluster) {
	if err := h.Kube.DeleteStatefulSet(ctx, cluster.Name, cluster.Namespace); err != nil {
		log.Error(err, "failed to delete statefulset")
		return
	}
	if err := h.Kube.DeleteService(ctx, cluster.ServiceName(), cluster.Namespace); err != nil {
		log.Error(err, "failed to delete service")
		return
	}
	if err := h.Kube.DeleteAdminSecret(ctx, cluster.Name, cluster.Namespace); err != nil {
		log.Error(err, "failed to delete admin secret")
		return
	}
	log.Info("cluster resources deleted")
}
