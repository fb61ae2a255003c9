package controller

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/numtide/mongodb-operator/pkg/backup"
	"github.com/numtide/mongodb-operator/pkg/kube"
)

// RestoreChecker periodically walks all declared clusters and applies a
// requested restore once per cluster identity. A failed restore is logged
// and retried on the next cycle; a completed check (restored or nothing to
// restore) is remembered for the process lifetime so the archive is never
// applied twice.
type RestoreChecker struct {
	kube     *kube.Client
	restorer *backup.Restorer
	log      logr.Logger

	mu      sync.Mutex
	checked map[types.NamespacedName]struct{}
}

// NewRestoreChecker returns a checker driving the given restorer.
func NewRestoreChecker(kubeClient *kube.Client, restorer *backup.Restorer, log logr.Logger) *RestoreChecker {
	return &RestoreChecker{
		kube:     kubeClient,
		restorer: restorer,
		log:      log,
		checked:  make(map[types.NamespacedName]struct{}),
	}
}

// Name implements task.Worker.
func (c *RestoreChecker) Name() string { return "restore-check" }

// RunOnce lists all clusters and runs the restore decision for every
// identity not yet checked.
func (c *RestoreChecker) RunOnce(ctx context.Context) error {
	clusters, err := c.kube.ListClusters(ctx)
	if err != nil {
		return err
	}

	for i := range clusters.Items {
		cluster := &clusters.Items[i]
		key := client.ObjectKeyFromObject(cluster)
		if c.alreadyChecked(key) {
			continue
		}

		restored, err := c.restorer.RestoreIfNeeded(ctx, cluster)
		if err != nil {
			c.log.Error(err, "restore failed", "cluster", cluster.Name, "namespace", cluster.Namespace)
			continue
		}

		c.markChecked(key)
		if restored {
			c.log.Info("cluster restored from backup", "cluster", cluster.Name, "namespace", cluster.Namespace)
		}
	}
	return nil
}

func (c *RestoreChecker) alreadyChecked(key types.NamespacedName) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.checked[key]
	return ok
}

func (c *RestoreChecker) markChecked(key types.NamespacedName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked[key] = struct{}{}
}
