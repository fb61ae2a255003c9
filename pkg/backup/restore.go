package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
	"github.com/numtide/mongodb-operator/pkg/kube"
)

const (
	// DefaultCommand is the restore executable invoked against the
	// elected member.
	DefaultCommand = "mongorestore"

	// DefaultCommandTimeout bounds one restore invocation. A stuck
	// restore otherwise blocks its runner thread forever.
	DefaultCommandTimeout = time.Hour
)

// RestoreError reports a failed restore invocation. It carries everything
// needed to diagnose the failure; callers must not treat the cluster as
// ready when they receive one.
type RestoreError struct {
	Artifact string
	Host     string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("could not restore %q to %q: exit code %d, stderr: %q, stdout: %q",
		e.Artifact, e.Host, e.ExitCode, e.Stderr, e.Stdout)
}

// Restorer applies backup artifacts to clusters that request a restore.
type Restorer struct {
	// Kube resolves the storage credentials secret.
	Kube *kube.Client

	// NewStore builds the artifact store for one restore operation.
	NewStore StoreFactory

	// Command overrides the restore executable. Empty means
	// DefaultCommand.
	Command string

	// Timeout bounds one restore invocation. Zero means
	// DefaultCommandTimeout.
	Timeout time.Duration

	// ScratchDir is where downloaded archives are staged. Empty means
	// the system temp directory.
	ScratchDir string

	Log logr.Logger
}

// FindLatestArtifact returns the artifact with the greatest creation time
// under the prefix, or nil when the listing is empty. Ties keep the first
// artifact seen: an artifact is only elected when its creation time is
// strictly greater than the current maximum.
func FindLatestArtifact(ctx context.Context, store Store, bucket, prefix string, log logr.Logger) (*Artifact, error) {
	artifacts, err := store.ListArtifacts(ctx, bucket, prefix+"/")
	if err != nil {
		return nil, err
	}

	var latest *Artifact
	for i := range artifacts {
		a := &artifacts[i]
		log.V(1).Info("found backup artifact", "name", a.Name, "bucket", bucket, "created", a.Created)
		if latest == nil || a.Created.After(latest.Created) {
			latest = a
		}
	}
	return latest, nil
}

// RestoreIfNeeded checks whether the cluster's spec declares a restore
// source and, if so, resolves it to a concrete artifact, downloads it and
// applies it to the member elected as restore target. It returns whether a
// restore was executed. A cluster without a restore source, or a "latest"
// request against an empty bucket, is not an error.
func (r *Restorer) RestoreIfNeeded(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) (bool, error) {
	gcs := cluster.GCS()
	if gcs == nil || gcs.RestoreFrom == "" {
		return false, nil
	}

	// Credentials are read and decoded once, scoped to this operation.
	store, err := r.newStore(ctx, cluster)
	if err != nil {
		return false, err
	}

	bucket := gcs.RestoreBucketName()
	prefix := gcs.BackupPrefix()

	artifact := gcs.RestoreFrom
	if artifact == mongodbv1alpha1.RestoreLatest {
		latest, err := FindLatestArtifact(ctx, store, bucket, prefix, r.Log)
		if err != nil {
			return false, err
		}
		if latest == nil {
			r.Log.Info("no backup artifacts found, skipping restore",
				"cluster", cluster.Name, "namespace", cluster.Namespace, "bucket", bucket, "prefix", prefix)
			return false, nil
		}
		artifact = strings.TrimPrefix(latest.Name, prefix+"/")
	}

	r.Log.Info("attempting restore",
		"cluster", cluster.Name, "namespace", cluster.Namespace, "artifact", artifact)

	if err := r.restore(ctx, store, cluster, bucket, prefix, artifact); err != nil {
		return false, err
	}
	return true, nil
}

// newStore resolves the storage credentials from the secret referenced by
// the cluster spec and builds a store from them.
func (r *Restorer) newStore(ctx context.Context, cluster *mongodbv1alpha1.MongoDBCluster) (Store, error) {
	ref := cluster.GCS().ServiceAccount.SecretKeyRef

	secret, err := r.Kube.GetSecret(ctx, ref.Name, cluster.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage credentials secret %q: %w", ref.Name, err)
	}
	credentials, ok := secret.Data[ref.Key]
	if !ok {
		return nil, fmt.Errorf("storage credentials secret %q has no key %q", ref.Name, ref.Key)
	}
	return r.NewStore(ctx, credentials)
}

// restore downloads the artifact to scratch storage, applies it to the
// elected member and removes the local copy regardless of outcome.
func (r *Restorer) restore(ctx context.Context, store Store, cluster *mongodbv1alpha1.MongoDBCluster, bucket, prefix, artifact string) error {
	// The member with the highest ordinal is the restore target.
	host := cluster.MemberHostname(cluster.ReplicaCount() - 1)
	key := prefix + "/" + artifact

	local := filepath.Join(r.scratchDir(), filepath.Base(artifact))
	if err := store.Download(ctx, bucket, key, local); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(local); err != nil {
			r.Log.Error(err, "failed to remove downloaded archive", "path", local)
		}
	}()

	r.Log.Info("restoring backup", "artifact", artifact, "host", host, "path", local)
	return r.run(ctx, artifact, host, local)
}

// run invokes the external restore executable under a bounded deadline.
func (r *Restorer) run(ctx context.Context, artifact, host, archive string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := r.Command
	if command == "" {
		command = DefaultCommand
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "--host", host, "--gzip", "--archive="+archive)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &RestoreError{
			Artifact: artifact,
			Host:     host,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
	}

	r.Log.V(1).Info("restore completed", "artifact", artifact, "host", host, "output", stdout.String())
	return nil
}

func (r *Restorer) scratchDir() string {
	if r.ScratchDir != "" {
		return r.ScratchDir
	}
	return os.TempDir()
}
