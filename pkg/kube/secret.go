package kube

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

const (
	// AdminUsername is the administrative user created for every cluster.
	AdminUsername = "root"

	// adminPasswordBytes is the entropy of the generated admin password.
	adminPasswordBytes = 16
)

// BuildAdminSecret creates the admin credentials Secret for the cluster
// with a freshly generated password. The password is generated exactly
// once per cluster; callers must reuse an existing secret rather than
// rebuild it.
func BuildAdminSecret(cluster *mongodbv1alpha1.MongoDBCluster) (*corev1.Secret, error) {
	password, err := generatePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin password: %w", err)
	}

	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cluster.AdminSecretName(),
			Namespace: cluster.Namespace,
			Labels:    BuildStandardLabels(cluster.Name),
		},
		StringData: map[string]string{
			"username": AdminUsername,
			"password": password,
		},
	}, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, adminPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
