package kube

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

// MongoDBPort is the port mongod listens on.
const MongoDBPort int32 = 27017

// BuildService creates the headless Service for the cluster. Headless
// services give every replica set member the stable DNS record the members
// address each other by.
func BuildService(cluster *mongodbv1alpha1.MongoDBCluster) *corev1.Service {
	labels := BuildStandardLabels(cluster.Name)

	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cluster.ServiceName(),
			Namespace: cluster.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: corev1.ClusterIPNone,
			Selector:  labels,
			Ports: []corev1.ServicePort{
				{
					Name:       "mongod",
					Port:       MongoDBPort,
					TargetPort: intstr.FromInt32(MongoDBPort),
				},
			},
			PublishNotReadyAddresses: true,
		},
	}
}
