package kube

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

const (
	// DefaultImage is the default mongod container image.
	DefaultImage = "docker.io/library/mongo:4.4"

	// DefaultStorageSize is the default persistent volume size per member.
	DefaultStorageSize = "30Gi"

	// DataVolumeName is the name of the data volume.
	DataVolumeName = "mongo-data"

	// DataMountPath is the mount path for mongod data.
	DataMountPath = "/data/db"
)

// BuildStatefulSet creates the replica set workload for the cluster.
// Returns a deterministic StatefulSet based on the MongoDBCluster spec.
func BuildStatefulSet(cluster *mongodbv1alpha1.MongoDBCluster) *appsv1.StatefulSet {
	replicas := cluster.ReplicaCount()

	image := DefaultImage
	if cluster.Spec.MongoDB.Image != "" {
		image = cluster.Spec.MongoDB.Image
	}

	labels := BuildStandardLabels(cluster.Name)

	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cluster.Name,
			Namespace: cluster.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: cluster.ServiceName(),
			Replicas:    &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: labels,
			},
			UpdateStrategy: appsv1.StatefulSetUpdateStrategy{
				Type: appsv1.RollingUpdateStatefulSetStrategyType,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  "mongod",
							Image: image,
							Command: []string{
								"mongod",
								"--replSet", cluster.Name,
								"--bind_ip_all",
							},
							Resources: cluster.Spec.MongoDB.Resources,
							Ports: []corev1.ContainerPort{
								{Name: "mongod", ContainerPort: MongoDBPort},
							},
							VolumeMounts: []corev1.VolumeMount{
								{
									Name:      DataVolumeName,
									MountPath: DataMountPath,
								},
							},
							ReadinessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									Exec: &corev1.ExecAction{
										Command: []string{
											"mongo", "--quiet",
											"--eval", "db.adminCommand('ping')",
										},
									},
								},
								InitialDelaySeconds: 10,
								PeriodSeconds:       10,
							},
						},
					},
				},
			},
			VolumeClaimTemplates: []corev1.PersistentVolumeClaim{
				buildVolumeClaimTemplate(cluster),
			},
		},
	}
}

// buildVolumeClaimTemplate creates the PVC template for member data.
func buildVolumeClaimTemplate(cluster *mongodbv1alpha1.MongoDBCluster) corev1.PersistentVolumeClaim {
	storageSize := DefaultStorageSize
	if cluster.Spec.MongoDB.StorageSize != "" {
		storageSize = cluster.Spec.MongoDB.StorageSize
	}

	var storageClassName *string
	if cluster.Spec.MongoDB.StorageClassName != nil {
		storageClassName = ptr.To(*cluster.Spec.MongoDB.StorageClassName)
	}

	return corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name: DataVolumeName,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes:      []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			StorageClassName: storageClassName,
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(storageSize),
				},
			},
		},
	}
}
