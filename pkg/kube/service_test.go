package kube

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

func TestBuildService(t *testing.T) {
	t.Parallel()

	cluster := &mongodbv1alpha1.MongoDBCluster{
		ObjectMeta: metav1.ObjectMeta{Name: "shop", Namespace: "prod"},
	}

	svc := BuildService(cluster)

	if svc.Name != "shop" || svc.Namespace != "prod" {
		t.Errorf("Service name/namespace = %s/%s, want prod/shop", svc.Namespace, svc.Name)
	}
	if svc.Spec.ClusterIP != corev1.ClusterIPNone {
		t.Errorf("ClusterIP = %q, want headless", svc.Spec.ClusterIP)
	}
	if !svc.Spec.PublishNotReadyAddresses {
		t.Error("PublishNotReadyAddresses = false, want true: members need DNS before they are ready")
	}

	wantLabels := BuildStandardLabels("shop")
	if diff := cmp.Diff(wantLabels, svc.Spec.Selector); diff != "" {
		t.Errorf("selector mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantLabels, svc.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	if len(svc.Spec.Ports) != 1 || svc.Spec.Ports[0].Port != MongoDBPort {
		t.Errorf("ports = %+v, want single port %d", svc.Spec.Ports, MongoDBPort)
	}
}
