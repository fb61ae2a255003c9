package kube

import (
	"context"
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
)

// ClusterDefinitionName is the metadata name of the MongoDBCluster CRD.
var ClusterDefinitionName = "mongodbclusters." + mongodbv1alpha1.GroupVersion.Group

// EnsureClusterDefinition installs the MongoDBCluster custom resource
// definition if the API server does not have it yet. An already installed
// definition is left untouched.
func (c *Client) EnsureClusterDefinition(ctx context.Context) error {
	crd := buildClusterDefinition()
	if err := c.Create(ctx, crd); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("failed to create %s: %w", ClusterDefinitionName, err)
	}
	c.log.Info("installed custom resource definition", "name", ClusterDefinitionName)
	return nil
}

func buildClusterDefinition() *apiextensionsv1.CustomResourceDefinition {
	return &apiextensionsv1.CustomResourceDefinition{
		ObjectMeta: metav1.ObjectMeta{
			Name: ClusterDefinitionName,
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: mongodbv1alpha1.GroupVersion.Group,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Kind:     "MongoDBCluster",
				ListKind: "MongoDBClusterList",
				Plural:   "mongodbclusters",
				Singular: "mongodbcluster",
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{
				{
					Name:    mongodbv1alpha1.GroupVersion.Version,
					Served:  true,
					Storage: true,
					Schema: &apiextensionsv1.CustomResourceValidation{
						OpenAPIV3Schema: &apiextensionsv1.JSONSchemaProps{
							Type: "object",
							Properties: map[string]apiextensionsv1.JSONSchemaProps{
								"spec": {
									Type:                   "object",
									XPreserveUnknownFields: ptr.To(true),
								},
								"status": {
									Type:                   "object",
									XPreserveUnknownFields: ptr.To(true),
								},
							},
						},
					},
					Subresources: &apiextensionsv1.CustomResourceSubresources{
						Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
					},
				},
			},
		},
	}
}
