/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package v1alpha1 defines the API types for the MongoDB Operator.
//
// The single custom resource, MongoDBCluster, declares a managed MongoDB
// replica set: the desired member count and storage shape, plus an optional
// backup configuration pointing at a Google Cloud Storage bucket. The
// operator derives three Kubernetes objects from each MongoDBCluster: a
// headless Service, a StatefulSet, and an admin credentials Secret, all
// named deterministically from the cluster's name and namespace.
//
// This is the v1alpha1 version, indicating the API is in early development
// and may change in backward-incompatible ways.
package v1alpha1
