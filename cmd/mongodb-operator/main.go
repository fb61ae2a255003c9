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

package main

import (
	"flag"
	"os"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	mongodbv1alpha1 "github.com/numtide/mongodb-operator/api/v1alpha1"
	"github.com/numtide/mongodb-operator/pkg/backup"
	"github.com/numtide/mongodb-operator/pkg/controller"
	"github.com/numtide/mongodb-operator/pkg/kube"
	"github.com/numtide/mongodb-operator/pkg/task"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(apiextensionsv1.AddToScheme(scheme))
	utilruntime.Must(mongodbv1alpha1.AddToScheme(scheme))
}

func main() {
	var watchTimeout time.Duration
	var retryInterval time.Duration
	var checkInterval time.Duration
	var restoreTimeout time.Duration
	var mongorestorePath string

	flag.DurationVar(&watchTimeout, "watch-timeout", 5*time.Minute,
		"Server-side timeout for each cluster watch request.")
	flag.DurationVar(&retryInterval, "retry-interval", time.Second,
		"Pause before reopening an expired or failed cluster watch.")
	flag.DurationVar(&checkInterval, "check-interval", 3*time.Minute,
		"Interval between restore checks.")
	flag.DurationVar(&restoreTimeout, "restore-timeout", time.Hour,
		"Deadline for a single mongorestore invocation.")
	flag.StringVar(&mongorestorePath, "mongorestore-path", backup.DefaultCommand,
		"Path to the mongorestore binary.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	c, err := client.NewWithWatch(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "unable to create client")
		os.Exit(1)
	}
	kubeClient := kube.NewClient(c, ctrl.Log.WithName("kube"))

	ctx := ctrl.SetupSignalHandler()

	if err := kubeClient.EnsureClusterDefinition(ctx); err != nil {
		setupLog.Error(err, "unable to install the MongoDBCluster definition")
		os.Exit(1)
	}

	events := task.NewRunner(&controller.EventHandler{
		Kube:         kubeClient,
		WatchTimeout: watchTimeout,
		Log:          ctrl.Log.WithName("events"),
	}, retryInterval, ctrl.Log.WithName("runner"))

	restorer := &backup.Restorer{
		Kube:     kubeClient,
		NewStore: backup.NewGCSStore,
		Command:  mongorestorePath,
		Timeout:  restoreTimeout,
		Log:      ctrl.Log.WithName("restore"),
	}
	checks := task.NewRunner(
		controller.NewRestoreChecker(kubeClient, restorer, ctrl.Log.WithName("restore-check")),
		checkInterval, ctrl.Log.WithName("runner"))

	events.Start()
	checks.Start()
	setupLog.Info("mongodb operator started")

	<-ctx.Done()
	setupLog.Info("shutting down")
	events.Stop()
	checks.Stop()
}
