// Package testutil provides testing utilities for controller tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// FailureConfig configures when the recording client should return errors.
// Each field is a function that receives the object/key and returns an
// error if the operation should fail.
type FailureConfig struct {
	// OnGet is called before Get operations. Return non-nil to fail the operation.
	OnGet func(key client.ObjectKey) error

	// OnList is called before List operations. Return non-nil to fail the operation.
	OnList func(list client.ObjectList) error

	// OnCreate is called before Create operations. Return non-nil to fail the operation.
	OnCreate func(obj client.Object) error

	// OnUpdate is called before Update operations. Return non-nil to fail the operation.
	OnUpdate func(obj client.Object) error

	// OnDelete is called before Delete operations. Return non-nil to fail the operation.
	OnDelete func(obj client.Object) error
}

// Action records one write operation observed by the recording client.
type Action struct {
	Verb      string // "create", "update" or "delete"
	Kind      string // Go type name, e.g. "Service", "StatefulSet", "Secret"
	Name      string
	Namespace string
}

// RecordingClient wraps a fake client, records every write in order, and
// optionally injects failures. Recording the writes lets tests assert not
// just that operations happened but the order they happened in.
type RecordingClient struct {
	client.WithWatch

	config *FailureConfig

	mu      sync.Mutex
	actions []Action
}

// NewRecordingClient wraps the given watch-capable client. A nil config
// injects no failures.
func NewRecordingClient(base client.WithWatch, config *FailureConfig) *RecordingClient {
	if config == nil {
		config = &FailureConfig{}
	}
	return &RecordingClient{WithWatch: base, config: config}
}

// Actions returns a copy of the writes observed so far, in order. Failed
// writes are recorded too: the attempt is what ordering assertions care
// about.
func (c *RecordingClient) Actions() []Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Action, len(c.actions))
	copy(out, c.actions)
	return out
}

func (c *RecordingClient) record(verb string, obj client.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, Action{
		Verb:      verb,
		Kind:      kindOf(obj),
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
	})
}

// kindOf extracts the bare type name, e.g. "*v1.Service" -> "Service".
func kindOf(obj client.Object) string {
	t := fmt.Sprintf("%T", obj)
	if i := strings.LastIndex(t, "."); i >= 0 {
		return t[i+1:]
	}
	return strings.TrimPrefix(t, "*")
}

func (c *RecordingClient) Get(
	ctx context.Context,
	key client.ObjectKey,
	obj client.Object,
	opts ...client.GetOption,
) error {
	if c.config.OnGet != nil {
		if err := c.config.OnGet(key); err != nil {
			return err
		}
	}
	return c.WithWatch.Get(ctx, key, obj, opts...)
}

func (c *RecordingClient) List(
	ctx context.Context,
	list client.ObjectList,
	opts ...client.ListOption,
) error {
	if c.config.OnList != nil {
		if err := c.config.OnList(list); err != nil {
			return err
		}
	}
	return c.WithWatch.List(ctx, list, opts...)
}

func (c *RecordingClient) Create(
	ctx context.Context,
	obj client.Object,
	opts ...client.CreateOption,
) error {
	c.record("create", obj)
	if c.config.OnCreate != nil {
		if err := c.config.OnCreate(obj); err != nil {
			return err
		}
	}
	return c.WithWatch.Create(ctx, obj, opts...)
}

func (c *RecordingClient) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.UpdateOption,
) error {
	c.record("update", obj)
	if c.config.OnUpdate != nil {
		if err := c.config.OnUpdate(obj); err != nil {
			return err
		}
	}
	return c.WithWatch.Update(ctx, obj, opts...)
}

func (c *RecordingClient) Delete(
	ctx context.Context,
	obj client.Object,
	opts ...client.DeleteOption,
) error {
	c.record("delete", obj)
	if c.config.OnDelete != nil {
		if err := c.config.OnDelete(obj); err != nil {
			return err
		}
	}
	return c.WithWatch.Delete(ctx, obj, opts...)
}

// Helper functions for common failure scenarios

// FailOnObjectName returns an error if the object name matches.
func FailOnObjectName(name string, err error) func(client.Object) error {
	return func(obj client.Object) error {
		if obj.GetName() == name {
			return err
		}
		return nil
	}
}

// FailOnKeyName returns an error if the key name matches.
func FailOnKeyName(name string, err error) func(client.ObjectKey) error {
	return func(key client.ObjectKey) error {
		if key.Name == name {
			return err
		}
		return nil
	}
}

// Common errors for testing
var (
	ErrInjected        = fmt.Errorf("injected test error")
	ErrPermissionError = fmt.Errorf("permission denied")
)
