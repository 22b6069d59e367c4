package retry

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry holds named policies. It is safe for concurrent use.
//
// There is no package-level registry: a Registry is created explicitly at
// start-up, treated as read-only afterwards, and reset only from test
// scaffolding via Clear.
type Registry struct {
	policies sync.Map
	logger   *zap.Logger
}

// NewRegistry creates an empty policy registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register stores a policy under the given name, replacing any existing
// entry. It returns the previously registered policy, if any.
func (r *Registry) Register(name string, p *Policy) *Policy {
	previous, loaded := r.policies.Swap(name, p)
	r.logger.Debug("registered retry policy",
		zap.String("name", name),
		zap.Bool("replaced", loaded),
	)
	if !loaded {
		return nil
	}
	return previous.(*Policy)
}

// Get returns the policy registered under name, or an *UnknownPolicyError.
func (r *Registry) Get(name string) (*Policy, error) {
	value, ok := r.policies.Load(name)
	if !ok {
		return nil, &UnknownPolicyError{Name: name}
	}
	return value.(*Policy), nil
}

// Remove deletes a policy by name and returns it, if it was registered.
func (r *Registry) Remove(name string) *Policy {
	value, loaded := r.policies.LoadAndDelete(name)
	if !loaded {
		return nil
	}
	r.logger.Debug("removed retry policy", zap.String("name", name))
	return value.(*Policy)
}

// Names returns the names of all registered policies.
func (r *Registry) Names() []string {
	var names []string
	r.policies.Range(func(key, value any) bool {
		names = append(names, key.(string))
		return true
	})
	return names
}

// Count returns the number of registered policies.
func (r *Registry) Count() int {
	count := 0
	r.policies.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Clear removes all registered policies. Test scaffolding only.
func (r *Registry) Clear() {
	r.policies.Range(func(key, value any) bool {
		r.policies.Delete(key)
		return true
	})
}

// Do executes fn under the named policy. A missing name surfaces as an
// *UnknownPolicyError without invoking fn.
func (r *Registry) Do(ctx context.Context, name string, fn Func) error {
	p, err := r.Get(name)
	if err != nil {
		return err
	}
	return p.Do(ctx, fn)
}

// DoValueWithPolicy executes op under the named policy from the registry.
func DoValueWithPolicy[T any](ctx context.Context, r *Registry, name string, op Operation[T]) (T, error) {
	p, err := r.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return DoValue(ctx, p, op)
}
