package variable

import "context"

// Event describes a created or updated variable.
//
// Name and Value are only valid until the next call into the State.
type Event struct {
	Key          int64
	WorkflowKey  int64
	Name         []byte
	Value        []byte
	ScopeKey     int64
	RootScopeKey int64
}

// Listener observes variable writes. It is invoked synchronously before the
// write returns; an error aborts the write call. Deletions and writes that
// leave the value unchanged are not reported.
type Listener interface {
	OnCreate(ctx context.Context, ev Event) error
	OnUpdate(ctx context.Context, ev Event) error
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are no-ops.
type ListenerFuncs struct {
	Create func(ctx context.Context, ev Event) error
	Update func(ctx context.Context, ev Event) error
}

// OnCreate implements Listener.
func (f ListenerFuncs) OnCreate(ctx context.Context, ev Event) error {
	if f.Create == nil {
		return nil
	}
	return f.Create(ctx, ev)
}

// OnUpdate implements Listener.
func (f ListenerFuncs) OnUpdate(ctx context.Context, ev Event) error {
	if f.Update == nil {
		return nil
	}
	return f.Update(ctx, ev)
}
