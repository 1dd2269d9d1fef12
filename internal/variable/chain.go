package variable

import (
	"context"
	"fmt"

	"github.com/roach88/varstate/internal/document"
)

// Variable returns the value of name as seen from scope: the declaration in
// scope itself, else in the nearest ancestor that declares it.
func (s *State) Variable(ctx context.Context, scope int64, name []byte) ([]byte, bool, error) {
	current := scope
	for {
		rec, found, err := s.record(ctx, current, name)
		if err != nil {
			return nil, false, err
		}
		if found {
			return rec.Value, true, nil
		}

		parent, ok, err := s.ParentScopeKey(ctx, current)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		current = parent
	}
}

// visitChain visits the local variables of scope and then of each ancestor
// until visit returns false or the root has been visited.
func (s *State) visitChain(ctx context.Context, scope int64, visit func(name, value []byte) bool) error {
	current := scope
	for {
		stopped, err := s.visitLocal(ctx, current, visit)
		if err != nil || stopped {
			return err
		}

		parent, ok, err := s.ParentScopeKey(ctx, current)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		current = parent
	}
}

// VariablesAsDocument encodes every variable visible from scope. A name
// declared in several scopes of the chain is exported once, with the value of
// the scope nearest to scope.
func (s *State) VariablesAsDocument(ctx context.Context, scope int64) ([]byte, error) {
	w := document.NewWriter()
	collected := make(map[string]struct{})

	var werr error
	err := s.visitChain(ctx, scope, func(name, value []byte) bool {
		if _, seen := collected[string(name)]; seen {
			return true
		}
		if werr = w.WriteEntry(name, value); werr != nil {
			return false
		}
		collected[string(name)] = struct{}{}
		return true
	})
	if err == nil {
		err = werr
	}
	if err != nil {
		return nil, fmt.Errorf("variables of scope %d as document: %w", scope, err)
	}
	return w.Finish(), nil
}

// VariablesAsDocumentFiltered is VariablesAsDocument restricted to names. The
// walk stops as soon as every requested name has been found; names that are
// not visible from scope are left out of the result.
func (s *State) VariablesAsDocumentFiltered(ctx context.Context, scope int64, names [][]byte) ([]byte, error) {
	w := document.NewWriter()
	if len(names) == 0 {
		return w.Finish(), nil
	}

	pending := make(map[string]struct{}, len(names))
	for _, name := range names {
		pending[string(name)] = struct{}{}
	}

	var werr error
	err := s.visitChain(ctx, scope, func(name, value []byte) bool {
		if _, wanted := pending[string(name)]; !wanted {
			return true
		}
		if werr = w.WriteEntry(name, value); werr != nil {
			return false
		}
		delete(pending, string(name))
		return len(pending) > 0
	})
	if err == nil {
		err = werr
	}
	if err != nil {
		return nil, fmt.Errorf("selected variables of scope %d as document: %w", scope, err)
	}
	return w.Finish(), nil
}

// VariablesLocalAsDocument encodes the variables declared in scope itself.
func (s *State) VariablesLocalAsDocument(ctx context.Context, scope int64) ([]byte, error) {
	w := document.NewWriter()

	var werr error
	_, err := s.visitLocal(ctx, scope, func(name, value []byte) bool {
		werr = w.WriteEntry(name, value)
		return werr == nil
	})
	if err == nil {
		err = werr
	}
	if err != nil {
		return nil, fmt.Errorf("local variables of scope %d as document: %w", scope, err)
	}
	return w.Finish(), nil
}
