package harness

import (
	"context"
	"fmt"

	"github.com/roach88/varstate/internal/value"
)

// evaluate checks one expectation. It returns a non-empty message when the
// expectation does not hold and an error only when the check itself failed.
func (h *Harness) evaluate(ctx context.Context, exp Expectation) (string, error) {
	s := h.state
	name := []byte(exp.Name)

	switch exp.Op {
	case ExpectVariable, ExpectVariableLocal:
		get := s.Variable
		if exp.Op == ExpectVariableLocal {
			get = s.VariableLocal
		}
		raw, ok, err := get(ctx, exp.Scope, name)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("%q not found from scope %d", exp.Name, exp.Scope), nil
		}
		return compareValue(exp.Name, exp.Value, raw)

	case ExpectAbsent, ExpectAbsentLocal:
		get := s.Variable
		if exp.Op == ExpectAbsentLocal {
			get = s.VariableLocal
		}
		raw, ok, err := get(ctx, exp.Scope, name)
		if err != nil {
			return "", err
		}
		if ok {
			got, _ := value.Render(raw)
			return fmt.Sprintf("%q unexpectedly present from scope %d: %s", exp.Name, exp.Scope, got), nil
		}
		return "", nil

	case ExpectDocument:
		var (
			doc []byte
			err error
		)
		if exp.Names != nil {
			names := make([][]byte, len(exp.Names))
			for i, n := range exp.Names {
				names[i] = []byte(n)
			}
			doc, err = s.VariablesAsDocumentFiltered(ctx, exp.Scope, names)
		} else {
			doc, err = s.VariablesAsDocument(ctx, exp.Scope)
		}
		if err != nil {
			return "", err
		}
		return compareDocument(exp.Document, doc)

	case ExpectDocumentLocal:
		doc, err := s.VariablesLocalAsDocument(ctx, exp.Scope)
		if err != nil {
			return "", err
		}
		return compareDocument(exp.Document, doc)

	case ExpectParent:
		parent, ok, err := s.ParentScopeKey(ctx, exp.Scope)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("scope %d has no parent, want %d", exp.Scope, exp.Parent), nil
		}
		if parent != exp.Parent {
			return fmt.Sprintf("scope %d has parent %d, want %d", exp.Scope, parent, exp.Parent), nil
		}
		return "", nil

	case ExpectNoParent:
		parent, ok, err := s.ParentScopeKey(ctx, exp.Scope)
		if err != nil {
			return "", err
		}
		if ok {
			return fmt.Sprintf("scope %d has parent %d, want none", exp.Scope, parent), nil
		}
		return "", nil

	case ExpectTemporary:
		payload, ok, err := s.TemporaryVariables(ctx, exp.Scope)
		if err != nil {
			return "", err
		}
		if exp.Document == nil {
			if ok {
				return fmt.Sprintf("scope %d has a temporary payload, want none", exp.Scope), nil
			}
			return "", nil
		}
		if !ok {
			return fmt.Sprintf("scope %d has no temporary payload", exp.Scope), nil
		}
		return compareDocument(exp.Document, payload)

	case ExpectEmpty:
		empty, err := s.IsEmpty(ctx)
		if err != nil {
			return "", err
		}
		if !empty {
			return "state is not empty", nil
		}
		return "", nil

	default:
		return "", fmt.Errorf("unknown expectation op %q", exp.Op)
	}
}

// compareValue compares canonical renderings, so integer width and map
// order do not matter.
func compareValue(name string, want any, raw []byte) (string, error) {
	wantValue, err := value.FromNative(want)
	if err != nil {
		return "", fmt.Errorf("expected value of %q: %w", name, err)
	}
	wantJSON, err := value.MarshalCanonical(wantValue)
	if err != nil {
		return "", err
	}
	got, err := value.Render(raw)
	if err != nil {
		return "", err
	}
	if got != string(wantJSON) {
		return fmt.Sprintf("%q = %s, want %s", name, got, wantJSON), nil
	}
	return "", nil
}

func compareDocument(want map[string]any, doc []byte) (string, error) {
	wantDoc, err := value.DocumentFromNative(want)
	if err != nil {
		return "", fmt.Errorf("expected document: %w", err)
	}
	wantJSON, err := value.DocumentToJSON(wantDoc)
	if err != nil {
		return "", err
	}
	got, err := value.DocumentToJSON(doc)
	if err != nil {
		return "", err
	}
	if string(got) != string(wantJSON) {
		return fmt.Sprintf("document = %s, want %s", got, wantJSON), nil
	}
	return "", nil
}
