package permission

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/peoplehub/backoffice/internal/apperr"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Scope string

const (
	// ScopeNone marks a bare token like "update"; at evaluation time it
	// behaves as ScopeAll.
	ScopeNone Scope = ""
	ScopeOwn  Scope = "own"
	ScopeAll  Scope = "all"
)

// Permission is the parsed form of a wire token such as "read:own". The
// string form exists only at the store/transport edge.
type Permission struct {
	Action Action
	Scope  Scope
}

func (p Permission) String() string {
	if p.Scope == ScopeNone {
		return string(p.Action)
	}
	return string(p.Action) + ":" + string(p.Scope)
}

var resourcePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseResource validates a resource identifier ("employees", "leave_requests").
func ParseResource(s string) (string, error) {
	if !resourcePattern.MatchString(s) {
		return "", fmt.Errorf("%w: invalid resource %q", apperr.ErrInvalidArgument, s)
	}
	return s, nil
}

// Parse converts a wire token into a Permission, rejecting anything outside
// the closed action/scope sets.
func Parse(token string) (Permission, error) {
	action, scope, hasScope := strings.Cut(token, ":")

	var p Permission
	switch Action(action) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		p.Action = Action(action)
	default:
		return Permission{}, fmt.Errorf("%w: invalid action %q", apperr.ErrInvalidArgument, action)
	}

	if hasScope {
		switch Scope(scope) {
		case ScopeOwn, ScopeAll:
			p.Scope = Scope(scope)
		default:
			return Permission{}, fmt.Errorf("%w: invalid scope %q", apperr.ErrInvalidArgument, scope)
		}
	}

	return p, nil
}
