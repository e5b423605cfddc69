package permission

// Decision is the result of evaluating a requested permission against a
// role's grant for one resource.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Scope   Scope  `json:"scope,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

const (
	ReasonNotGranted     = "permission not granted"
	ReasonScopeViolation = "scope violation"
)

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func allow(scope Scope) Decision {
	return Decision{Allowed: true, Scope: scope}
}

// Evaluate resolves a requested permission against the granted tokens of one
// (role, resource) grant. It is a pure function over its inputs; callers load
// grant state themselves. Resolution order, first match wins:
//
//  1. exact token match; an own-scoped match additionally requires the actor
//     to be the target owner
//  2. bare-action grant, which covers everything
//  3. an "<action>:all" grant covers the request outright
//  4. a request for own scope is also satisfied by "<action>:own", with the
//     same ownership requirement
func Evaluate(granted []string, requested Permission, actorID, targetOwnerID uint) Decision {
	has := func(token string) bool {
		for _, g := range granted {
			if g == token {
				return true
			}
		}
		return false
	}

	ownsTarget := targetOwnerID == 0 || actorID == targetOwnerID

	// 1. Exact match.
	if has(requested.String()) {
		if requested.Scope == ScopeOwn {
			if !ownsTarget {
				return deny(ReasonScopeViolation)
			}
			return allow(ScopeOwn)
		}
		return allow(ScopeAll)
	}

	// 2. Bare action grants all records.
	if has(string(requested.Action)) {
		return allow(ScopeAll)
	}

	// 3. ":all" is a superset of every request for the same action.
	if has(string(requested.Action) + ":all") {
		return allow(ScopeAll)
	}

	// 4. Own-scoped grant for an own-scoped request.
	if requested.Scope == ScopeOwn && has(string(requested.Action)+":own") {
		if !ownsTarget {
			return deny(ReasonScopeViolation)
		}
		return allow(ScopeOwn)
	}

	return deny(ReasonNotGranted)
}
