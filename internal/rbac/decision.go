package rbac

// CapabilityMap is a user's resolved capabilities: category mapped to the
// deduplicated set of permitted actions. Once folded, the origin role of a
// capability is lost; decisions are role-agnostic.
type CapabilityMap map[string][]string

// Statement is a required capability statement: category mapped to the
// actions that must all be permitted.
type Statement map[string][]string

// HasRole reports whether the intersection of the held roles and the
// required set is non-empty. The required roles are treated as OR.
func HasRole(roles []string, required ...string) bool {
	for _, want := range required {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}

	return false
}

// CanExecuteAction reports whether the capability map satisfies the required
// statement. Every category in the statement must be present and every
// listed action within it must be permitted: categories are ANDed together
// and actions within one category are ANDed together. Callers wanting OR
// semantics issue parallel calls and fold the results themselves.
func CanExecuteAction(caps CapabilityMap, required Statement) bool {
	for category, actions := range required {
		allowed := caps[category]

		for _, action := range actions {
			if !contains(allowed, action) {
				return false
			}
		}
	}

	return true
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}
