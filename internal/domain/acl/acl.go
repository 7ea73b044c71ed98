package acl

// Package acl contains domain types for role permissions resolved from the
// upstream ACL endpoint: a mapping from protected subject to granted actions.

// Action is the granularity of a permission grant.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// crudActions is the full set an item-managing view needs.
var crudActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

// PermissionSet maps a subject (e.g. "UNIT", "KATEGORI", "USER") to the set of
// actions the role may perform on it. A nil PermissionSet means "unresolved"
// and answers false to every query (fail closed, never open).
type PermissionSet map[string]map[Action]bool

// Entry is the wire-level shape of one permission grant.
type Entry struct {
	Subject string   `json:"subject"`
	Actions []string `json:"actions"`
}

// Build constructs a PermissionSet from wire entries. Later entries for the
// same subject merge into the earlier ones; unknown action strings are kept
// verbatim so future grants pass through untouched.
func Build(entries []Entry) PermissionSet {
	set := make(PermissionSet, len(entries))
	for _, e := range entries {
		if e.Subject == "" {
			continue
		}
		actions := set[e.Subject]
		if actions == nil {
			actions = make(map[Action]bool, len(e.Actions))
			set[e.Subject] = actions
		}
		for _, a := range e.Actions {
			actions[Action(a)] = true
		}
	}
	return set
}

// Has reports whether the set grants action on subject.
// Unknown subjects and unresolved (nil) sets answer false.
func (p PermissionSet) Has(subject string, action Action) bool {
	if p == nil {
		return false
	}
	return p[subject][action]
}

// HasFullCRUD reports whether all four of read, create, update, delete are
// granted on subject. Partial grants answer false (full-CRUD-or-nothing).
func (p PermissionSet) HasFullCRUD(subject string) bool {
	if p == nil {
		return false
	}
	for _, a := range crudActions {
		if !p[subject][a] {
			return false
		}
	}
	return true
}
