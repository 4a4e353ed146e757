package entity

import (
	"sort"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// RoleSet is the list of roles granted on top of the base ROLE_USER.
// The base role is implied and never persisted.
type RoleSet []string

func (r RoleSet) Has(role string) bool {
	if role == RoleUser {
		return true
	}
	for _, existing := range r {
		if existing == role {
			return true
		}
	}
	return false
}

func (r *RoleSet) Add(role string) {
	if role == "" || r.Has(role) {
		return
	}
	*r = append(*r, role)
}

func (r *RoleSet) Remove(role string) {
	out := (*r)[:0]
	for _, existing := range *r {
		if existing != role {
			out = append(out, existing)
		}
	}
	*r = out
}

// All returns the stored roles plus ROLE_USER, sorted and without duplicates.
func (r RoleSet) All() []string {
	seen := map[string]struct{}{RoleUser: {}}
	roles := []string{RoleUser}
	for _, role := range r {
		if _, ok := seen[role]; ok || role == "" {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
