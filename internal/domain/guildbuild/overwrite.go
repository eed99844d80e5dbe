package guildbuild

import (
	"golang.org/x/exp/slices"
)

// OverwriteDelta is the change of one role's overwrite on a channel, going
// from the live state to the template.
type OverwriteDelta struct {
	RoleName     string   `json:"roleName"`
	AddedAllow   []string `json:"addedAllow,omitempty"`
	RemovedAllow []string `json:"removedAllow,omitempty"`
	AddedDeny    []string `json:"addedDeny,omitempty"`
	RemovedDeny  []string `json:"removedDeny,omitempty"`
}

func (d OverwriteDelta) Empty() bool {
	return len(d.AddedAllow) == 0 && len(d.RemovedAllow) == 0 &&
		len(d.AddedDeny) == 0 && len(d.RemovedDeny) == 0
}

// DiffOverwrites compares two overwrite lists role by role over the union of
// their role names. Roles are reported in the order of want, then the roles
// only present in have. Unchanged roles are left out.
func DiffOverwrites(have, want []Overwrite) []OverwriteDelta {
	haveByRole := map[string]Overwrite{}
	for _, o := range have {
		haveByRole[o.RoleName] = o
	}

	wantByRole := map[string]Overwrite{}
	var roles []string
	for _, o := range want {
		wantByRole[o.RoleName] = o
		roles = append(roles, o.RoleName)
	}

	for _, o := range have {
		if _, ok := wantByRole[o.RoleName]; !ok {
			roles = append(roles, o.RoleName)
		}
	}

	deltas := []OverwriteDelta{}
	for _, role := range roles {
		h, w := haveByRole[role], wantByRole[role]
		delta := OverwriteDelta{
			RoleName:     role,
			AddedAllow:   difference(w.Allow, h.Allow),
			RemovedAllow: difference(h.Allow, w.Allow),
			AddedDeny:    difference(w.Deny, h.Deny),
			RemovedDeny:  difference(h.Deny, w.Deny),
		}

		if !delta.Empty() {
			deltas = append(deltas, delta)
		}
	}

	return deltas
}

// difference returns the sorted flags of a missing from b.
func difference(a, b []string) []string {
	var result []string
	for _, flag := range a {
		if !slices.Contains(b, flag) && !slices.Contains(result, flag) {
			result = append(result, flag)
		}
	}

	slices.Sort(result)
	return result
}

// overwriteFor returns the overwrite of roleName in overwrites.
func overwriteFor(overwrites []Overwrite, roleName string) (Overwrite, bool) {
	for _, o := range overwrites {
		if o.RoleName == roleName {
			return o, true
		}
	}

	return Overwrite{}, false
}
