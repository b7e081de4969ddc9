package favorites

import "github.com/mmcdole/atelier/internal/domain"

// Merge unions the local and remote favorite sets.
//
// Ids from local keep their relative order; ids only the server knows are
// appended in the order the server returned them. Duplicates inside either
// input collapse. changed reports whether the result differs from remote as a
// set, i.e. whether the server needs a ReplaceAll to catch up.
func Merge(local, remote domain.FavoriteSet) (merged domain.FavoriteSet, changed bool) {
	seen := make(map[domain.FavoriteID]struct{}, len(local)+len(remote))
	merged = make(domain.FavoriteSet, 0, len(local)+len(remote))

	for _, id := range local {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range remote {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}

	return merged, !merged.SameMembers(remote)
}

// Subtract returns the ids of set that are not in drop, in order
func Subtract(set, drop domain.FavoriteSet) domain.FavoriteSet {
	out := make(domain.FavoriteSet, 0, len(set))
	for _, id := range set {
		if !drop.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
