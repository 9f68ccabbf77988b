package trails

import (
	"github.com/mariposa-trails/trailhead/errors"
)

// Merge reconciles an incoming batch of trails into the existing dataset and
// stamps everything it touches with nextVersion.
//
// Policy: additive merge. Trails are matched by name; posts by PostID within
// their trail. Posts whose ID already exists are dropped, never updated in
// place, so previously published content is immutable through this path. New
// posts are appended in batch order. New trails are appended whole. The
// overwrite policy (incoming batch replaces the dataset) was considered and
// rejected; see DESIGN.md.
//
// The existing dataset is not mutated; the returned slice shares no post
// slices with it.
func Merge(existing []Trail, incoming []Trail, nextVersion int) ([]Trail, error) {
	if err := validateBatch(incoming); err != nil {
		return nil, err
	}

	// Copy existing trails so appends never alias the caller's slices
	result := make([]Trail, len(existing))
	index := make(map[string]int, len(existing))
	for i, t := range existing {
		result[i] = t
		result[i].Posts = append([]Post(nil), t.Posts...)
		index[t.Name] = i
	}

	for _, in := range incoming {
		i, found := index[in.Name]
		if !found {
			t := Trail{Name: in.Name, Version: nextVersion}
			seen := make(map[string]bool, len(in.Posts))
			for _, p := range in.Posts {
				if seen[p.PostID] {
					continue
				}
				seen[p.PostID] = true
				p.Version = nextVersion
				t.Posts = append(t.Posts, p)
			}
			index[in.Name] = len(result)
			result = append(result, t)
			continue
		}

		seen := make(map[string]bool, len(result[i].Posts))
		for _, p := range result[i].Posts {
			seen[p.PostID] = true
		}
		for _, p := range in.Posts {
			if seen[p.PostID] {
				continue // existing posts keep their content and version
			}
			seen[p.PostID] = true
			p.Version = nextVersion
			result[i].Posts = append(result[i].Posts, p)
		}
		result[i].Version = nextVersion
	}

	return result, nil
}

// validateBatch fails fast on caller errors before anything is merged:
// every incoming trail needs a name, every post a postID.
func validateBatch(incoming []Trail) error {
	for i, t := range incoming {
		if t.Name == "" {
			return errors.NewInvalidRequestError("trail at index %d is missing a name", i)
		}
		for j, p := range t.Posts {
			if p.PostID == "" {
				return errors.NewInvalidRequestError("post at index %d of trail %q is missing a postID", j, t.Name)
			}
		}
	}
	return nil
}
