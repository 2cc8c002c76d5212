package hull3d

import "github.com/tamirms/hull3d/internal/geom"

// facet is a hull face together with the construction state hanging off it:
// the apex (a hull point not on the face, fixing which side is inside) and
// the conflict list (input points visible from the outward side, ascending by
// identifier). Facets are immutable once constructed and shared by pointer
// between recursive calls and the ridge-owner map; "replacing" a facet always
// means allocating a new one.
type facet struct {
	tri       Triangle
	apex      int32
	conflicts []Point
}

// mergedConflicts merges two ascending conflict lists into one ascending
// list, then packs it by dropping every element whose identifier equals its
// predecessor's — which also drops the head. Dropping the head is deliberate:
// it is always the point being promoted onto the hull, and the visibility
// filter cannot be relied on to remove it because it lies exactly on the new
// face's plane, where the closed sidedness predicate may keep it.
func mergedConflicts(a, b []Point) []Point {
	uni := make([]Point, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].ID <= b[j].ID {
			uni = append(uni, a[i])
			i++
		} else {
			uni = append(uni, b[j])
			j++
		}
	}
	uni = append(uni, a[i:]...)
	uni = append(uni, b[j:]...)

	if len(uni) == 0 {
		return uni
	}
	k := 0
	prev := uni[0].ID
	for i := 1; i < len(uni); i++ {
		id := uni[i].ID
		if id != prev {
			uni[k] = uni[i]
			k++
		}
		prev = id
	}
	return uni[:k]
}

// visiblePoints filters cand down to the points visible from t's outward
// side. Orientation is resolved against the apex, a hull point known to be on
// the inward side: a candidate is visible exactly when the sidedness
// predicate disagrees with the apex's.
func (b *builder) visiblePoints(t Triangle, apex int32, cand []Point) []Point {
	p0 := b.points[t[0]].vec()
	normal := geom.Normal(p0, b.points[t[1]].vec(), b.points[t[2]].vec())
	inward := geom.Above(p0, normal, b.points[apex].vec())
	out := make([]Point, 0, len(cand))
	for _, p := range cand {
		if geom.Above(p0, normal, p.vec()) != inward {
			out = append(out, p)
		}
	}
	return out
}
