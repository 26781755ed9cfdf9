package learning

import "errors"

// errReuseTargetRequired signals a contract violation (checking OnlyAuthor
// reuse without a target container), not a recoverable domain error.
var errReuseTargetRequired = errors.New("learning: reuse check on an author-only item requires a target container")

// checkReuse decides whether an item with the given reuse level, owned by
// itemAuthorID, may be linked into target.
func checkReuse(reuse Reuse, itemAuthorID string, target *Base) error {
	if reuse > ReuseOnlyAuthor {
		return ErrNotReusable
	}
	if reuse == ReuseOnlyAuthor {
		if target == nil {
			return errReuseTargetRequired
		}
		if target.AuthorID != itemAuthorID {
			return ErrNotReusableByAuthorOnly
		}
	}
	return nil
}

// CanReuse reports whether the activity may be linked into target.
// target may only be nil when the activity's reuse is unrestricted.
func (a *Activity) CanReuse(target *Course) error {
	if target == nil {
		return checkReuse(a.Reuse, a.AuthorID, nil)
	}
	return checkReuse(a.Reuse, a.AuthorID, &target.Base)
}

// CanReuse reports whether the resource may be linked into target.
func (r *Resource) CanReuse(target *Activity) error {
	if target == nil {
		return checkReuse(r.Reuse, r.AuthorID, nil)
	}
	return checkReuse(r.Reuse, r.AuthorID, &target.Base)
}
