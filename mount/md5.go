package mount

import (
	"context"
	"iter"

	"github.com/mwantia/tenantvfs/data"
)

// CountMd5Sums yields the md5 of every readable file below this folder
// together with its path relative to the folder. Folders are omitted.
// A file has no descendants and yields nothing.
func (vf *VirtualFile) CountMd5Sums(ctx context.Context) iter.Seq2[data.Md5Sum, error] {
	return func(yield func(data.Md5Sum, error) bool) {
		sums, err := vf.md5Sums(ctx)
		if err != nil {
			yield(data.Md5Sum{}, err)
			return
		}

		for _, sum := range sums {
			if !yield(sum, nil) {
				return
			}
		}
	}
}

func (vf *VirtualFile) md5Sums(ctx context.Context) ([]data.Md5Sum, error) {
	user, err := vf.mp.caller(ctx)
	if err != nil {
		return nil, err
	}

	vf.mp.mu.RLock()
	defer vf.mp.mu.RUnlock()

	n, err := vf.readableUnsafe(user)
	if err != nil {
		return nil, err
	}
	if !n.isFolder() {
		return nil, nil
	}

	base := vf.mp.pathUnsafe(n)
	var sums []data.Md5Sum
	readable := map[string]bool{n.id: true}
	vf.mp.walkUnsafe(n, func(cur *node) bool {
		if cur.id == n.id {
			return true
		}
		if !readable[cur.parentID] || !vf.mp.permissionsUnsafe(cur, user).Allows(data.PermissionRead) {
			return true
		}
		readable[cur.id] = true

		if v := cur.current(); v != nil && !cur.isFolder() {
			sums = append(sums, data.Md5Sum{
				Hash: v.md5,
				Path: vf.mp.pathUnsafe(cur).Relative(base),
			})
		}
		return ctx.Err() == nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}
