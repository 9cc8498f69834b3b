// Package media hosts uploaded files and hands back public URLs plus opaque
// asset identifiers that callers keep for later deletion.
package media

import "context"

// Asset is the result of a successful upload.
type Asset struct {
	URL string
	ID  string
}

// Store is the media hosting contract the service layer depends on. Upload
// fails when the local file is unreadable or the backing call errors; Delete
// reports false when the asset was not known.
type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DeleteResult is the per-item outcome of a batch delete. Callers are expected
// to inspect or log it instead of discarding failures.
type DeleteResult struct {
	ID  string
	OK  bool
	Err error
}

// DeleteAll deletes every asset id through the store and collects per-item
// results. It never stops early; one failed delete does not block the rest.
func DeleteAll(ctx context.Context, store Store, ids []string) []DeleteResult {
	results := make([]DeleteResult, 0, len(ids))
	for _, id := range ids {
		ok, err := store.Delete(ctx, id)
		results = append(results, DeleteResult{ID: id, OK: ok && err == nil, Err: err})
	}
	return results
}

// Failures filters a batch result down to the entries that did not succeed.
func Failures(results []DeleteResult) []DeleteResult {
	var failed []DeleteResult
	for _, r := range results {
		if !r.OK {
			failed = append(failed, r)
		}
	}
	return failed
}
