package core

import (
	"context"
	"time"

	"fieldops.service/internal/ports/backend"
)

// fetchPageSize bounds each request when a whole collection is read.
const fetchPageSize = 100

// now returns the current time in the form every service persists: UTC at
// whole-second precision, so serialized timestamps sort lexicographically.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func list[T any](ctx context.Context, docs backend.Documents, collection string, q backend.Query) ([]T, int, error) {
	res, err := docs.ListDocuments(ctx, collection, q)
	if err != nil {
		return nil, 0, err
	}
	items, err := backend.DecodeList[T](res)
	if err != nil {
		return nil, 0, err
	}
	return items, res.Total, nil
}

// listAll pages through every document matching q.
func listAll[T any](ctx context.Context, docs backend.Documents, collection string, q backend.Query) ([]T, error) {
	var out []T
	for {
		page, total, err := list[T](ctx, docs, collection, q.WithLimit(fetchPageSize).WithOffset(len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

func get[T any](ctx context.Context, docs backend.Documents, collection, id string) (T, error) {
	var v T
	doc, err := docs.GetDocument(ctx, collection, id)
	if err != nil {
		return v, err
	}
	err = backend.Decode(doc, &v)
	return v, err
}

func create[T any](ctx context.Context, docs backend.Documents, collection string, data T) (T, error) {
	var v T
	doc, err := docs.CreateDocument(ctx, collection, backend.AutoID, data)
	if err != nil {
		return v, err
	}
	err = backend.Decode(doc, &v)
	return v, err
}

// update sends only changes. The backend answers with the whole document,
// which replaces current; on failure current is returned untouched.
func update[T any](ctx context.Context, docs backend.Documents, collection, id string, current T, changes any) (T, error) {
	doc, err := docs.UpdateDocument(ctx, collection, id, changes)
	if err != nil {
		return current, err
	}
	var merged T
	if err := backend.Decode(doc, &merged); err != nil {
		return current, err
	}
	return merged, nil
}
