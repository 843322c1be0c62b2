package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldops.service/internal/ports/backend"
)

type documentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

func (c *Client) documentsPath(collection string) string {
	id, ok := c.collections[collection]
	if !ok || id == "" {
		id = collection
	}
	return fmt.Sprintf("/databases/%s/collections/%s/documents", url.PathEscape(c.databaseID), url.PathEscape(id))
}

func (c *Client) ListDocuments(ctx context.Context, collection string, q backend.Query) (backend.DocumentList, error) {
	queries, err := encodeQueries(q)
	if err != nil {
		return backend.DocumentList{}, err
	}
	params := url.Values{}
	for _, s := range queries {
		params.Add("queries[]", s)
	}

	var raw documentList
	if err := c.do(ctx, http.MethodGet, c.documentsPath(collection), params, nil, &raw); err != nil {
		return backend.DocumentList{}, err
	}

	list := backend.DocumentList{Total: raw.Total, Documents: make([]backend.Document, 0, len(raw.Documents))}
	for _, r := range raw.Documents {
		doc, err := parseDocument(collection, r)
		if err != nil {
			return backend.DocumentList{}, err
		}
		list.Documents = append(list.Documents, doc)
	}
	return list, nil
}

func (c *Client) GetDocument(ctx context.Context, collection, id string) (backend.Document, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.documentsPath(collection)+"/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		return backend.Document{}, err
	}
	return parseDocument(collection, raw)
}

func (c *Client) CreateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	attrs, err := backend.Encode(data)
	if err != nil {
		return backend.Document{}, err
	}
	if id == "" {
		id = backend.AutoID
	}

	var raw json.RawMessage
	body := map[string]any{"documentId": id, "data": attrs}
	if err := c.do(ctx, http.MethodPost, c.documentsPath(collection), nil, body, &raw); err != nil {
		return backend.Document{}, err
	}
	return parseDocument(collection, raw)
}

func (c *Client) UpdateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	attrs, err := backend.Encode(data)
	if err != nil {
		return backend.Document{}, err
	}

	var raw json.RawMessage
	body := map[string]any{"data": attrs}
	if err := c.do(ctx, http.MethodPatch, c.documentsPath(collection)+"/"+url.PathEscape(id), nil, body, &raw); err != nil {
		return backend.Document{}, err
	}
	return parseDocument(collection, raw)
}

func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.documentsPath(collection)+"/"+url.PathEscape(id), nil, nil, nil)
}

// parseDocument splits Appwrite's flat document into system attributes and
// user data.
func parseDocument(collection string, raw json.RawMessage) (backend.Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return backend.Document{}, fmt.Errorf("decode document: %w", err)
	}

	doc := backend.Document{Collection: collection}
	if err := unmarshalField(fields, backend.FieldID, &doc.ID); err != nil {
		return backend.Document{}, err
	}
	if err := unmarshalField(fields, backend.FieldCreatedAt, &doc.CreatedAt); err != nil {
		return backend.Document{}, err
	}
	if err := unmarshalField(fields, backend.FieldUpdatedAt, &doc.UpdatedAt); err != nil {
		return backend.Document{}, err
	}

	for k := range fields {
		if strings.HasPrefix(k, "$") {
			delete(fields, k)
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return backend.Document{}, err
	}
	doc.Data = data
	return doc, nil
}

func unmarshalField(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if t, ok := v.(*time.Time); ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*t = parsed.UTC()
		return nil
	}
	return json.Unmarshal(raw, v)
}

type queryJSON struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// encodeQueries renders a query in Appwrite's JSON query syntax.
func encodeQueries(q backend.Query) ([]string, error) {
	var parts []queryJSON
	for _, f := range q.Filters {
		parts = append(parts, queryJSON{Method: "equal", Attribute: f.Field, Values: f.Values})
	}
	for _, o := range q.Orders {
		method := "orderAsc"
		if o.Desc {
			method = "orderDesc"
		}
		parts = append(parts, queryJSON{Method: method, Attribute: o.Field})
	}
	if q.Limit > 0 {
		parts = append(parts, queryJSON{Method: "limit", Values: []any{q.Limit}})
	}
	if q.Offset > 0 {
		parts = append(parts, queryJSON{Method: "offset", Values: []any{q.Offset}})
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode query %s: %w", p.Method, err)
		}
		out = append(out, string(b))
	}
	return out, nil
}
