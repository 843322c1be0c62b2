package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldops.service/internal/core/model"
)

// Logical collection names. Adapters map them to their own identifiers.
const (
	Workers         = "workers"
	CheckIns        = "checkins"
	Customers       = "customers"
	Surveys         = "surveys"
	SurveyResponses = "survey_responses"
	Reports         = "reports"
	Captures        = "captures"
)

// AutoID asks the backend to generate the document identifier.
const AutoID = "unique()"

// System attributes usable in queries.
const (
	FieldID        = "$id"
	FieldCreatedAt = "$createdAt"
	FieldUpdatedAt = "$updatedAt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("document already exists")
	ErrUnavailable  = errors.New("backend unavailable")
)

// Document is a single persisted record. Data holds the user attributes only.
type Document struct {
	ID         string
	Collection string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Data       json.RawMessage
}

type DocumentList struct {
	Documents []Document
	Total     int
}

// Account is the session side of the backend contract.
type Account interface {
	CreateSession(ctx context.Context, email, password string) (model.Session, error)
	CreateAccount(ctx context.Context, email, password, name string) (model.User, error)
	CurrentUser(ctx context.Context) (model.User, error)
	DeleteSession(ctx context.Context) error
}

// Documents is the document-database side of the backend contract.
type Documents interface {
	ListDocuments(ctx context.Context, collection string, q Query) (DocumentList, error)
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	CreateDocument(ctx context.Context, collection, id string, data any) (Document, error)
	UpdateDocument(ctx context.Context, collection, id string, data any) (Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Backend is everything the domain layer needs from the remote service.
type Backend interface {
	Account
	Documents
}

// Decode unmarshals a document into v, including its system attributes.
func Decode(doc Document, v any) error {
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
		}
	}
	system, err := json.Marshal(map[string]any{
		FieldID:        doc.ID,
		FieldCreatedAt: doc.CreatedAt,
		FieldUpdatedAt: doc.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(system, v)
}

// DecodeList decodes every document of a list into a typed slice.
func DecodeList[T any](list DocumentList) ([]T, error) {
	out := make([]T, 0, len(list.Documents))
	for _, doc := range list.Documents {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode turns v into document attributes, dropping system attributes.
func Encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var attrs map[string]any
	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, fmt.Errorf("document data must be a JSON object: %w", err)
	}
	delete(attrs, FieldID)
	delete(attrs, FieldCreatedAt)
	delete(attrs, FieldUpdatedAt)
	return attrs, nil
}
