// Package memory is an in-process implementation of the backend contract.
// It stands in for the remote service in tests and in demo mode.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type storedDoc struct {
	doc   backend.Document
	attrs map[string]any
	seq   int64
}

type account struct {
	user         model.User
	passwordHash []byte
}

// Store keeps documents and accounts in maps guarded by a single mutex.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	seq         int64
	collections map[string]map[string]*storedDoc
	accounts    map[string]account
	session     *model.Session
	failure     error
	calls       map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		collections: make(map[string]map[string]*storedDoc),
		accounts:    make(map[string]account),
		calls:       make(map[string]int),
	}
}

// SetClock replaces the time source used for system timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetFailure makes every following call fail with err until cleared with nil.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Calls returns how many times the named operation was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.failure
}

func (s *Store) CreateAccount(ctx context.Context, email, password, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateAccount"); err != nil {
		return model.User{}, err
	}

	key := strings.ToLower(email)
	if _, ok := s.accounts[key]; ok {
		return model.User{}, fmt.Errorf("account %s: %w", email, backend.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: s.now()}
	s.accounts[key] = account{user: user, passwordHash: hash}
	return user, nil
}

func (s *Store) CreateSession(ctx context.Context, email, password string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateSession"); err != nil {
		return model.Session{}, err
	}

	acc, ok := s.accounts[strings.ToLower(email)]
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return model.Session{}, fmt.Errorf("invalid credentials: %w", backend.ErrUnauthorized)
	}
	session := model.Session{
		ID:       uuid.NewString(),
		UserID:   acc.user.ID,
		ExpireAt: s.now().Add(365 * 24 * time.Hour),
	}
	s.session = &session
	return session, nil
}

func (s *Store) CurrentUser(ctx context.Context) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CurrentUser"); err != nil {
		return model.User{}, err
	}

	if s.session == nil {
		return model.User{}, fmt.Errorf("no active session: %w", backend.ErrUnauthorized)
	}
	for _, acc := range s.accounts {
		if acc.user.ID == s.session.UserID {
			return acc.user, nil
		}
	}
	return model.User{}, fmt.Errorf("session user missing: %w", backend.ErrUnauthorized)
}

func (s *Store) DeleteSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteSession"); err != nil {
		return err
	}

	if s.session == nil {
		return fmt.Errorf("no active session: %w", backend.ErrUnauthorized)
	}
	s.session = nil
	return nil
}

func (s *Store) CreateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	attrs, err := backend.Encode(data)
	if err != nil {
		return backend.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateDocument"); err != nil {
		return backend.Document{}, err
	}

	if id == "" || id == backend.AutoID {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	docs := s.collection(collection)
	if _, ok := docs[id]; ok {
		return backend.Document{}, fmt.Errorf("%s/%s: %w", collection, id, backend.ErrConflict)
	}

	now := s.now()
	s.seq++
	stored := &storedDoc{
		doc:   backend.Document{ID: id, Collection: collection, CreatedAt: now, UpdatedAt: now},
		attrs: attrs,
		seq:   s.seq,
	}
	if err := stored.sync(); err != nil {
		return backend.Document{}, err
	}
	docs[id] = stored
	return stored.doc, nil
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (backend.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetDocument"); err != nil {
		return backend.Document{}, err
	}

	stored, ok := s.collection(collection)[id]
	if !ok {
		return backend.Document{}, fmt.Errorf("%s/%s: %w", collection, id, backend.ErrNotFound)
	}
	return stored.doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	changes, err := backend.Encode(data)
	if err != nil {
		return backend.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateDocument"); err != nil {
		return backend.Document{}, err
	}

	stored, ok := s.collection(collection)[id]
	if !ok {
		return backend.Document{}, fmt.Errorf("%s/%s: %w", collection, id, backend.ErrNotFound)
	}
	for k, v := range changes {
		stored.attrs[k] = v
	}
	stored.doc.UpdatedAt = s.now()
	if err := stored.sync(); err != nil {
		return backend.Document{}, err
	}
	return stored.doc, nil
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteDocument"); err != nil {
		return err
	}

	docs := s.collection(collection)
	if _, ok := docs[id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, backend.ErrNotFound)
	}
	delete(docs, id)
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, collection string, q backend.Query) (backend.DocumentList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDocuments"); err != nil {
		return backend.DocumentList{}, err
	}

	filters := normalizeFilters(q.Filters)
	var matched []*storedDoc
	for _, stored := range s.collection(collection) {
		if stored.matches(filters) {
			matched = append(matched, stored)
		}
	}

	// Documents equal on every order field keep insertion order, reversed
	// when the primary order is descending.
	newestFirst := len(q.Orders) > 0 && q.Orders[0].Desc
	sort.Slice(matched, func(i, j int) bool {
		for _, o := range q.Orders {
			c := compareValues(matched[i].field(o.Field), matched[j].field(o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		if newestFirst {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].seq < matched[j].seq
	})

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	list := backend.DocumentList{Total: total, Documents: make([]backend.Document, 0, len(matched))}
	for _, stored := range matched {
		list.Documents = append(list.Documents, stored.doc)
	}
	return list, nil
}

func (s *Store) collection(name string) map[string]*storedDoc {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]*storedDoc)
		s.collections[name] = docs
	}
	return docs
}

func (d *storedDoc) sync() error {
	b, err := json.Marshal(d.attrs)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	d.doc.Data = b
	return nil
}

func (d *storedDoc) field(name string) any {
	switch name {
	case backend.FieldID:
		return d.doc.ID
	case backend.FieldCreatedAt:
		return d.doc.CreatedAt.Format(time.RFC3339Nano)
	case backend.FieldUpdatedAt:
		return d.doc.UpdatedAt.Format(time.RFC3339Nano)
	}
	var cur any = d.attrs
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func (d *storedDoc) matches(filters []backend.Filter) bool {
	for _, f := range filters {
		got := d.field(f.Field)
		ok := false
		for _, want := range f.Values {
			if compareValues(got, want) == 0 && got != nil {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// normalizeFilters gives query values the shape they have after a JSON
// round trip so they compare equal to stored attributes.
func normalizeFilters(filters []backend.Filter) []backend.Filter {
	out := make([]backend.Filter, len(filters))
	for i, f := range filters {
		values := make([]any, len(f.Values))
		for j, v := range f.Values {
			b, err := json.Marshal(v)
			if err != nil {
				values[j] = v
				continue
			}
			var norm any
			if json.Unmarshal(b, &norm) != nil {
				norm = v
			}
			values[j] = norm
		}
		out[i] = backend.Filter{Field: f.Field, Values: values}
	}
	return out
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	if c := strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
