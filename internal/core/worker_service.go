package core

import (
	"context"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/rs/zerolog/log"
)

// recentCheckInLimit is how many check-ins the worker detail view shows.
const recentCheckInLimit = 10

type NewWorker struct {
	Name       string `json:"name" label:"Name" validate:"required"`
	Position   string `json:"position" label:"Position" validate:"required"`
	Department string `json:"department" label:"Department" validate:"required"`
	Email      string `json:"email" label:"Email" validate:"required,emailshape"`
	Phone      string `json:"phone" label:"Phone" validate:"required"`
	// Skills is the comma-separated list typed by the user.
	Skills string `json:"skills"`
}

// WorkerPatch carries the fields to change; nil fields are left alone.
type WorkerPatch struct {
	Name        *string            `json:"name,omitempty" label:"Name" validate:"omitnil,min=1"`
	Position    *string            `json:"position,omitempty" label:"Position" validate:"omitnil,min=1"`
	Department  *string            `json:"department,omitempty" label:"Department" validate:"omitnil,min=1"`
	ContactInfo *model.ContactInfo `json:"contactInfo,omitempty"`
	Skills      *[]string          `json:"skills,omitempty"`
}

type WorkerDetail struct {
	Worker         model.Worker    `json:"worker"`
	RecentCheckIns []model.CheckIn `json:"recentCheckIns"`
}

type WorkerService struct {
	docs backend.Documents
	now  func() time.Time
}

func NewWorkerService(docs backend.Documents) *WorkerService {
	return &WorkerService{docs: docs, now: now}
}

// List returns the roster, newest first.
func (s *WorkerService) List(ctx context.Context) ([]model.Worker, error) {
	workers, err := listAll[model.Worker](ctx, s.docs, backend.Workers, backend.NewQuery().OrderDesc(backend.FieldCreatedAt))
	if err != nil {
		return nil, fail(ctx, "load workers", err)
	}
	return workers, nil
}

// Get loads a worker together with their latest check-ins.
func (s *WorkerService) Get(ctx context.Context, id string) (WorkerDetail, error) {
	w, err := get[model.Worker](ctx, s.docs, backend.Workers, id)
	if err != nil {
		return WorkerDetail{}, fail(ctx, "load worker", err)
	}

	q := newestFirst(backend.NewQuery().Equal("workerId", id)).WithLimit(recentCheckInLimit)
	recent, _, err := list[model.CheckIn](ctx, s.docs, backend.CheckIns, q)
	if err != nil {
		return WorkerDetail{}, fail(ctx, "load worker", err)
	}
	return WorkerDetail{Worker: w, RecentCheckIns: recent}, nil
}

// Find loads a single worker without their history.
func (s *WorkerService) Find(ctx context.Context, id string) (model.Worker, error) {
	w, err := get[model.Worker](ctx, s.docs, backend.Workers, id)
	if err != nil {
		return model.Worker{}, fail(ctx, "load worker", err)
	}
	return w, nil
}

func (s *WorkerService) Create(ctx context.Context, in NewWorker) (model.Worker, error) {
	if err := validateStruct(in); err != nil {
		return model.Worker{}, err
	}

	w, err := create(ctx, s.docs, backend.Workers, model.Worker{
		Name:        in.Name,
		Position:    in.Position,
		Department:  in.Department,
		Status:      model.WorkerActive,
		ContactInfo: model.ContactInfo{Email: in.Email, Phone: in.Phone},
		Skills:      ParseSkills(in.Skills),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return model.Worker{}, fail(ctx, "add worker", err)
	}
	log.Ctx(ctx).Info().Str("workerId", w.ID).Msg("Worker created")
	return w, nil
}

// ToggleStatus flips a worker between active and inactive.
func (s *WorkerService) ToggleStatus(ctx context.Context, w model.Worker) (model.Worker, error) {
	changes := map[string]any{"status": w.Status.Toggle()}
	updated, err := update(ctx, s.docs, backend.Workers, w.ID, w, changes)
	if err != nil {
		return w, fail(ctx, "update worker status", err)
	}
	return updated, nil
}

func (s *WorkerService) Update(ctx context.Context, w model.Worker, patch WorkerPatch) (model.Worker, error) {
	if err := validateStruct(patch); err != nil {
		return w, err
	}
	if ci := patch.ContactInfo; ci != nil {
		if !ValidEmail(ci.Email) {
			return w, invalid("Email", "Please enter a valid email address")
		}
		if ci.Phone == "" {
			return w, invalid("Phone", "Phone is required")
		}
	}

	updated, err := update(ctx, s.docs, backend.Workers, w.ID, w, patch)
	if err != nil {
		return w, fail(ctx, "update worker", err)
	}
	return updated, nil
}

// Delete removes a worker. Deleting an unknown id fails with an error that
// satisfies IsNotFound.
func (s *WorkerService) Delete(ctx context.Context, id string) error {
	if err := s.docs.DeleteDocument(ctx, backend.Workers, id); err != nil {
		return fail(ctx, "delete worker", err)
	}
	log.Ctx(ctx).Info().Str("workerId", id).Msg("Worker deleted")
	return nil
}
