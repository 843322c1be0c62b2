package core

import (
	"context"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type NewCustomer struct {
	Name        string               `json:"name" label:"Company name" validate:"required"`
	ContactName string               `json:"contact" label:"Contact person" validate:"required"`
	Email       string               `json:"email" label:"Email" validate:"required,emailshape"`
	Phone       string               `json:"phone" label:"Phone" validate:"required"`
	Address     string               `json:"address"`
	Industry    string               `json:"industry"`
	Website     string               `json:"website"`
	Status      model.CustomerStatus `json:"status" label:"Status" validate:"omitempty,oneof=Active Inactive Lead"`
	Notes       string               `json:"notes"`
}

// CustomerPatch carries the fields to change; nil fields are left alone.
type CustomerPatch struct {
	Name        *string               `json:"name,omitempty" label:"Company name" validate:"omitnil,min=1"`
	ContactName *string               `json:"contact,omitempty" label:"Contact person" validate:"omitnil,min=1"`
	Email       *string               `json:"email,omitempty" label:"Email" validate:"omitnil,emailshape"`
	Phone       *string               `json:"phone,omitempty" label:"Phone" validate:"omitnil,min=1"`
	Address     *string               `json:"address,omitempty"`
	Industry    *string               `json:"industry,omitempty"`
	Website     *string               `json:"website,omitempty"`
	Status      *model.CustomerStatus `json:"status,omitempty" label:"Status" validate:"omitnil,oneof=Active Inactive Lead"`
	Notes       *string               `json:"notes,omitempty"`
}

type NewInteraction struct {
	Type        string `json:"type" label:"Type" validate:"required,oneof=Meeting Call Email 'Site Visit'"`
	Description string `json:"description" label:"Description" validate:"required"`
	Staff       string `json:"staff" label:"Staff" validate:"required"`
}

type NewProject struct {
	Name   string  `json:"name" label:"Project name" validate:"required"`
	Status string  `json:"status" label:"Status" validate:"omitempty,oneof=Planning 'In Progress' Completed"`
	Value  float64 `json:"value" label:"Value" validate:"min=0"`
}

type CustomerService struct {
	docs backend.Documents
	now  func() time.Time
}

func NewCustomerService(docs backend.Documents) *CustomerService {
	return &CustomerService{docs: docs, now: now}
}

// List returns every customer ordered by company name.
func (s *CustomerService) List(ctx context.Context) ([]model.Customer, error) {
	customers, err := listAll[model.Customer](ctx, s.docs, backend.Customers, backend.NewQuery().OrderAsc("name"))
	if err != nil {
		return nil, fail(ctx, "load customers", err)
	}
	return customers, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (model.Customer, error) {
	c, err := get[model.Customer](ctx, s.docs, backend.Customers, id)
	if err != nil {
		return model.Customer{}, fail(ctx, "load customer", err)
	}
	return c, nil
}

func (s *CustomerService) Create(ctx context.Context, in NewCustomer) (model.Customer, error) {
	if err := validateStruct(in); err != nil {
		return model.Customer{}, err
	}
	status := in.Status
	if status == "" {
		status = model.CustomerActive
	}

	c, err := create(ctx, s.docs, backend.Customers, model.Customer{
		Name:         in.Name,
		ContactName:  in.ContactName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Industry:     in.Industry,
		Website:      in.Website,
		Status:       status,
		JoinDate:     s.now(),
		Notes:        in.Notes,
		Interactions: []model.Interaction{},
		Projects:     []model.Project{},
	})
	if err != nil {
		return model.Customer{}, fail(ctx, "add customer", err)
	}
	log.Ctx(ctx).Info().Str("customerId", c.ID).Msg("Customer created")
	return c, nil
}

func (s *CustomerService) Update(ctx context.Context, c model.Customer, patch CustomerPatch) (model.Customer, error) {
	if err := validateStruct(patch); err != nil {
		return c, err
	}
	updated, err := update(ctx, s.docs, backend.Customers, c.ID, c, patch)
	if err != nil {
		return c, fail(ctx, "update customer", err)
	}
	return updated, nil
}

// AddInteraction appends an entry to the customer's timeline.
func (s *CustomerService) AddInteraction(ctx context.Context, c model.Customer, in NewInteraction) (model.Customer, error) {
	if err := validateStruct(in); err != nil {
		return c, err
	}
	interactions := append(append([]model.Interaction{}, c.Interactions...), model.Interaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Description: in.Description,
		Date:        s.now(),
		Staff:       in.Staff,
	})
	updated, err := update(ctx, s.docs, backend.Customers, c.ID, c, map[string]any{"interactions": interactions})
	if err != nil {
		return c, fail(ctx, "add interaction", err)
	}
	return updated, nil
}

func (s *CustomerService) AddProject(ctx context.Context, c model.Customer, in NewProject) (model.Customer, error) {
	if err := validateStruct(in); err != nil {
		return c, err
	}
	status := in.Status
	if status == "" {
		status = model.ProjectPlanning
	}
	projects := append(append([]model.Project{}, c.Projects...), model.Project{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Status: status,
		Value:  in.Value,
	})
	updated, err := update(ctx, s.docs, backend.Customers, c.ID, c, map[string]any{"projects": projects})
	if err != nil {
		return c, fail(ctx, "add project", err)
	}
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.docs.DeleteDocument(ctx, backend.Customers, id); err != nil {
		return fail(ctx, "delete customer", err)
	}
	log.Ctx(ctx).Info().Str("customerId", id).Msg("Customer deleted")
	return nil
}

// ProjectValue totals the value of a customer's projects.
func ProjectValue(c model.Customer) float64 {
	var total float64
	for _, p := range c.Projects {
		total += p.Value
	}
	return total
}
