package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"fmt"
	"net/http"
)

type workingHourCreate struct {
	model.WorkingHourPayload
	Doctor string `json:"doctor"`
}

func (s *Service) WorkingHours(ctx context.Context, p PageQuery) (*model.Page[model.WorkingHour], error) {
	const op = "clinic.WorkingHours"

	q := p.values(defaultPageSize)
	page, err := query[*model.Page[model.WorkingHour]](ctx, s, cache.Key{Namespace: cache.WorkingHours, Params: q.Encode()}, api.Request{
		Method: http.MethodGet,
		Path:   "/working-hours/",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

// CreateWorkingHour books a slot for the signed in doctor.
func (s *Service) CreateWorkingHour(ctx context.Context, payload model.WorkingHourPayload) error {
	const op = "clinic.CreateWorkingHour"

	doctorID, err := s.doctorID()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := validateWorkingHour(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mutate(ctx, cache.WorkingHourCreated, api.Request{
		Method: http.MethodPost,
		Path:   "/working-hours/",
		Body:   workingHourCreate{WorkingHourPayload: payload, Doctor: doctorID},
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) UpdateWorkingHour(ctx context.Context, id int, payload model.WorkingHourPayload) error {
	const op = "clinic.UpdateWorkingHour"

	if err := validateWorkingHour(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mutate(ctx, cache.WorkingHourUpdated, api.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/working-hours/%d/", id),
		Body:   payload,
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) DeleteWorkingHours(ctx context.Context, ids []int) error {
	const op = "clinic.DeleteWorkingHours"

	if len(ids) == 0 {
		return fmt.Errorf("%s: %w", op, validationError("no working hours selected"))
	}

	if err := s.mutate(ctx, cache.WorkingHourDeleted, api.Request{
		Method: http.MethodDelete,
		Path:   "/working-hours/bulk-delete/",
		Body:   map[string][]int{"ids": ids},
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateWorkingHour(p model.WorkingHourPayload) error {
	if p.PatientLeft < 0 {
		return validationError("patient_left must not be negative")
	}
	return validateRange(p.StartTime, p.EndTime)
}
