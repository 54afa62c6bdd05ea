package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"fmt"
	"log/slog"
	"net/http"
)

const defaultPageSize = 5

func (s *Service) Dashboard(ctx context.Context) (*model.DashboardData, error) {
	const op = "clinic.Dashboard"

	data, err := query[*model.DashboardData](ctx, s, cache.Key{Namespace: cache.Dashboard}, api.Request{
		Method: http.MethodGet,
		Path:   "/doctors/dashboard/",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *Service) Appointments(ctx context.Context, p PageQuery) (*model.Page[model.Appointment], error) {
	const op = "clinic.Appointments"

	q := p.values(defaultPageSize)
	page, err := query[*model.Page[model.Appointment]](ctx, s, cache.Key{Namespace: cache.Appointments, Params: q.Encode()}, api.Request{
		Method: http.MethodGet,
		Path:   "/appointments/",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (s *Service) CancelAppointment(ctx context.Context, id int) error {
	const op = "clinic.CancelAppointment"

	if err := s.mutate(ctx, cache.AppointmentCancelled, api.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/appointments/%d/cancel/", id),
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("appointment cancelled", slog.Int("appointment_id", id))
	return nil
}

func (s *Service) CompleteAppointment(ctx context.Context, id int) error {
	const op = "clinic.CompleteAppointment"

	if err := s.mutate(ctx, cache.AppointmentCompleted, api.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/appointments/%d/complete/", id),
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("appointment completed", slog.Int("appointment_id", id))
	return nil
}
