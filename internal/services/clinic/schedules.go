package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"fmt"
	"net/http"
	"slices"
	"time"
)

// Days are the schedule days in the order the clinic week starts.
var Days = []string{"SAT", "SUN", "MON", "TUE", "WED", "THU", "FRI"}

func (s *Service) Schedules(ctx context.Context, p PageQuery) (*model.Page[model.Schedule], error) {
	const op = "clinic.Schedules"

	q := p.values(defaultPageSize)
	page, err := query[*model.Page[model.Schedule]](ctx, s, cache.Key{Namespace: cache.Schedules, Params: q.Encode()}, api.Request{
		Method: http.MethodGet,
		Path:   "/schedules/",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (s *Service) CreateSchedule(ctx context.Context, payload model.SchedulePayload) error {
	const op = "clinic.CreateSchedule"

	if err := validateSchedule(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mutate(ctx, cache.ScheduleCreated, api.Request{
		Method: http.MethodPost,
		Path:   "/schedules/",
		Body:   payload,
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) UpdateSchedule(ctx context.Context, id int, payload model.SchedulePayload) error {
	const op = "clinic.UpdateSchedule"

	if err := validateSchedule(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mutate(ctx, cache.ScheduleUpdated, api.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/schedules/%d/", id),
		Body:   payload,
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) DeleteSchedules(ctx context.Context, ids []int) error {
	const op = "clinic.DeleteSchedules"

	if len(ids) == 0 {
		return fmt.Errorf("%s: %w", op, validationError("no schedules selected"))
	}

	if err := s.mutate(ctx, cache.ScheduleDeleted, api.Request{
		Method: http.MethodDelete,
		Path:   "/schedules/bulk-delete/",
		Body:   map[string][]int{"ids": ids},
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateSchedule(p model.SchedulePayload) error {
	if !slices.Contains(Days, p.Day) {
		return validationError("day must be one of %v", Days)
	}
	if p.MaxPatients <= 0 {
		return validationError("max_patients must be positive")
	}
	return validateRange(p.StartTime, p.EndTime)
}

var timeLayouts = []string{"15:04", "15:04:05", time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05"}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validateRange requires both ends and start strictly before end.
func validateRange(start, end string) error {
	from, ok := parseTime(start)
	if !ok {
		return validationError("invalid start time %q", start)
	}
	to, ok := parseTime(end)
	if !ok {
		return validationError("invalid end time %q", end)
	}
	if !from.Before(to) {
		return validationError("start time must be before end time")
	}
	return nil
}
