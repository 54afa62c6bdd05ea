package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"fmt"
	"net/http"
)

const pathDoctorProfile = "/auth/me/doctor/"

func (s *Service) Profile(ctx context.Context) (*model.DoctorProfile, error) {
	const op = "clinic.Profile"

	profile, err := query[*model.DoctorProfile](ctx, s, cache.Key{Namespace: cache.DoctorProfile}, api.Request{
		Method: http.MethodGet,
		Path:   pathDoctorProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.DoctorProfile, error) {
	const op = "clinic.UpdateProfile"

	var out model.DoctorProfile
	if err := s.mutate(ctx, cache.ProfileUpdated, api.Request{
		Method: http.MethodPut,
		Path:   pathDoctorProfile,
		Body:   update,
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

func (s *Service) Specialties(ctx context.Context) (*model.Page[model.Specialty], error) {
	const op = "clinic.Specialties"

	page, err := query[*model.Page[model.Specialty]](ctx, s, cache.Key{Namespace: cache.Specialties}, api.Request{
		Method: http.MethodGet,
		Path:   "/specialties/",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}
