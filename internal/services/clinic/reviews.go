package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultReviewsPageSize = 10

func (s *Service) Reviews(ctx context.Context, p PageQuery) (*model.Page[model.Review], error) {
	const op = "clinic.Reviews"

	doctorID, err := s.doctorID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := p.values(defaultReviewsPageSize)
	page, err := query[*model.Page[model.Review]](ctx, s, cache.Key{Namespace: cache.Reviews, Params: "doctor=" + doctorID + "&" + q.Encode()}, api.Request{
		Method: http.MethodGet,
		Path:   "/doctors/" + url.PathEscape(doctorID) + "/reviews/",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (s *Service) CreateReviewComment(ctx context.Context, reviewID int, content string) (*model.ReviewComment, error) {
	const op = "clinic.CreateReviewComment"

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, validationError("comment is empty"))
	}

	var out model.ReviewComment
	if err := s.mutate(ctx, cache.CommentCreated, api.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/reviews/%d/comments/", reviewID),
		Body:   map[string]string{"content": content},
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

func (s *Service) UpdateReviewComment(ctx context.Context, commentID int, content string) (*model.ReviewComment, error) {
	const op = "clinic.UpdateReviewComment"

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, validationError("comment is empty"))
	}

	var out model.ReviewComment
	if err := s.mutate(ctx, cache.CommentUpdated, api.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/comments/%d/", commentID),
		Body:   map[string]string{"content": content},
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

func (s *Service) DeleteReviewComment(ctx context.Context, commentID int) error {
	const op = "clinic.DeleteReviewComment"

	if err := s.mutate(ctx, cache.CommentDeleted, api.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/comments/%d/", commentID),
	}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePatientReport reports a patient to the clinic staff.
func (s *Service) CreatePatientReport(ctx context.Context, patientID int, reason string) (*model.PatientReport, error) {
	const op = "clinic.CreatePatientReport"

	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%s: %w", op, validationError("reason is empty"))
	}

	var out model.PatientReport
	if err := s.mutate(ctx, cache.PatientReported, api.Request{
		Method: http.MethodPost,
		Path:   "/patient-reports/",
		Body: map[string]any{
			"patient": patientID,
			"reason":  reason,
		},
	}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
