package service

import (
	"context"
	"fmt"
	"strings"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

// ComplaintService files complaints for students and moves them through
// Pending → In Progress → Resolved for admins.
type ComplaintService interface {
	File(ctx context.Context, req FileComplaintRequest) (*domain.Complaint, error)
	ListAll(ctx context.Context) ([]*domain.Complaint, error)
	ListForStudent(ctx context.Context, applicationNumber string) ([]*domain.Complaint, error)
	UpdateStatus(ctx context.Context, id string, to domain.ComplaintStatus) (*domain.Complaint, error)
}

type FileComplaintRequest struct {
	ApplicationNumber string // from the session token
	Category          string
	Subject           string
	Details           string
}

type complaintService struct {
	complaints repository.ComplaintsRepository
	apps       repository.ApplicationsRepository
	logger     *zap.Logger
}

func NewComplaintService(complaints repository.ComplaintsRepository, apps repository.ApplicationsRepository, logger *zap.Logger) ComplaintService {
	return &complaintService{complaints: complaints, apps: apps, logger: logger}
}

func (s *complaintService) File(ctx context.Context, req FileComplaintRequest) (*domain.Complaint, error) {
	subject := strings.TrimSpace(req.Subject)
	details := strings.TrimSpace(req.Details)
	if subject == "" || details == "" {
		return nil, fmt.Errorf("%w: subject and details are required", domain.ErrInvalid)
	}
	a, err := s.apps.GetApplication(ctx, req.ApplicationNumber)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}
	room := "N/A"
	if a.Housed() {
		room = *a.RoomAllotted
	}
	c := &domain.Complaint{
		StudentID:         a.ID,
		StudentName:       a.Name,
		ApplicationNumber: a.ApplicationNumber,
		RoomAllotted:      room,
		Category:          category,
		Subject:           subject,
		Details:           details,
		Status:            domain.ComplaintPending,
	}
	if err := s.complaints.CreateComplaint(ctx, c); err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}
	s.logger.Info("Complaint filed",
		zap.String("complaint_id", c.ID),
		zap.String("application_number", c.ApplicationNumber),
		zap.String("category", c.Category),
	)
	return c, nil
}

func (s *complaintService) ListAll(ctx context.Context) ([]*domain.Complaint, error) {
	list, err := s.complaints.ListComplaints(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	domain.SortComplaints(list)
	return list, nil
}

func (s *complaintService) ListForStudent(ctx context.Context, applicationNumber string) ([]*domain.Complaint, error) {
	list, err := s.complaints.ListComplaints(ctx, applicationNumber)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	domain.SortComplaints(list)
	return list, nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, id string, to domain.ComplaintStatus) (*domain.Complaint, error) {
	cur, err := s.complaints.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cur.Status.CanTransitionTo(to); err != nil {
		return nil, err
	}
	c, err := s.complaints.UpdateComplaintStatus(ctx, id, cur.Status, to)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Complaint status changed",
		zap.String("complaint_id", id),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(to)),
	)
	return c, nil
}
