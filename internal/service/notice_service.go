package service

import (
	"context"
	"fmt"
	"strings"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

type NoticeService interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Notice, error)
	Create(ctx context.Context, title, content string) (*domain.Notice, error)
	Update(ctx context.Context, id string, patch domain.NoticePatch) (*domain.Notice, error)
	Delete(ctx context.Context, id string) error
}

type noticeService struct {
	notices     repository.NoticesRepository
	broadcaster NoticeBroadcaster
	logger      *zap.Logger
}

func NewNoticeService(notices repository.NoticesRepository, broadcaster NoticeBroadcaster, logger *zap.Logger) NoticeService {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &noticeService{notices: notices, broadcaster: broadcaster, logger: logger}
}

func (s *noticeService) List(ctx context.Context, activeOnly bool) ([]*domain.Notice, error) {
	return s.notices.ListNotices(ctx, activeOnly)
}

func (s *noticeService) Create(ctx context.Context, title, content string) (*domain.Notice, error) {
	n := &domain.Notice{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content), IsActive: true}
	if n.Title == "" || n.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalid)
	}
	if err := s.notices.CreateNotice(ctx, n); err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}
	s.logger.Info("Notice created", zap.String("notice_id", n.ID))
	s.broadcast(n)
	return n, nil
}

func (s *noticeService) Update(ctx context.Context, id string, patch domain.NoticePatch) (*domain.Notice, error) {
	n, err := s.notices.GetNotice(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := n.IsActive
	if patch.Title != nil {
		n.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		n.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.IsActive != nil {
		n.IsActive = *patch.IsActive
	}
	if n.Title == "" || n.Content == "" {
		return nil, fmt.Errorf("%w: title and content cannot be empty", domain.ErrInvalid)
	}
	if err := s.notices.UpdateNotice(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Info("Notice updated", zap.String("notice_id", n.ID), zap.Bool("is_active", n.IsActive))
	if n.IsActive && !wasActive {
		s.broadcast(n)
	}
	return n, nil
}

func (s *noticeService) Delete(ctx context.Context, id string) error {
	if err := s.notices.DeleteNotice(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Notice deleted", zap.String("notice_id", id))
	return nil
}

func (s *noticeService) broadcast(n *domain.Notice) {
	if err := s.broadcaster.Broadcast(n); err != nil {
		s.logger.Warn("Failed to broadcast notice", zap.String("notice_id", n.ID), zap.Error(err))
	}
}
