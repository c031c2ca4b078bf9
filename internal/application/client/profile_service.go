package client

import (
	"context"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService reads and writes style profiles
type ProfileService struct {
	profileRepo client.StyleProfileRepository
	clientRepo  client.Repository
	logger      *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo client.StyleProfileRepository, clientRepo client.Repository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profileRepo: profileRepo,
		clientRepo:  clientRepo,
		logger:      logger,
	}
}

// Get returns a client's profile, or an empty one when none was saved yet
func (s *ProfileService) Get(ctx context.Context, clientID uuid.UUID) (*StyleProfileResponse, error) {
	profile, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToStyleProfileResponse(profile)
	return &resp, nil
}

// Upsert replaces a client's profile
func (s *ProfileService) Upsert(ctx context.Context, clientID uuid.UUID, req StyleProfileRequest) (*StyleProfileResponse, error) {
	profile, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := profile.Update(req.Summary, req.Styles, req.Colors, req.Sizes, req.Notes); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("Style profile saved", zap.String("client_id", clientID.String()))

	resp := ToStyleProfileResponse(profile)
	return &resp, nil
}

func (s *ProfileService) load(ctx context.Context, clientID uuid.UUID) (*client.StyleProfile, error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.FindByClientID(ctx, clientID)
	if isNotFound(err) {
		return client.EmptyStyleProfile(clientID), nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
