package outfit

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ObjectStorageService stores and signs preview images
type ObjectStorageService interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// OutfitServiceConfig holds preview limits and URL settings
type OutfitServiceConfig struct {
	MaxPreviewSize int64
	URLExpiry      time.Duration
}

// DefaultOutfitServiceConfig returns default configuration
func DefaultOutfitServiceConfig() OutfitServiceConfig {
	return OutfitServiceConfig{
		MaxPreviewSize: 5 << 20,
		URLExpiry:      time.Hour,
	}
}

// OutfitService handles outfit composition
type OutfitService struct {
	outfitRepo outfit.Repository
	itemRepo   closet.ItemRepository
	storage    ObjectStorageService
	metrics    *telemetry.ClosetMetrics
	config     OutfitServiceConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewOutfitService creates a new OutfitService
func NewOutfitService(
	outfitRepo outfit.Repository,
	itemRepo closet.ItemRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *OutfitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutfitService{
		outfitRepo: outfitRepo,
		itemRepo:   itemRepo,
		storage:    storage,
		config:     DefaultOutfitServiceConfig(),
		now:        time.Now,
		logger:     logger,
	}
}

// SetConfig replaces the service configuration. Zero values keep the defaults.
func (s *OutfitService) SetConfig(cfg OutfitServiceConfig) {
	def := DefaultOutfitServiceConfig()
	if cfg.MaxPreviewSize <= 0 {
		cfg.MaxPreviewSize = def.MaxPreviewSize
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = def.URLExpiry
	}
	s.config = cfg
}

// SetMetrics attaches the closet metrics recorder
func (s *OutfitService) SetMetrics(m *telemetry.ClosetMetrics) {
	s.metrics = m
}

// List returns a page of a client's outfits, newest first by default
func (s *OutfitService) List(ctx context.Context, clientID uuid.UUID, filter OutfitListFilter) ([]OutfitResponse, int64, error) {
	outfits, total, err := s.outfitRepo.FindByClient(ctx, clientID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]OutfitResponse, len(outfits))
	for i := range outfits {
		out[i] = s.respond(ctx, &outfits[i])
	}
	return out, total, nil
}

// GetByID returns one outfit of a client
func (s *OutfitService) GetByID(ctx context.Context, clientID, outfitID uuid.UUID) (*OutfitResponse, error) {
	o, err := s.findOwned(ctx, clientID, outfitID)
	if err != nil {
		return nil, err
	}
	resp := s.respond(ctx, o)
	return &resp, nil
}

// Create saves a new outfit and its preview
func (s *OutfitService) Create(ctx context.Context, clientID uuid.UUID, req CreateOutfitRequest) (resp *OutfitResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "outfit", "create",
		attribute.String(telemetry.SpanAttrClientID, clientID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	preview, err := s.decodePreview(req.Preview)
	if err != nil {
		return nil, err
	}
	if err := s.validateItems(ctx, clientID, req.ItemIDs); err != nil {
		return nil, err
	}

	id := outfit.NewOutfitID()
	o, err := outfit.NewOutfit(id, clientID, req.Name, req.Stage, req.ItemIDs)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrOutfitID, o.ID.String()))

	key := outfit.PreviewKeyFor(clientID, o.ID, s.now())
	if err := s.storage.PutObject(ctx, key, preview, "image/png"); err != nil {
		return nil, err
	}
	o.SetPreview(key)

	if err := s.outfitRepo.Create(ctx, o); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}
	s.metrics.RecordOutfitPreview(ctx)

	s.logger.Info("Outfit created",
		zap.String("client_id", clientID.String()),
		zap.String("outfit_id", o.ID.String()),
		zap.Int("items", len(o.ItemIDs)))

	out := s.respond(ctx, o)
	return &out, nil
}

// Update replaces an outfit's canvas and, when given, its preview.
// The previous preview object is deleted once the new one is saved.
func (s *OutfitService) Update(ctx context.Context, clientID, outfitID uuid.UUID, req UpdateOutfitRequest) (resp *OutfitResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "outfit", "update",
		attribute.String(telemetry.SpanAttrClientID, clientID.String()),
		attribute.String(telemetry.SpanAttrOutfitID, outfitID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.findOwned(ctx, clientID, outfitID)
	if err != nil {
		return nil, err
	}

	var preview []byte
	if req.Preview != "" {
		if preview, err = s.decodePreview(req.Preview); err != nil {
			return nil, err
		}
	}
	if err := s.validateItems(ctx, clientID, req.ItemIDs); err != nil {
		return nil, err
	}
	if err := o.Update(req.Name, req.Stage, req.ItemIDs); err != nil {
		return nil, err
	}

	var newKey, oldKey string
	if preview != nil {
		newKey = outfit.PreviewKeyFor(clientID, o.ID, s.now())
		if newKey == o.PreviewKey {
			// same second as the last save
			newKey = outfit.PreviewKeyFor(clientID, o.ID, s.now().Add(time.Second))
		}
		if err := s.storage.PutObject(ctx, newKey, preview, "image/png"); err != nil {
			return nil, err
		}
		oldKey = o.SetPreview(newKey)
	}

	if err := s.outfitRepo.Save(ctx, o); err != nil {
		if newKey != "" {
			s.deleteObject(ctx, newKey)
		}
		return nil, err
	}
	if oldKey != "" {
		s.deleteObject(ctx, oldKey)
	}
	if newKey != "" {
		s.metrics.RecordOutfitPreview(ctx)
	}

	s.logger.Info("Outfit updated",
		zap.String("client_id", clientID.String()),
		zap.String("outfit_id", o.ID.String()),
		zap.Bool("preview_replaced", newKey != ""))

	out := s.respond(ctx, o)
	return &out, nil
}

// Delete removes an outfit and its preview
func (s *OutfitService) Delete(ctx context.Context, clientID, outfitID uuid.UUID) error {
	o, err := s.findOwned(ctx, clientID, outfitID)
	if err != nil {
		return err
	}
	if err := s.outfitRepo.Delete(ctx, o.ID); err != nil {
		return err
	}
	if o.PreviewKey != "" {
		s.deleteObject(ctx, o.PreviewKey)
	}

	s.logger.Info("Outfit deleted",
		zap.String("client_id", clientID.String()),
		zap.String("outfit_id", outfitID.String()))
	return nil
}

func (s *OutfitService) findOwned(ctx context.Context, clientID, outfitID uuid.UUID) (*outfit.Outfit, error) {
	o, err := s.outfitRepo.FindByID(ctx, outfitID)
	if err != nil {
		return nil, err
	}
	if o.ClientID != clientID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// validateItems checks that every referenced item exists and belongs to the client
func (s *OutfitService) validateItems(ctx context.Context, clientID uuid.UUID, itemIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(itemIDs))
	ids := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ClientID != clientID {
			return shared.NewDomainError("INVALID_ITEM", "Outfit items must belong to the client")
		}
	}
	if len(items) != len(ids) {
		return shared.NewDomainError("INVALID_ITEM", "One or more outfit items do not exist")
	}
	return nil
}

// decodePreview turns a data URL into PNG bytes
func (s *OutfitService) decodePreview(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, shared.NewDomainError("INVALID_PREVIEW", "Preview must be a base64 data URL")
	}
	// base64 inflates by 4/3
	if int64(len(payload)) > s.config.MaxPreviewSize/3*4+4 {
		return nil, shared.NewDomainError(shared.ErrPayloadTooLarge.Code,
			fmt.Sprintf("Preview exceeds the %d MB limit", s.config.MaxPreviewSize>>20))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PREVIEW", "Preview is not valid base64")
	}
	if int64(len(data)) > s.config.MaxPreviewSize {
		return nil, shared.NewDomainError(shared.ErrPayloadTooLarge.Code,
			fmt.Sprintf("Preview exceeds the %d MB limit", s.config.MaxPreviewSize>>20))
	}
	if !imaging.IsPNG(data) {
		return nil, shared.NewDomainError(shared.ErrUnsupportedMedia.Code, "Preview must be a PNG image")
	}
	return data, nil
}

func (s *OutfitService) respond(ctx context.Context, o *outfit.Outfit) OutfitResponse {
	resp := ToOutfitResponse(o)
	if o.PreviewKey == "" {
		return resp
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, o.PreviewKey, s.config.URLExpiry)
	if err != nil {
		s.logger.Warn("Failed to sign preview URL", zap.String("key", o.PreviewKey), zap.Error(err))
		return resp
	}
	resp.PreviewURL = url
	resp.PreviewURLExpiresAt = &expiresAt
	return resp
}

// deleteObject removes a stored object on a best-effort basis
func (s *OutfitService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("Failed to delete stored object",
			zap.String("key", key),
			zap.Error(err))
	}
}
