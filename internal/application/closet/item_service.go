package closet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ItemServiceConfig holds upload limits and URL settings
type ItemServiceConfig struct {
	MaxUploadSize      int64
	RemoveBgCreditCost int
	URLExpiry          time.Duration
}

// DefaultItemServiceConfig returns default configuration
func DefaultItemServiceConfig() ItemServiceConfig {
	return ItemServiceConfig{
		MaxUploadSize:      15 << 20,
		RemoveBgCreditCost: 1,
		URLExpiry:          time.Hour,
	}
}

// ItemService handles closet item uploads and edits
type ItemService struct {
	itemRepo     closet.ItemRepository
	categoryRepo closet.CategoryRepository
	tagRepo      closet.TagRepository
	clientRepo   client.Repository
	storage      ObjectStorageService
	processor    ImageProcessor
	remover      BackgroundRemover
	metrics      *telemetry.ClosetMetrics
	config       ItemServiceConfig
	logger       *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo closet.ItemRepository,
	categoryRepo closet.CategoryRepository,
	tagRepo closet.TagRepository,
	clientRepo client.Repository,
	storage ObjectStorageService,
	processor ImageProcessor,
	logger *zap.Logger,
) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		clientRepo:   clientRepo,
		storage:      storage,
		processor:    processor,
		config:       DefaultItemServiceConfig(),
		logger:       logger,
	}
}

// SetConfig replaces the service configuration. Zero values keep the defaults.
func (s *ItemService) SetConfig(cfg ItemServiceConfig) {
	def := DefaultItemServiceConfig()
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = def.MaxUploadSize
	}
	if cfg.RemoveBgCreditCost <= 0 {
		cfg.RemoveBgCreditCost = def.RemoveBgCreditCost
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = def.URLExpiry
	}
	s.config = cfg
}

// SetBackgroundRemover enables background removal on upload
func (s *ItemService) SetBackgroundRemover(r BackgroundRemover) {
	s.remover = r
}

// SetMetrics attaches the closet metrics recorder
func (s *ItemService) SetMetrics(m *telemetry.ClosetMetrics) {
	s.metrics = m
}

// BackgroundRemovalEnabled reports whether uploads may ask for background removal
func (s *ItemService) BackgroundRemovalEnabled() bool {
	return s.remover != nil
}

// MaxUploadSize returns the largest accepted upload in bytes
func (s *ItemService) MaxUploadSize() int64 {
	return s.config.MaxUploadSize
}

// Upload stores a new closet image and its thumbnail
func (s *ItemService) Upload(ctx context.Context, in UploadItemInput) (resp *ItemResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "upload",
		attribute.String(telemetry.SpanAttrClientID, in.ClientID.String()),
		attribute.Int(telemetry.SpanAttrBytes, len(in.Data)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	detected, err := imaging.Sniff(in.Data)
	if err != nil {
		return nil, err
	}
	if int64(len(in.Data)) > s.config.MaxUploadSize {
		return nil, shared.NewDomainError(shared.ErrPayloadTooLarge.Code,
			fmt.Sprintf("Image exceeds the %d MB upload limit", s.config.MaxUploadSize>>20))
	}

	if _, err := s.clientRepo.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.validateTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	data := in.Data
	contentType := detected.MIME
	ext := detected.Extension
	bgRemoved := false

	if in.RemoveBackground {
		var charged int
		data, charged, err = s.removeBackground(ctx, in.ActorID, in.Data, in.Filename)
		if err != nil {
			return nil, err
		}
		if charged > 0 {
			// every later failure leaves nothing stored, so the credits go back
			defer func() {
				if err != nil {
					s.refund(ctx, in.ActorID, charged)
				}
			}()
		}
		contentType = "image/png"
		ext = ".png"
		bgRemoved = true
	}

	thumb, err := s.processor.Thumbnail(data)
	if err != nil {
		return nil, err
	}

	itemID := closet.NewItemID()
	item, err := closet.NewItem(itemID, in.ClientID, in.CategoryID, in.Name, closet.ImageInfo{
		FullKey:     closet.ItemFullKey(in.ClientID, itemID, ext),
		SmallKey:    closet.ItemSmallKey(in.ClientID, itemID),
		ContentType: contentType,
		Size:        int64(len(data)),
		Width:       thumb.SourceWidth,
		Height:      thumb.SourceHeight,
	})
	if err != nil {
		return nil, err
	}
	if err := item.SetTags(in.TagIDs); err != nil {
		return nil, err
	}
	if bgRemoved {
		item.MarkBackgroundRemoved()
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrItemID, item.ID.String()))

	if err := s.storage.PutObject(ctx, item.FullKey, data, contentType); err != nil {
		return nil, err
	}
	if err := s.storage.PutObject(ctx, item.SmallKey, thumb.Data, "image/jpeg"); err != nil {
		s.deleteObjects(ctx, item.FullKey)
		return nil, err
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.deleteObjects(ctx, item.StorageKeys()...)
		return nil, err
	}

	s.metrics.RecordUpload(ctx, contentType, item.Size, bgRemoved)
	s.logger.Info("Closet item uploaded",
		zap.String("client_id", in.ClientID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("content_type", contentType),
		zap.Int64("size", item.Size),
		zap.Bool("background_removed", bgRemoved))

	out := ToItemResponse(item)
	s.enrich(ctx, item, &out)
	return &out, nil
}

// removeBackground charges the actor, calls the provider and refunds on failure
// removeBackground charges the actor and calls the provider. It returns the
// number of credits charged; on error nothing stays charged.
func (s *ItemService) removeBackground(ctx context.Context, actorID uuid.UUID, data []byte, filename string) ([]byte, int, error) {
	if s.remover == nil {
		return nil, 0, shared.NewDomainError("FEATURE_DISABLED", "Background removal is not enabled")
	}

	actor, err := s.clientRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	cost := 0
	if !actor.HasUnlimitedCredits() {
		cost = s.config.RemoveBgCreditCost
		if err := s.clientRepo.ConsumeCredits(ctx, actorID, cost); err != nil {
			return nil, 0, err
		}
		s.metrics.RecordCredits(ctx, cost)
	}

	start := time.Now()
	out, err := s.remover.Remove(ctx, data, filename)
	s.metrics.RecordBackgroundRemoval(ctx, time.Since(start), err)
	if err == nil {
		return out, cost, nil
	}

	s.logger.Warn("Background removal failed",
		zap.String("actor_id", actorID.String()),
		zap.Error(err))
	if cost > 0 {
		s.refund(ctx, actorID, cost)
	}
	if shared.CodeOf(err) != "" {
		return nil, 0, err
	}
	return nil, 0, shared.ErrExternalService.Wrap(err)
}

// refund returns charged credits. It runs detached from ctx, which may be
// what failed.
func (s *ItemService) refund(ctx context.Context, actorID uuid.UUID, cost int) {
	if err := s.clientRepo.AddCredits(context.WithoutCancel(ctx), actorID, cost); err != nil {
		s.logger.Error("Failed to refund credits",
			zap.String("actor_id", actorID.String()),
			zap.Int("credits", cost),
			zap.Error(err))
		return
	}
	s.metrics.RecordCredits(ctx, -cost)
}

// List returns a page of a client's items
func (s *ItemService) List(ctx context.Context, clientID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := closet.ItemFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid category ID")
		}
		domainFilter.CategoryID = &id
	}
	for _, raw := range filter.TagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid tag ID")
		}
		domainFilter.TagIDs = append(domainFilter.TagIDs, id)
	}

	items, total, err := s.itemRepo.FindByClient(ctx, clientID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
		s.enrich(ctx, &items[i], &out[i])
	}
	return out, total, nil
}

// GetByID returns one item of a client
func (s *ItemService) GetByID(ctx context.Context, clientID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return nil, err
	}
	out := ToItemResponse(item)
	s.enrich(ctx, item, &out)
	return &out, nil
}

// Update changes an item's name, category or tags
func (s *ItemService) Update(ctx context.Context, clientID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := item.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil && *req.CategoryID != item.CategoryID {
		if err := s.validateCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		item.MoveToCategory(*req.CategoryID)
	}
	if req.TagIDs != nil {
		if err := s.validateTags(ctx, *req.TagIDs); err != nil {
			return nil, err
		}
		if err := item.SetTags(*req.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	out := ToItemResponse(item)
	s.enrich(ctx, item, &out)
	return &out, nil
}

// Delete removes an item, its stored images and every outfit reference to it
func (s *ItemService) Delete(ctx context.Context, clientID, itemID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "delete",
		attribute.String(telemetry.SpanAttrClientID, clientID.String()),
		attribute.String(telemetry.SpanAttrItemID, itemID.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	item, err := s.findOwned(ctx, clientID, itemID)
	if err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.deleteObjects(ctx, item.StorageKeys()...)

	s.logger.Info("Closet item deleted",
		zap.String("client_id", clientID.String()),
		zap.String("item_id", itemID.String()))
	return nil
}

// Summary counts a client's items per category
func (s *ItemService) Summary(ctx context.Context, clientID uuid.UUID) (*ClosetSummaryResponse, error) {
	counts, err := s.itemRepo.CountByCategory(ctx, clientID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	resp := &ClosetSummaryResponse{
		ClientID:   clientID,
		Categories: make([]CategoryCountResponse, 0, len(counts)),
	}
	for _, c := range counts {
		resp.Total += c.Count
		resp.Categories = append(resp.Categories, CategoryCountResponse{
			CategoryID:   c.CategoryID,
			CategoryName: names[c.CategoryID],
			Count:        c.Count,
		})
	}
	return resp, nil
}

// findOwned loads an item and hides items of other clients
func (s *ItemService) findOwned(ctx context.Context, clientID, itemID uuid.UUID) (*closet.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ClientID != clientID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (s *ItemService) validateCategory(ctx context.Context, categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ItemService) validateTags(ctx context.Context, tagIDs []uuid.UUID) error {
	want := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if id != uuid.Nil {
			want[id] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}

	tags, err := s.tagRepo.FindTagsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(tags) != len(ids) {
		return shared.NewDomainError("INVALID_TAG", "One or more tags do not exist")
	}
	return nil
}

// enrich adds presigned URLs. A signing failure leaves the URLs empty.
func (s *ItemService) enrich(ctx context.Context, item *closet.Item, resp *ItemResponse) {
	fullURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, item.FullKey, s.config.URLExpiry)
	if err != nil {
		s.logger.Warn("Failed to sign item URL", zap.String("key", item.FullKey), zap.Error(err))
		return
	}
	smallURL, _, err := s.storage.GenerateDownloadURL(ctx, item.SmallKey, s.config.URLExpiry)
	if err != nil {
		s.logger.Warn("Failed to sign item URL", zap.String("key", item.SmallKey), zap.Error(err))
		return
	}
	resp.EnrichWithURLs(fullURL, smallURL, expiresAt)
}

// deleteObjects removes stored objects on a best-effort basis.
// Leftovers are collected by the orphan sweeper.
func (s *ItemService) deleteObjects(ctx context.Context, keys ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to delete stored object",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
