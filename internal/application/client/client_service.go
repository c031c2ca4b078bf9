package client

import (
	"context"
	"errors"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/closet"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/outfit"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ObjectDeleter removes stored objects
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// ClientService manages client accounts
type ClientService struct {
	clientRepo client.Repository
	itemRepo   closet.ItemRepository
	outfitRepo outfit.Repository
	storage    ObjectDeleter
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo client.Repository,
	itemRepo closet.ItemRepository,
	outfitRepo outfit.Repository,
	storage ObjectDeleter,
	logger *zap.Logger,
) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clientRepo: clientRepo,
		itemRepo:   itemRepo,
		outfitRepo: outfitRepo,
		storage:    storage,
		logger:     logger,
	}
}

// Create creates a client. Only super admins may create admins.
func (s *ClientService) Create(ctx context.Context, actor Actor, req CreateClientRequest) (*ClientResponse, error) {
	if (req.IsAdmin || req.IsSuperAdmin) && !actor.IsSuperAdmin {
		return nil, shared.NewDomainError("FORBIDDEN", "Only super admins can create admins")
	}

	exists, err := s.clientRepo.ExistsByEmail(ctx, normalizeEmail(req.Email), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.AlreadyExists("A client with this email")
	}

	c, err := client.NewClient(req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := c.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}
	if req.IsAdmin || req.IsSuperAdmin {
		c.SetRoles(req.IsAdmin, req.IsSuperAdmin)
	}
	if req.Credits > 0 {
		if err := c.AddCredits(req.Credits); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Client created",
		zap.String("client_id", c.ID.String()),
		zap.String("created_by", actor.ID.String()),
		zap.Bool("is_admin", c.IsAdmin))

	resp := ToClientResponse(c)
	return &resp, nil
}

// GetByID returns a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// List returns a page of clients
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "last_name"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "asc"
	}
	clients, total, err := s.clientRepo.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out, total, nil
}

// Update changes a client's contact details and, for super admins, roles
func (s *ClientService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin, isSuperAdmin := c.IsAdmin, c.IsSuperAdmin
	if req.IsAdmin != nil {
		isAdmin = *req.IsAdmin
	}
	if req.IsSuperAdmin != nil {
		isSuperAdmin = *req.IsSuperAdmin
	}
	rolesChanged := isAdmin != c.IsAdmin || isSuperAdmin != c.IsSuperAdmin
	if rolesChanged {
		if !actor.IsSuperAdmin {
			return nil, shared.NewDomainError("FORBIDDEN", "Only super admins can change admin roles")
		}
		if c.ID == actor.ID && ((c.IsAdmin && !isAdmin && !isSuperAdmin) || (c.IsSuperAdmin && !isSuperAdmin)) {
			return nil, shared.NewDomainError("CANNOT_DEMOTE_SELF", "You cannot remove your own admin role")
		}
	}

	if email := normalizeEmail(req.Email); email != c.Email {
		exists, err := s.clientRepo.ExistsByEmail(ctx, email, &c.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.AlreadyExists("A client with this email")
		}
		if err := c.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if err := c.Rename(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if err := c.SetPhone(req.Phone); err != nil {
		return nil, err
	}
	if rolesChanged {
		c.SetRoles(isAdmin, isSuperAdmin)
	}

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Client updated",
		zap.String("client_id", c.ID.String()),
		zap.String("updated_by", actor.ID.String()),
		zap.Bool("roles_changed", rolesChanged))

	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client with every item, outfit, shopping entry and
// profile, then deletes their stored images.
func (s *ClientService) Delete(ctx context.Context, actor Actor, id uuid.UUID) (resp *DeleteClientResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "delete",
		attribute.String(telemetry.SpanAttrClientID, id.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if id == actor.ID {
		return nil, shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	target, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.IsSuperAdmin && !actor.IsSuperAdmin {
		return nil, shared.NewDomainError("FORBIDDEN", "Only super admins can delete super admins")
	}

	items, err := s.itemRepo.FindAllByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	outfits, err := s.outfitRepo.FindAllByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items)*2+len(outfits))
	for i := range items {
		keys = append(keys, items[i].StorageKeys()...)
	}
	for i := range outfits {
		if outfits[i].PreviewKey != "" {
			keys = append(keys, outfits[i].PreviewKey)
		}
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	// rows are gone; a failed object delete is left to the sweeper
	objCtx := context.WithoutCancel(ctx)
	failed := 0
	for _, key := range keys {
		if err := s.storage.DeleteObject(objCtx, key); err != nil {
			failed++
			s.logger.Warn("Failed to delete stored object",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	s.logger.Info("Client deleted",
		zap.String("client_id", id.String()),
		zap.String("deleted_by", actor.ID.String()),
		zap.Int("items", len(items)),
		zap.Int("outfits", len(outfits)),
		zap.Int("objects_failed", failed))

	return &DeleteClientResponse{
		DeletedItems:   len(items),
		DeletedOutfits: len(outfits),
	}, nil
}

// AddCredits grants credits to a client
func (s *ClientService) AddCredits(ctx context.Context, id uuid.UUID, req AddCreditsRequest) (*ClientResponse, error) {
	if req.Amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if err := s.clientRepo.AddCredits(ctx, id, req.Amount); err != nil {
		return nil, err
	}
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credits added",
		zap.String("client_id", id.String()),
		zap.Int("amount", req.Amount),
		zap.Int("balance", c.Credits))

	resp := ToClientResponse(c)
	return &resp, nil
}

// CanAccess reports whether the actor may read the given client's closet
func CanAccess(actor Actor, clientID uuid.UUID) bool {
	return actor.IsAdmin || actor.IsSuperAdmin || actor.ID == clientID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isNotFound reports whether err is the shared not-found error
func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
