package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	storeapp "github.com/shopforge/backend/internal/application/store"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/interfaces/http/dto"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
)

// StoreService is the store and membership API used by StoreHandler
type StoreService interface {
	CreateStore(ctx context.Context, ownerID uuid.UUID, input storeapp.CreateStoreInput) (*storeapp.StoreDTO, error)
	GetStore(ctx context.Context, ref string, includeInactive bool) (*storeapp.StoreDTO, error)
	ListStores(ctx context.Context, filter shared.Filter) (shared.Paginated[storeapp.StoreDTO], error)
	ListMyStores(ctx context.Context, userID uuid.UUID) ([]storeapp.MyStoreDTO, error)
	UpdateStore(ctx context.Context, storeID uuid.UUID, input storeapp.UpdateStoreInput) (*storeapp.StoreDTO, error)
	DeleteStore(ctx context.Context, storeID uuid.UUID) error
	RecomputeCounters(ctx context.Context, storeID uuid.UUID) (*storeapp.StoreDTO, error)
	RecomputeAllCounters(ctx context.Context) (int, error)
	AssignRole(ctx context.Context, input storeapp.AssignRoleInput) (*storeapp.StoreRoleDTO, error)
	RevokeRole(ctx context.Context, input storeapp.RevokeRoleInput) error
	ListRoles(ctx context.Context, storeID uuid.UUID) ([]storeapp.StoreRoleDTO, error)
}

// StoreHandler handles store and store membership endpoints
type StoreHandler struct {
	BaseHandler
	storeService StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// CreateStoreRequest opens a new store
type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=60"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateStoreRequest is a partial store update
type UpdateStoreRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	LogoURL     *string `json:"logo_url" binding:"omitempty,url,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// ListStoresQuery filters the public store directory
type ListStoresQuery struct {
	Search   string `form:"search" binding:"max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name created_at product_count"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AssignRoleRequest grants a store role to a user identified by ID or email
type AssignRoleRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Email  string     `json:"email" binding:"omitempty,email"`
	Role   string     `json:"role" binding:"required,oneof=owner admin moderator"`
}

// CountersRecomputeResponse reports a site-wide counter refresh
type CountersRecomputeResponse struct {
	Recomputed int `json:"recomputed"`
}

// Create opens a store owned by the caller.
// POST /stores
func (h *StoreHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req CreateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	st, err := h.storeService.CreateStore(c.Request.Context(), userID, storeapp.CreateStoreInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, st)
}

// Get returns a store by ID or slug. Inactive stores are only visible to
// site admins.
// GET /stores/:storeId
func (h *StoreHandler) Get(c *gin.Context) {
	st, err := h.storeService.GetStore(c.Request.Context(), c.Param(middleware.StoreIDParam), middleware.IsSiteAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, st)
}

// List returns the public directory of active stores.
// GET /stores
func (h *StoreHandler) List(c *gin.Context) {
	var q ListStoresQuery
	if !h.bindQuery(c, &q) {
		return
	}

	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
	}
	result, err := h.storeService.ListStores(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// ListMine returns the stores the caller belongs to, with the caller's role.
// GET /stores/mine
func (h *StoreHandler) ListMine(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	stores, err := h.storeService.ListMyStores(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stores)
}

// Update changes store details.
// PUT /stores/:storeId
func (h *StoreHandler) Update(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var req UpdateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	st, err := h.storeService.UpdateStore(c.Request.Context(), storeID, storeapp.UpdateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, st)
}

// Delete removes the store.
// DELETE /stores/:storeId
func (h *StoreHandler) Delete(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	if err := h.storeService.DeleteStore(c.Request.Context(), storeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecomputeCounters refreshes the store's cached totals.
// POST /stores/:storeId/counters/recompute
func (h *StoreHandler) RecomputeCounters(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	st, err := h.storeService.RecomputeCounters(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, st)
}

// RecomputeAllCounters refreshes every active store's totals.
// POST /admin/stores/counters/recompute
func (h *StoreHandler) RecomputeAllCounters(c *gin.Context) {
	n, err := h.storeService.RecomputeAllCounters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountersRecomputeResponse{Recomputed: n})
}

// ListRoles returns the store's members.
// GET /stores/:storeId/roles
func (h *StoreHandler) ListRoles(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	roles, err := h.storeService.ListRoles(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, roles)
}

// AssignRole grants or changes a member's role.
// POST /stores/:storeId/roles
func (h *StoreHandler) AssignRole(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.UserID == nil && req.Email == "" {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "user_id", Message: "Either user_id or email is required"}})
		return
	}

	input := storeapp.AssignRoleInput{
		ActorID:     actorID,
		ActorIsSite: middleware.IsSiteAdmin(c),
		StoreID:     storeID,
		Email:       req.Email,
		Role:        req.Role,
	}
	if req.UserID != nil {
		input.UserID = *req.UserID
	}

	role, err := h.storeService.AssignRole(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, role)
}

// RevokeRole removes a member from the store.
// DELETE /stores/:storeId/roles/:userId
func (h *StoreHandler) RevokeRole(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.storeService.RevokeRole(c.Request.Context(), storeapp.RevokeRoleInput{
		ActorID:     actorID,
		ActorIsSite: middleware.IsSiteAdmin(c),
		StoreID:     storeID,
		UserID:      userID,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
