package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/application/identity"
	"github.com/shopforge/backend/internal/domain/shared"
)

// UserAdminService is the site administration API for accounts
type UserAdminService interface {
	ListUsers(ctx context.Context, input identity.ListUsersInput) (shared.Paginated[identity.UserDTO], error)
	GetUser(ctx context.Context, id uuid.UUID) (*identity.UserDTO, error)
	SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*identity.UserDTO, error)
	SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status string) (*identity.UserDTO, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
}

// UserHandler serves the site admin user endpoints
type UserHandler struct {
	BaseHandler
	userService UserAdminService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserAdminService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsersQuery filters the user listing
type ListUsersQuery struct {
	Search    string `form:"search" binding:"max=100"`
	Role      string `form:"role" binding:"omitempty,oneof=user admin"`
	Status    string `form:"status" binding:"omitempty,oneof=active disabled"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=email created_at last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// SetUserRoleRequest changes a user's site role
type SetUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// SetUserStatusRequest enables or disables an account
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// List returns a page of users.
// GET /admin/users
func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), identity.ListUsersInput{
		Keyword:   q.Search,
		Role:      q.Role,
		Status:    q.Status,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(&h.BaseHandler, c, result)
}

// Get returns one user.
// GET /admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// SetRole grants or removes the site admin role.
// PUT /admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}
	var req SetUserRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetUserRole(c.Request.Context(), actorID, userID, req.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// SetStatus enables or disables an account.
// PUT /admin/users/:id/status
func (h *UserHandler) SetStatus(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}
	var req SetUserStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetUserStatus(c.Request.Context(), actorID, userID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete removes an account.
// DELETE /admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
