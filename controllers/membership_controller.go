package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/membership/middleware"
	"github.com/cppla/membership/models"
	"github.com/cppla/membership/services"
	"github.com/cppla/membership/utils"
)

const ownerListCachePrefix = "cache:memberships:owner:"

// MembershipController exposes the membership resource over HTTP.
type MembershipController struct {
	service *services.MembershipService
	cache   *utils.Cache
}

// NewMembershipController creates a new MembershipController. cache may be nil.
func NewMembershipController(service *services.MembershipService, cache *utils.Cache) *MembershipController {
	return &MembershipController{service: service, cache: cache}
}

// AddMembership registers a membership for the requesting owner.
func (m *MembershipController) AddMembership(ctx *gin.Context) {
	owner, ok := requireOwner(ctx)
	if !ok {
		return
	}

	var req services.MembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorKind(ctx, http.StatusBadRequest, 40001, "INVALID_REQUEST", "invalid request payload")
		return
	}
	if violations := services.ValidateAdd(req); len(violations) > 0 {
		utils.ValidationError(ctx, 40001, violations)
		return
	}

	membershipType, _ := models.ParseMembershipType(*req.MembershipType)
	dto, err := m.service.Register(ctx.Request.Context(), owner, membershipType, *req.Point)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	m.cache.Delete(ownerListCacheKey(owner))
	ctx.JSON(http.StatusCreated, dto)
}

// ListMemberships returns every membership of the requesting owner.
func (m *MembershipController) ListMemberships(ctx *gin.Context) {
	owner, ok := requireOwner(ctx)
	if !ok {
		return
	}

	cacheKey := ownerListCacheKey(owner)
	if b, ok := m.cache.GetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	list, err := m.service.ListForOwner(ctx.Request.Context(), owner)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	m.cache.SetJSON(cacheKey, list)
	ctx.JSON(http.StatusOK, list)
}

// GetMembership returns a single membership.
func (m *MembershipController) GetMembership(ctx *gin.Context) {
	owner, id, ok := ownerAndID(ctx)
	if !ok {
		return
	}

	detail, err := m.service.GetDetail(ctx.Request.Context(), id, owner)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// RemoveMembership deletes a membership.
func (m *MembershipController) RemoveMembership(ctx *gin.Context) {
	owner, id, ok := ownerAndID(ctx)
	if !ok {
		return
	}

	if err := m.service.Remove(ctx.Request.Context(), id, owner); err != nil {
		respondServiceError(ctx, err)
		return
	}

	m.cache.Delete(ownerListCacheKey(owner))
	ctx.Status(http.StatusNoContent)
}

// AccumulatePoint credits points earned from a purchase amount.
func (m *MembershipController) AccumulatePoint(ctx *gin.Context) {
	owner, id, ok := ownerAndID(ctx)
	if !ok {
		return
	}

	var req services.MembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ErrorKind(ctx, http.StatusBadRequest, 40001, "INVALID_REQUEST", "invalid request payload")
		return
	}
	if violations := services.ValidateAccumulate(req); len(violations) > 0 {
		utils.ValidationError(ctx, 40001, violations)
		return
	}

	if err := m.service.Accumulate(ctx.Request.Context(), id, owner, *req.Point); err != nil {
		respondServiceError(ctx, err)
		return
	}

	m.cache.Delete(ownerListCacheKey(owner))
	ctx.Status(http.StatusNoContent)
}

func ownerListCacheKey(owner string) string {
	return ownerListCachePrefix + owner
}

func requireOwner(ctx *gin.Context) (string, bool) {
	owner, ok := middleware.OwnerID(ctx)
	if !ok {
		utils.ErrorKind(ctx, http.StatusBadRequest, 40002, "MISSING_OWNER", "owner identity is required")
	}
	return owner, ok
}

func ownerAndID(ctx *gin.Context) (string, uint, bool) {
	owner, ok := requireOwner(ctx)
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.ErrorKind(ctx, http.StatusBadRequest, 40003, "INVALID_REQUEST", "invalid membership id")
		return "", 0, false
	}
	return owner, uint(id), true
}

var kindStatus = map[services.ErrorKind]struct {
	status int
	code   int
}{
	services.KindNotFound:              {http.StatusNotFound, 40410},
	services.KindNotOwner:              {http.StatusBadRequest, 40010},
	services.KindDuplicateRegistration: {http.StatusBadRequest, 40011},
	services.KindPointOutOfRange:       {http.StatusBadRequest, 40012},
	services.KindUnknown:               {http.StatusInternalServerError, 50000},
}

func respondServiceError(ctx *gin.Context, err error) {
	kind := services.KindOf(err)
	mapped, ok := kindStatus[kind]
	if !ok {
		kind, mapped = services.KindUnknown, kindStatus[services.KindUnknown]
	}

	message := "Unknown Exception"
	var me *services.MembershipError
	if kind != services.KindUnknown && errors.As(err, &me) {
		message = me.Message
	}
	if kind == services.KindUnknown {
		_ = ctx.Error(err)
	}
	utils.ErrorKind(ctx, mapped.status, mapped.code, string(kind), message)
}
