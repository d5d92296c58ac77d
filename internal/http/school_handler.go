package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schooldir/internal/service"
)

// SchoolHandler mantiene dependencias para endpoints de escuelas.
type SchoolHandler struct {
	logger     *zap.Logger
	schoolServ *service.SchoolService
}

func NewSchoolHandler(logger *zap.Logger, schoolServ *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{
		logger:     logger,
		schoolServ: schoolServ,
	}
}

type schoolRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
	Contact  string `json:"contact" binding:"required"`
	EmailID  string `json:"email_id" binding:"required"`
	ImageURL string `json:"image_url"`
}

func (r schoolRequest) toInput() service.SchoolInput {
	return service.SchoolInput{
		Name:     r.Name,
		Address:  r.Address,
		City:     r.City,
		State:    r.State,
		Contact:  r.Contact,
		EmailID:  r.EmailID,
		ImageURL: r.ImageURL,
	}
}

// Create maneja POST /schools.
func (h *SchoolHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errUnauthorized, "missing token")
		return
	}

	var req schoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create school request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	school, err := h.schoolServ.Create(c.Request.Context(), req.toInput(), claims.UserID)
	if err != nil {
		h.respondSchoolError(c, err, "create school failed")
		return
	}

	respondData(c, http.StatusCreated, gin.H{"school": school})
}

// List maneja GET /schools. Lectura pública.
func (h *SchoolHandler) List(c *gin.Context) {
	items, err := h.schoolServ.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list schools failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "could not list schools")
		return
	}

	respondData(c, http.StatusOK, gin.H{"schools": items})
}

// Get maneja GET /schools/:id. Lectura pública.
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.schoolServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSchoolError(c, err, "get school failed")
		return
	}

	respondData(c, http.StatusOK, gin.H{"school": school})
}

// Update maneja PUT /schools/:id.
func (h *SchoolHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errUnauthorized, "missing token")
		return
	}

	var req schoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update school request", zap.Error(err))
		respondError(c, http.StatusBadRequest, errValidation, "invalid request")
		return
	}

	school, err := h.schoolServ.Update(c.Request.Context(), c.Param("id"), req.toInput(), claims.UserID)
	if err != nil {
		h.respondSchoolError(c, err, "update school failed")
		return
	}

	respondData(c, http.StatusOK, gin.H{"school": school})
}

// Delete maneja DELETE /schools/:id.
func (h *SchoolHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errUnauthorized, "missing token")
		return
	}

	if err := h.schoolServ.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		h.respondSchoolError(c, err, "delete school failed")
		return
	}

	respondMessage(c, http.StatusOK, "school deleted")
}

func (h *SchoolHandler) respondSchoolError(c *gin.Context, err error, logMsg string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(c, http.StatusBadRequest, errValidation, vErr.Error())
	case errors.Is(err, service.ErrSchoolNotFound):
		respondError(c, http.StatusNotFound, errNotFound, "school not found")
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, errForbidden, "only the owner can modify this school")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "unexpected error")
	}
}
