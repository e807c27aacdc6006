package leave

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Reason, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	userID := c.GetString("user_id_validated")

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			// Cache the full envelope with its status so a replay returns
			// exactly what this request returned.
			if body, marshalErr := json.Marshal(response.ApiEnvelope{Ok: true, Data: resp}); marshalErr == nil {
				if payload, recErr := json.Marshal(middleware.IdempotentReplay{Status: http.StatusCreated, Body: body}); recErr == nil {
					_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
				}
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	resp, err := h.service.GetAll(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListTypes(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	resp, err := h.service.ListTypes(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	leaveTypeID := c.Query("leave_type_id")
	if leaveTypeID == "" {
		writeServiceError(c, leaveerrors.ErrMissingFields)
		return
	}

	year := time.Now().UTC().Year()
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 2000 || parsed > 2200 {
			writeServiceError(c, leaveerrors.ErrInvalidDateFormat)
			return
		}
		year = parsed
	}

	resp, err := h.service.GetBalance(c.Request.Context(), userID, leaveTypeID, year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
