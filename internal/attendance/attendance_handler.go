package attendance

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	attendanceerrors "go-hrms/internal/attendance/errors"
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

func (h *Handler) GetState(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	resp, err := h.service.GetState(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Punch(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	userID := c.GetString("user_id_validated")

	var req PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Punch(c.Request.Context(), userID, req)
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

// GetSummary aggregates the ledger for [from, to). Defaults to the current
// month when no period is supplied; accepts either from/to dates or a
// month=YYYY-MM shorthand.
func (h *Handler) GetSummary(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	from, to, err := parsePeriod(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.service.Aggregate(c.Request.Context(), userID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetHistory(c *gin.Context) {
	userID := c.GetString("user_id_validated")

	resp, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	if month := c.Query("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, attendanceerrors.ErrInvalidDateFormat
		}
		return start, start.AddDate(0, 1, 0), nil
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, attendanceerrors.ErrInvalidDateFormat
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, attendanceerrors.ErrInvalidDateFormat
	}
	// The period is half-open, so include the whole "to" date.
	return from, to.AddDate(0, 0, 1), nil
}
