package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IdempotentReplay is the cached completion record a write handler stores
// under the idempotency cache key. Body holds the exact envelope bytes that
// were sent, so a replay returns the original status and payload verbatim.
type IdempotentReplay struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency replays cached responses for repeated POSTs carrying the same
// Idempotency-Key and rejects a second in-flight attempt while the first is
// still running.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		userID := c.GetString("user_id_validated")

		// Without redis the key cannot be honored; serve the request anyway.
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Bytes()
		if err == nil {
			var replay IdempotentReplay
			if unmarshalErr := json.Unmarshal(val, &replay); unmarshalErr == nil && replay.Status != 0 {
				c.Data(replay.Status, "application/json; charset=utf-8", replay.Body)
				c.Abort()
				return
			}
		}

		// Short expiry so a crashed request cannot wedge the key forever.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Your request is still being processed, please wait.",
			})
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
