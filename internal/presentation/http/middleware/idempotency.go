package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyLockTTL bounds how long an unanswered request holds its key,
	// so a crashed worker cannot block a retry for a whole day
	IdempotencyLockTTL = time.Minute
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects requests that carry no key
	Required bool
	Logger   *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a request already processed under
// the same key. The key is reserved before the handler runs, so a second request
// racing the first gets a 409 instead of being processed twice. A key reused with
// a different body is rejected. Server errors release the key so a failed
// checkout can be retried with it.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		userIDValue, exists := c.Get(ContextUserID)
		userID, ok := userIDValue.(uuid.UUID)
		if !exists || !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Unable to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])
		ctx := c.Request.Context()

		existing, err := config.Repo.GetByKey(ctx, key, userID)
		if err != nil {
			log.Error("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired() {
			answerExisting(c, existing, requestHash)
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: requestHash,
			ExpiresAt:   time.Now().Add(IdempotencyLockTTL),
		}
		reserved, err := config.Repo.Reserve(ctx, ikey)
		if err != nil {
			log.Error("idempotency key not reserved", zap.String("key", key), zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if !reserved {
			// lost the race for the key between the lookup and the insert
			if existing, err = config.Repo.GetByKey(ctx, key, userID); err == nil && existing != nil {
				answerExisting(c, existing, requestHash)
				return
			}
			response.Fail(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
			c.Abort()
			return
		}

		completed := false
		defer func() {
			if completed {
				return
			}
			if err := config.Repo.Release(context.WithoutCancel(ctx), key, userID); err != nil {
				log.Warn("idempotency key not released", zap.String("key", key), zap.Error(err))
			}
		}()

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			return
		}

		// the request has taken effect; if storing the answer fails the
		// reservation stays until its lock expires
		completed = true
		ikey.ResponseCode = c.Writer.Status()
		ikey.ResponseBody = blw.body.String()
		ikey.ExpiresAt = time.Now().Add(IdempotencyKeyTTL)
		if err := config.Repo.Complete(context.WithoutCancel(ctx), ikey); err != nil {
			log.Warn("idempotency key not stored", zap.String("key", key), zap.Error(err))
		}
	}
}

// answerExisting replays a finished request or turns away one that collides with
// a request still running
func answerExisting(c *gin.Context, existing *entity.IdempotencyKey, requestHash string) {
	defer c.Abort()

	if !existing.Matches(requestHash) {
		response.Fail(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request")
		return
	}
	if existing.InFlight() {
		c.Header("Retry-After", strconv.Itoa(int(IdempotencyLockTTL.Seconds())))
		response.Fail(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
		return
	}
	c.Header("X-Idempotency-Replayed", "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
}
