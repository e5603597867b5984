package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cache"
	applog "github.com/cmlabs-hris/hris-payroll-go/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "Idempotent-Replay"

	idempotencyLockTTL = 30 * time.Second
	maxIdempotencyKey  = 255
	maxIdempotentBody  = 1 << 20
)

var ErrIdempotencyInFlight = apperror.New(apperror.CodeConflict, "a request with this idempotency key is still in progress", http.StatusConflict)

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// IdempotencyKey replays the stored response of an earlier request with the
// same key and body from the same user. Reusing a key with a different body
// runs the request as a new one. Requests without the header pass through.
// Server errors are not stored so the client can retry them.
func IdempotencyKey(rdb redis.Cmdable, ttl time.Duration, logger ...*zap.Logger) func(http.Handler) http.Handler {
	log := applog.Named("http.idempotency", logger...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" || rdb == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKey {
				response.BadRequest(w, "Idempotency-Key is too long", nil)
				return
			}
			userID := requesterKey(r)
			if userID == "" {
				response.HandleError(w, apperror.ErrUnauthenticated)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				response.BadRequest(w, "request body is too large or unreadable", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			storeKey := "idem:" + userID + ":" + r.URL.Path + ":" + key + ":" + bodyDigest(body)
			lockKey := storeKey + ":lock"

			var stored storedResponse
			found, err := cache.GetJSON(ctx, rdb, storeKey, &stored)
			if err != nil {
				log.Warn("idempotency lookup failed", zap.String("key", storeKey), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if found {
				replay(w, stored)
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "1", idempotencyLockTTL).Result()
			if err != nil {
				log.Warn("idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.HandleError(w, ErrIdempotencyInFlight)
				return
			}
			defer release(rdb, lockKey, log)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 || rec.status >= http.StatusInternalServerError {
				return
			}
			if err := cache.SetJSON(ctx, rdb, storeKey, storedResponse{Status: rec.status, Body: rec.body.Bytes()}, ttl); err != nil {
				log.Warn("idempotency store failed", zap.String("key", storeKey), zap.Error(err))
			}
		})
	}
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, stored storedResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func release(rdb redis.Cmdable, lockKey string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Del(ctx, lockKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Warn("idempotency unlock failed", zap.String("key", lockKey), zap.Error(err))
	}
}

