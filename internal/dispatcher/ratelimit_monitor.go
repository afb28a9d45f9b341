package dispatcher

import (
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// RateLimitBucket mirrors Discord's X-RateLimit-* headers for one route.
type RateLimitBucket struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

type RateLimitMonitor struct {
	mu      sync.RWMutex
	buckets map[string]*RateLimitBucket
	now     func() time.Time
}

func NewRateLimitMonitor() *RateLimitMonitor {
	return &RateLimitMonitor{
		buckets: make(map[string]*RateLimitBucket),
		now:     time.Now,
	}
}

func (rlm *RateLimitMonitor) CanExecute(route string) bool {
	rlm.mu.RLock()
	bucket, exists := rlm.buckets[route]
	rlm.mu.RUnlock()

	if !exists || rlm.now().After(bucket.ResetAt) {
		return true
	}
	return bucket.Remaining > 0
}

// Update records the rate-limit headers of resp. Responses without the
// headers leave the bucket untouched.
func (rlm *RateLimitMonitor) Update(route string, resp *fasthttp.Response) {
	remaining := string(resp.Header.Peek("X-RateLimit-Remaining"))
	if remaining == "" {
		return
	}

	bucket := &RateLimitBucket{}
	bucket.Remaining, _ = strconv.Atoi(remaining)
	bucket.Limit, _ = strconv.Atoi(string(resp.Header.Peek("X-RateLimit-Limit")))

	if after := string(resp.Header.Peek("X-RateLimit-Reset-After")); after != "" {
		secs, _ := strconv.ParseFloat(after, 64)
		bucket.ResetAt = rlm.now().Add(time.Duration(secs * float64(time.Second)))
	} else if reset := string(resp.Header.Peek("X-RateLimit-Reset")); reset != "" {
		secs, _ := strconv.ParseFloat(reset, 64)
		bucket.ResetAt = time.Unix(0, int64(secs*float64(time.Second)))
	}

	rlm.mu.Lock()
	rlm.buckets[route] = bucket
	rlm.mu.Unlock()
}

func (rlm *RateLimitMonitor) GetBucket(route string) *RateLimitBucket {
	rlm.mu.RLock()
	defer rlm.mu.RUnlock()
	return rlm.buckets[route]
}
