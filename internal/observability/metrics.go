// Package observability provides metrics, tracing and error reporting.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dogpark_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts posts.create calls by initial status.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"status"})

	// CommentsWritten counts comment creations and deletions.
	CommentsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_comments_written_total",
		Help: "Total number of comment mutations",
	}, []string{"action"})

	// LikeToggles counts likes.toggle calls by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// ImageUploads counts blob uploads by kind (post, profile) and result.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_image_uploads_total",
		Help: "Total number of image uploads",
	}, []string{"kind", "result"})

	// AuthAttempts counts register/login attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_auth_attempts_total",
		Help: "Total number of authentication attempts",
	}, []string{"action", "outcome"})

	// CacheLookups counts cache-aside lookups by cache and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dogpark_cache_lookups_total",
		Help: "Total number of cache lookups",
	}, []string{"cache", "result"})
)

const metricsStartKey = "metrics:start"

// RegisterGormMetrics records DatabaseQueryLatency for every GORM operation on db.
func RegisterGormMetrics(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		op := h.op
		if err := h.before("metrics:before_"+op, func(tx *gorm.DB) {
			tx.InstanceSet(metricsStartKey, time.Now())
		}); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+op, func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(metricsStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
		}); err != nil {
			return err
		}
	}
	return nil
}
