package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestRegisterGormMetrics_ObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterGormMetrics(db))
	require.NoError(t, db.AutoMigrate(&probe{}))

	before := testutil.CollectAndCount(DatabaseQueryLatency)
	require.NoError(t, db.Create(&probe{Name: "rex"}).Error)
	var got probe
	require.NoError(t, db.First(&got).Error)

	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
	assert.Equal(t, "rex", got.Name)
}

func TestReportError_NoopWithoutDSN(t *testing.T) {
	flush, err := InitErrorReporting("", "test", "dev")
	require.NoError(t, err)
	flush()
	assert.NotPanics(t, func() { ReportError(t.Context(), assert.AnError, nil) })
}
