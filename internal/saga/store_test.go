package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&ApprovalIntent{}))
	return NewStore(db)
}

func TestStore_BeginReusesExistingIntent(t *testing.T) {
	store := setupStore(t)

	first, err := store.Begin("recSUB00000000001")
	assert.NoError(t, err)
	assert.Equal(t, StatePending, first.State)
	assert.Equal(t, 0, first.Step)
	assert.NotEmpty(t, first.ExternalID)

	second, err := store.Begin("recSUB00000000001")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ExternalID, second.ExternalID)

	other, err := store.Begin("recSUB00000000002")
	assert.NoError(t, err)
	assert.NotEqual(t, first.ExternalID, other.ExternalID)
}

func TestStore_FindByExternalID(t *testing.T) {
	store := setupStore(t)

	intent, err := store.Begin("recSUB00000000001")
	assert.NoError(t, err)

	found, err := store.FindByExternalID(intent.ExternalID)
	assert.NoError(t, err)
	assert.Equal(t, intent.ID, found.ID)

	_, err = store.FindByExternalID("missing")
	assert.Equal(t, ErrIntentNotFound, err)
}

func TestStore_ListUnfinished(t *testing.T) {
	store := setupStore(t)

	done, err := store.Begin("recSUB00000000001")
	assert.NoError(t, err)
	done.State = StateCompleted
	assert.NoError(t, store.Save(done))

	failed, err := store.Begin("recSUB00000000002")
	assert.NoError(t, err)
	failed.State = StateFailed
	failed.LastError = "remote write failed"
	assert.NoError(t, store.Save(failed))

	unfinished, err := store.ListUnfinished()
	assert.NoError(t, err)
	assert.Len(t, unfinished, 1)
	assert.Equal(t, failed.ExternalID, unfinished[0].ExternalID)

	all, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
