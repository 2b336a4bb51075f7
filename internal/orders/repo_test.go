package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL,
		frames TEXT,
		doors TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestCreateBatchBothNumbers(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	userID := uuid.New()

	rows, err := repo.CreateBatch(ctx, CreateOrdersDTO{
		SiteID:       uuid.New(),
		FramesNumber: " F-100 ",
		DoorsNumber:  "D-200",
		UserID:       userID,
		UserName:     "Marie Martin",
	}, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	frames := rows[0].Frames
	doors := rows[1].Doors
	require.NotNil(t, frames, "first row must carry the frames part")
	require.NotNil(t, doors, "second row must carry the doors part")

	assert.Equal(t, "F-100", frames.Number, "number should be trimmed")
	assert.Nil(t, rows[0].Doors, "each row carries exactly one part")
	assert.Nil(t, rows[1].Frames, "each row carries exactly one part")
	assert.True(t, frames.CreationDate.Equal(doors.CreationDate), "both rows share the creation timestamp")
	assert.False(t, frames.IsSent)
	assert.False(t, doors.IsSent)
	assert.Equal(t, "Marie Martin", frames.UserName)
	assert.Equal(t, userID, frames.UserID)
}

func TestCreateBatchSingleAndNone(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	rows, err := repo.CreateBatch(ctx, CreateOrdersDTO{SiteID: uuid.New(), DoorsNumber: "D-9"}, now)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].Doors)

	rows, err = repo.CreateBatch(ctx, CreateOrdersDTO{SiteID: uuid.New(), FramesNumber: "   "}, now)
	require.NoError(t, err)
	assert.Empty(t, rows, "blank numbers must create nothing")
}

func TestUpdatePartTouchesOnlyTargetColumn(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	siteID := uuid.New()
	rows, err := repo.CreateBatch(ctx, CreateOrdersDTO{
		SiteID:       siteID,
		FramesNumber: "F-100",
		DoorsNumber:  "D-200",
		UserName:     "Marie Martin",
	}, now)
	require.NoError(t, err)
	framesOrder := rows[0]
	doorsOrder := rows[1]

	updated, err := repo.UpdatePart(ctx, framesOrder.ID, enums.OrderPartFrames, PartPatch{ToggleSent: true})
	require.NoError(t, err)
	assert.True(t, updated.Frames.IsSent)

	// The sibling row's part must be byte-for-byte untouched.
	fresh, err := repo.FindByID(ctx, doorsOrder.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Doors.IsSent)
	assert.Equal(t, "D-200", fresh.Doors.Number)

	notes := "livraison confirmée"
	updated, err = repo.UpdatePart(ctx, framesOrder.ID, enums.OrderPartFrames, PartPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Frames.Notes)
	assert.True(t, updated.Frames.IsSent, "notes patch must not reset the sent flag")
}

func TestUpdatePartMissingPart(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	rows, err := repo.CreateBatch(ctx, CreateOrdersDTO{SiteID: uuid.New(), FramesNumber: "F-1"}, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.UpdatePart(ctx, rows[0].ID, enums.OrderPartDoors, PartPatch{ToggleSent: true})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteBySiteRemovesOnlyThatSite(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	siteA := uuid.New()
	siteB := uuid.New()
	_, err := repo.CreateBatch(ctx, CreateOrdersDTO{SiteID: siteA, FramesNumber: "F-1", DoorsNumber: "D-1"}, now)
	require.NoError(t, err)
	_, err = repo.CreateBatch(ctx, CreateOrdersDTO{SiteID: siteB, FramesNumber: "F-2"}, now)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.DeleteBySite(ctx, tx, siteA)
	})
	require.NoError(t, err)

	remainingA, err := repo.ListBySite(ctx, siteA)
	require.NoError(t, err)
	assert.Empty(t, remainingA)

	remainingB, err := repo.ListBySite(ctx, siteB)
	require.NoError(t, err)
	assert.Len(t, remainingB, 1)
}
