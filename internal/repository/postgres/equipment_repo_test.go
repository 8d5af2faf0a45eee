package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/repository/postgres"
	"github.com/asingh/agri-rental-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newEquipment() *domain.Equipment {
	now := time.Now().Truncate(24 * time.Hour)
	return &domain.Equipment{
		OwnerName:      "Ravi Kumar",
		PhoneNumber:    "9876543210",
		MachineryType:  "Tractor",
		Price:          1500,
		Location:       "Nashik",
		AvailableFrom:  datatypes.Date(now),
		AvailableUntil: datatypes.Date(now.AddDate(0, 1, 0)),
	}
}

func TestEquipmentRepository_CreateWithImages_RollsBackOnAttachError(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEquipmentRepository(testDB.DB)
	ctx := context.Background()

	attachErr := errors.New("file write failed")
	err := repo.CreateWithImages(ctx, newEquipment(), func(equipmentID uint) ([]*domain.EquipmentImage, error) {
		assert.NotZero(t, equipmentID, "equipment row must exist inside the transaction")
		return nil, attachErr
	})
	assert.ErrorIs(t, err, attachErr)

	var count int64
	testDB.DB.Model(&domain.Equipment{}).Count(&count)
	assert.Zero(t, count, "attach failure must roll the equipment row back")
}

func TestEquipmentRepository_CreateWithImages_InsertsRowsInOrder(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEquipmentRepository(testDB.DB)
	ctx := context.Background()

	equipment := newEquipment()
	err := repo.CreateWithImages(ctx, equipment, func(equipmentID uint) ([]*domain.EquipmentImage, error) {
		return []*domain.EquipmentImage{
			{ImageURL: "/uploads/a.png", ImageOrder: 0},
			{ImageURL: "/uploads/b.png", ImageOrder: 1},
		}, nil
	})
	require.NoError(t, err)
	require.NotZero(t, equipment.ID)

	got, err := repo.GetByID(ctx, equipment.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "/uploads/a.png", got.Images[0].ImageURL)
	assert.Equal(t, "/uploads/b.png", got.Images[1].ImageURL)
}

func TestEquipmentRepository_DeleteWithImages(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEquipmentRepository(testDB.DB)
	ctx := context.Background()

	listing := testutil.NewListingBuilder().
		WithImageURLs("/uploads/x.png", "/uploads/y.png").
		Build(t, testDB.DB)

	urls, err := repo.DeleteWithImages(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/x.png", "/uploads/y.png"}, urls)

	var imageCount int64
	testDB.DB.Model(&domain.EquipmentImage{}).Count(&imageCount)
	assert.Zero(t, imageCount)

	_, err = repo.DeleteWithImages(ctx, listing.ID)
	assert.ErrorIs(t, err, domain.ErrEquipmentNotFound)
}

func TestEquipmentRepository_List_NewestFirst(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEquipmentRepository(testDB.DB)
	ctx := context.Background()

	older := testutil.NewListingBuilder().Build(t, testDB.DB)
	newer := testutil.NewListingBuilder().WithMachineryType("Harvester").Build(t, testDB.DB)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}
