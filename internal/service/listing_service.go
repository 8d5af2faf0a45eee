package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/repository"
	"github.com/asingh/agri-rental-website/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxImagesPerListing caps the image carousel size.
const MaxImagesPerListing = 5

const dateLayout = "2006-01-02"

// The listing form accepts any 10-digit phone, spaces stripped. This is
// deliberately looser than the signup rule.
var listingPhonePattern = regexp.MustCompile(`^\d{10}$`)

type ListingService struct {
	equipmentRepo repository.EquipmentRepository
	store         storage.ImageStore
}

func NewListingService(equipmentRepo repository.EquipmentRepository, store storage.ImageStore) *ListingService {
	return &ListingService{
		equipmentRepo: equipmentRepo,
		store:         store,
	}
}

// ImageUpload is one file from the listing form, already read into memory.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreateListingInput struct {
	OwnerName      string
	PhoneNumber    string
	MachineryType  string
	Price          float64
	Location       string
	AvailableFrom  string
	AvailableUntil string
	Images         []ImageUpload
}

type CreateListingResult struct {
	EquipmentID    uint
	ImagesUploaded int
}

// Create validates the listing and its images, then writes everything in
// one transaction: the equipment row, the image files and the image rows.
// Any failure leaves no rows and no files behind.
func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*CreateListingResult, error) {
	equipment, err := buildEquipment(input)
	if err != nil {
		return nil, err
	}

	if len(input.Images) > MaxImagesPerListing {
		return nil, domain.ErrTooManyImages
	}

	// Validate every image before a single byte hits disk, so a corrupt
	// upload in any slot rejects the whole listing up front.
	exts := make([]string, len(input.Images))
	for i, img := range input.Images {
		ext, err := storage.ValidateImage(img.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, img.Filename, err)
		}
		exts[i] = ext
	}

	var saved []string
	err = s.equipmentRepo.CreateWithImages(ctx, equipment, func(equipmentID uint) ([]*domain.EquipmentImage, error) {
		rows := make([]*domain.EquipmentImage, 0, len(input.Images))
		for order, img := range input.Images {
			name := fmt.Sprintf("equipment_%s_%d%s", uuid.New().String(), order, exts[order])
			url, err := s.store.Save(name, img.Data)
			if err != nil {
				return nil, fmt.Errorf("store image %d: %w", order, err)
			}
			saved = append(saved, url)
			rows = append(rows, &domain.EquipmentImage{
				ImageURL:   url,
				ImageOrder: order,
			})
		}
		return rows, nil
	})
	if err != nil {
		// The transaction already rolled back; undo any files written in
		// this request so storage matches the database.
		for _, url := range saved {
			if rmErr := s.store.Remove(url); rmErr != nil {
				log.Printf("ERROR [ListingService.Create] cleanup of %s failed: %v", url, rmErr)
			}
		}
		return nil, err
	}

	return &CreateListingResult{
		EquipmentID:    equipment.ID,
		ImagesUploaded: len(input.Images),
	}, nil
}

// Delete removes a listing and its image rows in one transaction, then
// deletes the image files best-effort. The database is the source of
// truth; a file that cannot be removed is logged and left as an orphan.
func (s *ListingService) Delete(ctx context.Context, equipmentID uint) error {
	urls, err := s.equipmentRepo.DeleteWithImages(ctx, equipmentID)
	if err != nil {
		return err
	}

	for _, url := range urls {
		if err := s.store.Remove(url); err != nil {
			log.Printf("WARN [ListingService.Delete] could not remove image file %s: %v", url, err)
		}
	}
	return nil
}

func (s *ListingService) List(ctx context.Context) ([]*domain.Equipment, error) {
	return s.equipmentRepo.List(ctx)
}

func (s *ListingService) ListByPhone(ctx context.Context, phone string) ([]*domain.Equipment, error) {
	return s.equipmentRepo.ListByPhone(ctx, phone)
}

func buildEquipment(input CreateListingInput) (*domain.Equipment, error) {
	ownerName := strings.TrimSpace(input.OwnerName)
	phone := strings.ReplaceAll(strings.TrimSpace(input.PhoneNumber), " ", "")
	machineryType := strings.TrimSpace(input.MachineryType)
	location := strings.TrimSpace(input.Location)

	fields := map[string]string{
		"ownerName":      ownerName,
		"phoneNumber":    phone,
		"machineryType":  machineryType,
		"location":       location,
		"availableFrom":  strings.TrimSpace(input.AvailableFrom),
		"availableUntil": strings.TrimSpace(input.AvailableUntil),
	}
	for name, value := range fields {
		if value == "" {
			return nil, fmt.Errorf("%w: missing or empty field: %s", domain.ErrInvalidInput, name)
		}
	}

	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}
	if !listingPhonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%w: invalid phone number format", domain.ErrInvalidInput)
	}

	from, err := time.Parse(dateLayout, strings.TrimSpace(input.AvailableFrom))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid availableFrom date", domain.ErrInvalidInput)
	}
	until, err := time.Parse(dateLayout, strings.TrimSpace(input.AvailableUntil))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid availableUntil date", domain.ErrInvalidInput)
	}
	if !from.Before(until) {
		return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}

	return &domain.Equipment{
		OwnerName:      ownerName,
		PhoneNumber:    phone,
		MachineryType:  machineryType,
		Price:          input.Price,
		Location:       location,
		AvailableFrom:  datatypes.Date(from),
		AvailableUntil: datatypes.Date(until),
	}, nil
}
