package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/asingh/agri-rental-website/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	phone    string
	password string
	active   bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		name:     "Test User",
		phone:    randomPhone(),
		password: "testpassword123",
		active:   true,
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithPhone(phone string) *UserBuilder {
	b.phone = phone
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) Deactivated() *UserBuilder {
	b.active = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Phone:        b.phone,
		PasswordHash: string(hashedPassword),
		IsActive:     b.active,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthMessage matches the API's plain success/message envelope
type AuthMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"user"`
	Token string `json:"token"`
}

// BuildAndLogin creates the user directly in the database, then logs in via
// the API and returns the user and session token.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	reqBody := map[string]string{
		"action":   "login",
		"phone":    b.phone,
		"password": password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("login response contained no token")
	}

	return user, loginResp.Token
}

// ListingBuilder creates equipment rows (with optional image rows) directly
// in the database, bypassing the service layer.
type ListingBuilder struct {
	ownerName     string
	phoneNumber   string
	machineryType string
	price         float64
	location      string
	imageURLs     []string
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		ownerName:     "Ravi Kumar",
		phoneNumber:   randomPhone(),
		machineryType: "Tractor",
		price:         1500,
		location:      "Nashik",
	}
}

func (b *ListingBuilder) WithPhone(phone string) *ListingBuilder {
	b.phoneNumber = phone
	return b
}

func (b *ListingBuilder) WithMachineryType(machineryType string) *ListingBuilder {
	b.machineryType = machineryType
	return b
}

func (b *ListingBuilder) WithImageURLs(urls ...string) *ListingBuilder {
	b.imageURLs = urls
	return b
}

func (b *ListingBuilder) Build(t *testing.T, db *gorm.DB) *domain.Equipment {
	t.Helper()

	from := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	equipment := &domain.Equipment{
		OwnerName:      b.ownerName,
		PhoneNumber:    b.phoneNumber,
		MachineryType:  b.machineryType,
		Price:          b.price,
		Location:       b.location,
		AvailableFrom:  datatypes.Date(from),
		AvailableUntil: datatypes.Date(from.AddDate(0, 1, 0)),
	}
	if err := db.Create(equipment).Error; err != nil {
		t.Fatalf("failed to create equipment: %v", err)
	}

	for order, url := range b.imageURLs {
		img := &domain.EquipmentImage{
			EquipmentID: equipment.ID,
			ImageURL:    url,
			ImageOrder:  order,
		}
		if err := db.Create(img).Error; err != nil {
			t.Fatalf("failed to create equipment image: %v", err)
		}
		equipment.Images = append(equipment.Images, *img)
	}

	return equipment
}

func randomPhone() string {
	return fmt.Sprintf("9%09d", rand.Intn(1_000_000_000))
}

// PNGImage returns a small valid PNG file
func PNGImage(t *testing.T) []byte {
	t.Helper()
	return encodeImage(t, "png")
}

// JPEGImage returns a small valid JPEG file
func JPEGImage(t *testing.T) []byte {
	t.Helper()
	return encodeImage(t, "jpeg")
}

// GIFImage returns a small valid GIF file
func GIFImage(t *testing.T) []byte {
	t.Helper()
	return encodeImage(t, "gif")
}

func encodeImage(t *testing.T, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown image format %q", format)
	}
	if err != nil {
		t.Fatalf("failed to encode %s image: %v", format, err)
	}
	return buf.Bytes()
}
