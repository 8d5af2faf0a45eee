package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/asingh/agri-rental-website/internal/api/middleware"
	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/service"
	"github.com/asingh/agri-rental-website/internal/storage"
)

// Multipart bodies are capped at the per-image limit times the image cap,
// plus slack for the text fields.
const maxCreateBodySize = service.MaxImagesPerListing*storage.MaxImageSize + 1<<20

type EquipmentHandler struct {
	listingService *service.ListingService
}

func NewEquipmentHandler(listingService *service.ListingService) *EquipmentHandler {
	return &EquipmentHandler{listingService: listingService}
}

type equipmentResponse struct {
	ID             uint     `json:"id"`
	OwnerName      string   `json:"owner_name"`
	PhoneNumber    string   `json:"phone_number"`
	MachineryType  string   `json:"machinery_type"`
	Price          float64  `json:"price"`
	Location       string   `json:"location"`
	AvailableFrom  string   `json:"available_from"`
	AvailableUntil string   `json:"available_until"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
	Images         []string `json:"images"`
	ImageCount     int      `json:"image_count"`
}

type listResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Data    []equipmentResponse `json:"data"`
}

type createResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	EquipmentID    uint   `json:"equipmentId"`
	ImagesUploaded int    `json:"imagesUploaded"`
}

type deleteRequest struct {
	EquipmentID uint `json:"equipmentId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.listingService.List(r.Context())
	if err != nil {
		log.Printf("ERROR [EquipmentHandler.List] %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to retrieve equipment listings"})
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(equipment))
}

// Mine lists the authenticated user's own listings, matched by phone.
func (h *EquipmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	equipment, err := h.listingService.ListByPhone(r.Context(), user.Phone)
	if err != nil {
		log.Printf("ERROR [EquipmentHandler.Mine] %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to retrieve equipment listings"})
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(equipment))
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodySize)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Price must be a number"})
		return
	}

	images, err := readImages(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.listingService.Create(r.Context(), service.CreateListingInput{
		OwnerName:      r.FormValue("ownerName"),
		PhoneNumber:    r.FormValue("phoneNumber"),
		MachineryType:  r.FormValue("machineryType"),
		Price:          price,
		Location:       r.FormValue("location"),
		AvailableFrom:  r.FormValue("availableFrom"),
		AvailableUntil: r.FormValue("availableUntil"),
		Images:         images,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("ERROR [EquipmentHandler.Create] %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create listing. Please try again."})
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		Success:        true,
		Message:        "Equipment listed successfully",
		EquipmentID:    result.EquipmentID,
		ImagesUploaded: result.ImagesUploaded,
	})
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EquipmentID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Equipment ID is required"})
		return
	}

	if err := h.listingService.Delete(r.Context(), req.EquipmentID); err != nil {
		if errors.Is(err, domain.ErrEquipmentNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Equipment not found"})
			return
		}
		log.Printf("ERROR [EquipmentHandler.Delete] %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database error occurred"})
		return
	}

	writeJSON(w, http.StatusOK, authMessage{Success: true, Message: "Equipment deleted successfully"})
}

// readImages collects the image_0..image_N form files in slot order. Slots
// beyond the listing cap are still read so the service can reject the
// request as a whole rather than silently dropping files.
func readImages(r *http.Request) ([]service.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var images []service.ImageUpload
	for i := 0; ; i++ {
		files := r.MultipartForm.File[fmt.Sprintf("image_%d", i)]
		if len(files) == 0 {
			break
		}
		header := files[0]

		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("could not open uploaded file %s", header.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not read uploaded file %s", header.Filename)
		}

		images = append(images, service.ImageUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}
	return images, nil
}

func toListResponse(equipment []*domain.Equipment) listResponse {
	data := make([]equipmentResponse, 0, len(equipment))
	for _, e := range equipment {
		urls := make([]string, 0, len(e.Images))
		for _, img := range e.Images {
			urls = append(urls, img.ImageURL)
		}
		data = append(data, equipmentResponse{
			ID:             e.ID,
			OwnerName:      e.OwnerName,
			PhoneNumber:    e.PhoneNumber,
			MachineryType:  e.MachineryType,
			Price:          e.Price,
			Location:       e.Location,
			AvailableFrom:  time.Time(e.AvailableFrom).Format("2006-01-02"),
			AvailableUntil: time.Time(e.AvailableUntil).Format("2006-01-02"),
			CreatedAt:      e.CreatedAt.Format(time.RFC3339),
			UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
			Images:         urls,
			ImageCount:     len(urls),
		})
	}
	return listResponse{Success: true, Count: len(data), Data: data}
}
