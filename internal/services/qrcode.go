package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"

	"eventhub/internal/models"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels of a rendered QR code
const DefaultQRSize = 256

// QRCodeRecorder persists the stored location of a ticket's QR code
type QRCodeRecorder interface {
	UpdateQRCode(ctx context.Context, ticketID int, qrCode string) error
}

// QRCodeService renders ticket QR codes and stores them as PNGs
type QRCodeService struct {
	storage  StorageService
	recorder QRCodeRecorder
	prefix   string
	size     int
}

// NewQRCodeService creates a QR code service writing under prefix
func NewQRCodeService(storage StorageService, recorder QRCodeRecorder, prefix string, size int) *QRCodeService {
	if size <= 0 {
		size = DefaultQRSize
	}
	if prefix == "" {
		prefix = "qrcodes"
	}
	return &QRCodeService{
		storage:  storage,
		recorder: recorder,
		prefix:   prefix,
		size:     size,
	}
}

// Render encodes payload as a square PNG QR code
func (s *QRCodeService) Render(payload string) ([]byte, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, code.Image(s.size), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to write QR image: %w", err)
	}
	return buf.Bytes(), nil
}

// Key returns the storage key of a ticket's QR image
func (s *QRCodeService) Key(ticket *models.Ticket) string {
	return path.Join(s.prefix, "qr_"+ticket.Reference+".png")
}

// Issue stores the ticket's QR image and records its URL on the ticket row.
// An image already stored under the ticket's key is reused.
func (s *QRCodeService) Issue(ctx context.Context, ticket *models.Ticket) (string, error) {
	key := s.Key(ticket)

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		log.Printf("Warning: failed to check for stored QR code %s: %v", key, err)
	}

	var url string
	if exists {
		url = s.storage.GetURL(key)
	} else {
		png, err := s.Render(ticket.QRPayload())
		if err != nil {
			return "", err
		}

		url, err = s.storage.Upload(ctx, key, bytes.NewReader(png), "image/png", int64(len(png)))
		if err != nil {
			return "", fmt.Errorf("failed to store QR code: %w", err)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.UpdateQRCode(ctx, ticket.ID, url); err != nil {
			if !exists {
				if delErr := s.storage.Delete(ctx, key); delErr != nil {
					log.Printf("Warning: failed to remove orphaned QR code %s: %v", key, delErr)
				}
			}
			return "", err
		}
	}
	return url, nil
}
