package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted product image upload
const MaxImageSize = 5 << 20

// ImageStorage is the object storage port for product images
type ImageStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadImageInput carries a product image read from a multipart form
type UploadImageInput struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
	Data      []byte
	// ContentType as declared by the client; the sniffed type wins when they differ
	ContentType string
}

// ImageKey builds the object key for a product image
func ImageKey(storeID, productID uuid.UUID, ext string) string {
	return fmt.Sprintf("stores/%s/products/%s/%s%s", storeID, productID, uuid.New(), ext)
}

// UploadImage stores an image and attaches it to the product
func (s *ProductService) UploadImage(ctx context.Context, in UploadImageInput) (*ImageResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}
	if len(in.Data) == 0 {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image is empty")
	}
	if len(in.Data) > MaxImageSize {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image exceeds the 5MB limit")
	}
	contentType := http.DetectContentType(in.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Only JPEG, PNG, WebP and GIF images are accepted")
	}
	if declared := strings.TrimSpace(in.ContentType); declared != "" && declared != contentType {
		s.logger.Debug("Image content type mismatch",
			zap.String("declared", declared),
			zap.String("detected", contentType),
		)
	}

	product, err := s.productRepo.FindByIDForStore(ctx, in.StoreID, in.ProductID)
	if err != nil {
		return nil, err
	}
	key := ImageKey(in.StoreID, in.ProductID, ext)
	if err := product.AddImage(key); err != nil {
		return nil, err
	}

	if err := s.images.Upload(ctx, key, in.Data, contentType); err != nil {
		return nil, fmt.Errorf("upload product image: %w", err)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		if delErr := s.images.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	url, expiresAt, err := s.images.GenerateDownloadURL(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign product image: %w", err)
	}
	s.logger.Info("Product image uploaded",
		zap.String("product_id", in.ProductID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(in.Data)),
	)
	return &ImageResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// RemoveImage detaches an image from the product and deletes the object
func (s *ProductService) RemoveImage(ctx context.Context, storeID, productID uuid.UUID, key string) error {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if !product.RemoveImage(key) {
		return shared.ErrNotFound
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	if s.images != nil {
		if err := s.images.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to delete image object", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
