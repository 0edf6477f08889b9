package evidence

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding support
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

// Target band for stored evidence photos. Punch photos arrive straight from
// phone cameras and would otherwise dominate disk usage.
const (
	maxEvidenceBytes = 150 * 1024
	minEvidenceBytes = 50 * 1024
)

// Service persists and removes punch evidence photos. The registrar calls
// Delete as a compensating action when a commit fails after the photo was
// written.
type Service interface {
	SavePunchPhoto(ctx context.Context, employeeID string, date time.Time, file io.Reader, filename string, kind string) (string, error)
	Delete(ctx context.Context, ref string) error
	GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error)
	ListRefs(ctx context.Context, before time.Time) ([]string, error)
}

type serviceImpl struct {
	storage storage.FileStorage
}

func NewService(fileStorage storage.FileStorage) Service {
	return &serviceImpl{storage: fileStorage}
}

// SavePunchPhoto validates, recompresses and stores one evidence photo.
// Returns the storage reference: evidence/{date}/{employeeID}-{kind}-{ts}.jpg
func (s *serviceImpl) SavePunchPhoto(ctx context.Context, employeeID string, date time.Time, file io.Reader, filename string, kind string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, maxEvidenceBytes, minEvidenceBytes)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	// Always JPEG after compression, regardless of the input format.
	dateStr := date.Format("2006-01-02")
	newFilename := fmt.Sprintf("%s-%s-%d.jpg", employeeID, kind, time.Now().UnixNano())
	path := filepath.Join("evidence", dateStr, newFilename)

	ref, err := s.storage.Upload(ctx, bytes.NewReader(compressed), path, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload punch evidence: %w", err)
	}

	return ref, nil
}

func (s *serviceImpl) Delete(ctx context.Context, ref string) error {
	return s.storage.Delete(ctx, ref)
}

func (s *serviceImpl) GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, ref, expiry)
}

// ListRefs returns evidence references stored under day folders strictly
// before the given date. Folder names are the punch dates, so the cutoff
// works without stat calls.
func (s *serviceImpl) ListRefs(ctx context.Context, before time.Time) ([]string, error) {
	all, err := s.storage.List(ctx, "evidence")
	if err != nil {
		return nil, err
	}

	cutoff := before.Format("2006-01-02")
	var refs []string
	for _, ref := range all {
		parts := strings.Split(filepath.ToSlash(ref), "/")
		if len(parts) < 3 {
			continue
		}
		if parts[1] < cutoff {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// compressImage shrinks a photo into the [minSize, maxSize] byte band,
// first by walking JPEG quality down, then by resizing.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	if len(buffer) <= maxSize && len(buffer) >= minSize {
		return buffer, nil
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize && len(compressed) >= minSize {
			return compressed, nil
		}
		if len(compressed) > maxSize {
			quality -= 5
			continue
		}
		// Smaller than the band at an already-low quality: accept.
		if len(compressed) < minSize && quality <= 60 {
			return compressed, nil
		}
		break
	}

	if len(compressed) > maxSize {
		targetSize := (maxSize + minSize) / 2
		ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
		newWidth := int(float64(originalWidth) * ratio)
		newHeight := int(float64(originalHeight) * ratio)
		if newWidth < 600 {
			newWidth = 600
		}
		if newHeight < 400 {
			newHeight = 400
		}

		resized := resizeImage(img, newWidth, newHeight)

		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
			return nil, fmt.Errorf("failed to encode resized image: %w", err)
		}
		compressed = buf.Bytes()
	}

	return compressed, nil
}

func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
