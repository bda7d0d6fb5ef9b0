package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/logger"
	"cv-tracker-backend/pkg/security"
	"cv-tracker-backend/pkg/storage"
)

const attachmentFolder = "curriculums"

// AttachmentService validates curriculum attachments, downscales photos and
// writes them to the object store.
type AttachmentService struct {
	store        storage.ObjectStore
	maxBytes     int
	maxDimension int
	secLog       *security.SecurityLogger
}

func NewAttachmentService(store storage.ObjectStore, maxBytes, maxDimension int, secLog *security.SecurityLogger) *AttachmentService {
	if secLog == nil {
		secLog = security.NewNopSecurityLogger()
	}
	return &AttachmentService{store: store, maxBytes: maxBytes, maxDimension: maxDimension, secLog: secLog}
}

// Save stores the attachment and returns its public URL and MIME type.
// Size and content problems are 400 validation errors on "archivo".
func (s *AttachmentService) Save(ctx context.Context, att *domain.Attachment) (string, string, error) {
	if att == nil || len(att.Data) == 0 {
		return "", "", apperror.Validation(map[string]string{"archivo": "Archivo: Campo obligatorio"})
	}
	if s.maxBytes > 0 && len(att.Data) > s.maxBytes {
		return "", "", apperror.Validation(map[string]string{
			"archivo": fmt.Sprintf("Archivo: Máximo %d MB", s.maxBytes/(1<<20)),
		})
	}

	result, err := security.ValidateAttachment(att.Filename, att.Data)
	if err != nil {
		userID, _ := ctx.Value(domain.KeyUserID).(string)
		s.secLog.LogAttachmentRejected(ctx, userID, att.Filename, err.Error())
		msg := "Archivo: Tipo de archivo no permitido (" + strings.Join(security.AllowedExtensions(), ", ") + ")"
		if errors.Is(err, security.ErrSpoofedContent) {
			msg = "Archivo: El contenido no coincide con la extensión"
		}
		return "", "", apperror.Validation(map[string]string{"archivo": msg})
	}

	data, mime, ext := att.Data, result.DetectedMIME, result.Extension
	if result.IsImage && s.maxDimension > 0 {
		compressed, err := storage.DownscaleImage(att.Data, s.maxDimension, 80)
		if err != nil {
			logger.FromContext(ctx).Warn("Image downscale failed, storing original", "error", err)
		} else {
			logger.FromContext(ctx).Debug("Image downscaled", "from_bytes", len(att.Data), "to_bytes", len(compressed))
			data, mime, ext = compressed, "image/jpeg", ".jpg"
		}
	}

	url, err := s.store.Put(ctx, storage.NewKey(attachmentFolder, ext), mime, data)
	if err != nil {
		return "", "", apperror.Internal(fmt.Errorf("store attachment: %w", err))
	}
	return url, mime, nil
}

// Remove deletes a previously stored attachment. URLs that do not belong to
// the store are ignored.
func (s *AttachmentService) Remove(ctx context.Context, url string) {
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("Failed to delete attachment", "key", key, "error", err)
	}
}
