package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"fieldops.service/internal/ports/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Image is a photo taken on site, before upload.
type Image struct {
	ContentType string
	Data        []byte
}

type NewCapture struct {
	ProjectID   string  `json:"projectId" label:"Project ID" validate:"required"`
	Location    string  `json:"location" label:"Location" validate:"required"`
	Description string  `json:"description" label:"Description" validate:"required"`
	Images      []Image `json:"-"`
}

type CaptureService struct {
	docs  backend.Documents
	files storage.FileStore
	now   func() time.Time
}

func NewCaptureService(docs backend.Documents, files storage.FileStore) *CaptureService {
	return &CaptureService{docs: docs, files: files, now: now}
}

// Capture uploads the images of a site capture and records it.
func (s *CaptureService) Capture(ctx context.Context, in NewCapture) (model.Capture, error) {
	if err := validateStruct(in); err != nil {
		return model.Capture{}, err
	}
	if len(in.Images) == 0 {
		return model.Capture{}, invalid("images", "Please capture at least one image")
	}
	if s.files == nil {
		return model.Capture{}, fail(ctx, "save capture", fmt.Errorf("no file store configured"))
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	images := make([]model.Attachment, 0, len(in.Images))
	for n, img := range in.Images {
		key := fmt.Sprintf("captures/%s/%d", id, n+1)
		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		if err := s.files.Put(ctx, key, contentType, img.Data); err != nil {
			s.discard(ctx, images)
			return model.Capture{}, fail(ctx, "upload image", err)
		}
		images = append(images, model.Attachment{Key: key, ContentType: contentType, Size: len(img.Data)})
	}

	doc, err := s.docs.CreateDocument(ctx, backend.Captures, id, model.Capture{
		ProjectID:   strings.TrimSpace(in.ProjectID),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Images:      images,
		CapturedAt:  s.now(),
	})
	if err != nil {
		s.discard(ctx, images)
		return model.Capture{}, fail(ctx, "save capture", err)
	}
	var c model.Capture
	if err := backend.Decode(doc, &c); err != nil {
		return model.Capture{}, fail(ctx, "save capture", err)
	}
	log.Ctx(ctx).Info().Str("captureId", c.ID).Int("images", len(images)).Msg("Capture saved")
	return c, nil
}

// discard removes images uploaded for a capture that was never saved.
func (s *CaptureService) discard(ctx context.Context, images []model.Attachment) {
	for _, img := range images {
		if err := s.files.Delete(ctx, img.Key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", img.Key).Msg("Could not remove orphaned capture image")
		}
	}
}

// List returns the captures of a project, newest first. An empty projectID
// lists every capture.
func (s *CaptureService) List(ctx context.Context, projectID string) ([]model.Capture, error) {
	q := backend.NewQuery()
	if projectID != "" {
		q = q.Equal("projectId", projectID)
	}
	captures, err := listAll[model.Capture](ctx, s.docs, backend.Captures, q.OrderDesc("capturedAt"))
	if err != nil {
		return nil, fail(ctx, "load captures", err)
	}
	return captures, nil
}
