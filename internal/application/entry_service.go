package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

var (
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrMediaNotFound      = errors.New("media item not found on entry")
	ErrInvalidCoordinates = errors.New("longitude must be in [-180,180] and latitude in [-90,90]")
)

// defaultNearbyRadius caps the nearby query when the client sends no radius.
const defaultNearbyRadius = 10000 // meters

// UploadedFile is one incoming multipart attachment.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Duration    float64 // client-reported, audio/video only
	Reader      io.Reader
}

// CreateEntryInput carries the fields for a new entry. CreatedAt may be set
// to backdate the entry; the zero value means now.
type CreateEntryInput struct {
	JournalID   string
	Title       string
	Description string
	FormatSpans []entity.FormatSpan
	Location    *entity.Location
	CreatedAt   time.Time
	Files       []UploadedFile
}

// UpdateEntryInput updates an entry. Nil pointers leave fields unchanged;
// Files are appended to the existing media.
type UpdateEntryInput struct {
	JournalID     *string
	Title         *string
	Description   *string
	FormatSpans   []entity.FormatSpan
	Location      *entity.Location
	ClearLocation bool
	Files         []UploadedFile
}

// EntryService owns entry CRUD, media storage and search.
type EntryService struct {
	entries  repository.EntryRepository
	journals repository.JournalRepository
	media    MediaStore
	indexer  EntryIndexer
	log      *logrus.Logger
}

func NewEntryService(entries repository.EntryRepository, journals repository.JournalRepository, media MediaStore, indexer EntryIndexer, log *logrus.Logger) *EntryService {
	return &EntryService{entries: entries, journals: journals, media: media, indexer: indexer, log: log}
}

func mediaTypeFor(contentType string) (entity.MediaType, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return entity.MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return entity.MediaVideo, nil
	case strings.HasPrefix(contentType, "audio/"):
		return entity.MediaAudio, nil
	case contentType == "application/pdf":
		return entity.MediaPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
}

func (s *EntryService) uploadFiles(ctx context.Context, userID string, files []UploadedFile) ([]entity.Media, error) {
	out := make([]entity.Media, 0, len(files))
	for _, f := range files {
		mt, err := mediaTypeFor(f.ContentType)
		if err != nil {
			return out, err
		}
		id := uuid.NewString()
		objectPath := fmt.Sprintf("users/%s/entries/%s_%s", userID, id, f.Filename)
		url, err := s.media.Upload(ctx, objectPath, f.ContentType, f.Reader)
		if err != nil {
			return out, fmt.Errorf("upload %s: %w", f.Filename, err)
		}
		out = append(out, entity.Media{
			ID:         id,
			Type:       mt,
			URL:        url,
			ObjectPath: objectPath,
			Filename:   f.Filename,
			Size:       f.Size,
			Duration:   f.Duration,
		})
	}
	return out, nil
}

// cleanupObjects removes already-uploaded objects after a failed operation.
func (s *EntryService) cleanupObjects(ctx context.Context, media []entity.Media) {
	for _, m := range media {
		if err := s.media.Delete(ctx, m.ObjectPath); err != nil {
			s.log.WithError(err).WithField("object", m.ObjectPath).Warn("orphaned media object")
		}
	}
}

func (s *EntryService) checkJournal(ctx context.Context, userID, journalID string) error {
	if journalID == "" {
		return nil
	}
	_, err := s.journals.GetByID(ctx, userID, journalID)
	return err
}

func (s *EntryService) Create(ctx context.Context, userID string, in CreateEntryInput) (*entity.Entry, error) {
	if err := s.checkJournal(ctx, userID, in.JournalID); err != nil {
		return nil, err
	}

	media, err := s.uploadFiles(ctx, userID, in.Files)
	if err != nil {
		s.cleanupObjects(ctx, media)
		return nil, err
	}

	e := &entity.Entry{
		UserID:      userID,
		JournalID:   in.JournalID,
		Title:       in.Title,
		Description: in.Description,
		FormatSpans: in.FormatSpans,
		Media:       media,
		Location:    in.Location,
		CreatedAt:   in.CreatedAt,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		s.cleanupObjects(ctx, media)
		return nil, err
	}
	s.index(ctx, e)
	return e, nil
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (*entity.Entry, error) {
	return s.entries.GetByID(ctx, userID, id)
}

func (s *EntryService) List(ctx context.Context, userID string, f repository.EntryFilter) ([]*entity.Entry, int64, error) {
	if f.JournalID != "" && f.JournalID != "all" {
		if err := s.checkJournal(ctx, userID, f.JournalID); err != nil {
			return nil, 0, err
		}
	}
	return s.entries.ListByUser(ctx, userID, f)
}

func (s *EntryService) Update(ctx context.Context, userID, id string, in UpdateEntryInput) (*entity.Entry, error) {
	e, err := s.entries.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.JournalID != nil {
		if err := s.checkJournal(ctx, userID, *in.JournalID); err != nil {
			return nil, err
		}
		e.JournalID = *in.JournalID
	}
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.FormatSpans != nil {
		e.FormatSpans = in.FormatSpans
	}
	if in.ClearLocation {
		e.Location = nil
	} else if in.Location != nil {
		e.Location = in.Location
	}

	added, err := s.uploadFiles(ctx, userID, in.Files)
	if err != nil {
		s.cleanupObjects(ctx, added)
		return nil, err
	}
	e.Media = append(e.Media, added...)

	if err := s.entries.Update(ctx, e); err != nil {
		s.cleanupObjects(ctx, added)
		return nil, err
	}
	s.index(ctx, e)
	return e, nil
}

// Delete removes the entry, its stored media objects and its index document.
// Object and index cleanup are best-effort once the row is gone.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	e, err := s.entries.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cleanupObjects(ctx, e.Media)
	if err := s.indexer.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("entry_id", id).Warn("remove entry from search index")
	}
	return nil
}

// DeleteMedia removes a single media item from an entry.
func (s *EntryService) DeleteMedia(ctx context.Context, userID, entryID, mediaID string) (*entity.Entry, error) {
	e, err := s.entries.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, m := range e.Media {
		if m.ID == mediaID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMediaNotFound
	}
	removed := e.Media[idx]
	e.Media = append(e.Media[:idx], e.Media[idx+1:]...)

	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	if err := s.media.Delete(ctx, removed.ObjectPath); err != nil {
		s.log.WithError(err).WithField("object", removed.ObjectPath).Warn("orphaned media object")
	}
	return e, nil
}

// Nearby returns the user's located entries within radiusMeters of the
// point, nearest first.
func (s *EntryService) Nearby(ctx context.Context, userID string, lon, lat, radiusMeters float64) ([]*entity.Entry, error) {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return nil, ErrInvalidCoordinates
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultNearbyRadius
	}
	return s.entries.ListNearby(ctx, userID, lon, lat, radiusMeters)
}

func (s *EntryService) Stats(ctx context.Context, userID string) (*repository.EntryStats, error) {
	return s.entries.Stats(ctx, userID)
}

// Search runs a full-text query and resolves the hits against the entry
// store, dropping ids whose rows have since been deleted.
func (s *EntryService) Search(ctx context.Context, userID, query string, limit int) ([]*entity.Entry, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	ids, err := s.indexer.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.entries.GetByID(ctx, userID, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// index is best-effort; a search index outage never fails a write.
func (s *EntryService) index(ctx context.Context, e *entity.Entry) {
	if err := s.indexer.Index(ctx, e); err != nil {
		s.log.WithError(err).WithField("entry_id", e.ID).Warn("index entry")
	}
}
