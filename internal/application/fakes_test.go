package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/mailer"
)

// fakeUsers stubs the two user operations the application services touch.
// The embedded interface panics on anything else, which is what we want.
type fakeUsers struct {
	repository.UserRepository
	byID map[string]*entity.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetPremium(_ context.Context, id string, premium bool) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsPremium = premium
	return u, nil
}

type fakeJournals struct {
	seq      int
	journals map[string]*entity.Journal
}

func newFakeJournals() *fakeJournals {
	return &fakeJournals{journals: map[string]*entity.Journal{}}
}

func (f *fakeJournals) Create(_ context.Context, j *entity.Journal) error {
	f.seq++
	j.ID = fmt.Sprintf("journal-%d", f.seq)
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	f.journals[j.ID] = j
	return nil
}

func (f *fakeJournals) GetByID(_ context.Context, userID, id string) (*entity.Journal, error) {
	j, ok := f.journals[id]
	if !ok || j.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return j, nil
}

func (f *fakeJournals) ListByUser(_ context.Context, userID string) ([]*entity.Journal, error) {
	var out []*entity.Journal
	for _, j := range f.journals {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJournals) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, j := range f.journals {
		if j.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeJournals) Update(_ context.Context, j *entity.Journal) error {
	got, ok := f.journals[j.ID]
	if !ok || got.UserID != j.UserID {
		return repository.ErrNotFound
	}
	f.journals[j.ID] = j
	return nil
}

func (f *fakeJournals) Delete(_ context.Context, userID, id string) error {
	j, ok := f.journals[id]
	if !ok || j.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.journals, id)
	return nil
}

var _ repository.JournalRepository = (*fakeJournals)(nil)

type fakeEntries struct {
	seq     int
	entries map[string]*entity.Entry
}

func newFakeEntries() *fakeEntries {
	return &fakeEntries{entries: map[string]*entity.Entry{}}
}

func (f *fakeEntries) Create(_ context.Context, e *entity.Entry) error {
	f.seq++
	e.ID = fmt.Sprintf("entry-%d", f.seq)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.UpdatedAt = time.Now()
	c := *e
	f.entries[e.ID] = &c
	return nil
}

func (f *fakeEntries) GetByID(_ context.Context, userID, id string) (*entity.Entry, error) {
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	c := *e
	c.Media = append([]entity.Media(nil), e.Media...)
	return &c, nil
}

func (f *fakeEntries) ListByUser(_ context.Context, userID string, _ repository.EntryFilter) ([]*entity.Entry, int64, error) {
	var out []*entity.Entry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeEntries) ListNearby(_ context.Context, userID string, lon, lat, radiusMeters float64) ([]*entity.Entry, error) {
	var out []*entity.Entry
	for _, e := range f.entries {
		if e.UserID != userID || e.Location == nil {
			continue
		}
		if haversine(lon, lat, e.Location.Longitude, e.Location.Latitude) <= radiusMeters {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return haversine(lon, lat, out[i].Location.Longitude, out[i].Location.Latitude) <
			haversine(lon, lat, out[j].Location.Longitude, out[j].Location.Latitude)
	})
	return out, nil
}

func haversine(lon1, lat1, lon2, lat2 float64) float64 {
	const earthRadius = 6371000.0
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

func (f *fakeEntries) Stats(_ context.Context, userID string) (*repository.EntryStats, error) {
	stats := &repository.EntryStats{}
	byMonth := map[[2]int]int64{}
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		stats.TotalEntries++
		stats.TotalMedia += int64(len(e.Media))
		byMonth[[2]int{e.CreatedAt.Year(), int(e.CreatedAt.Month())}]++
	}
	for ym, n := range byMonth {
		stats.ByMonth = append(stats.ByMonth, repository.MonthCount{Year: ym[0], Month: ym[1], Count: n})
	}
	sort.Slice(stats.ByMonth, func(i, j int) bool {
		a, b := stats.ByMonth[i], stats.ByMonth[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	if len(stats.ByMonth) > 12 {
		stats.ByMonth = stats.ByMonth[:12]
	}
	return stats, nil
}

func (f *fakeEntries) Update(_ context.Context, e *entity.Entry) error {
	got, ok := f.entries[e.ID]
	if !ok || got.UserID != e.UserID {
		return repository.ErrNotFound
	}
	c := *e
	f.entries[e.ID] = &c
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, userID, id string) error {
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

var _ repository.EntryRepository = (*fakeEntries)(nil)

type fakeMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string // filename substring that fails the upload
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: map[string][]byte{}}
}

func (s *fakeMediaStore) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && bytes.Contains([]byte(objectPath), []byte(s.failOn)) {
		return "", fmt.Errorf("upload refused for %s", objectPath)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[objectPath] = b
	return "https://storage.test/" + objectPath, nil
}

func (s *fakeMediaStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectPath)
	s.deleted = append(s.deleted, objectPath)
	return nil
}

type fakeIndexer struct {
	docs    map[string]*entity.Entry
	deleted []string
	hits    []string // canned search result
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: map[string]*entity.Entry{}}
}

func (f *fakeIndexer) Index(_ context.Context, e *entity.Entry) error {
	if f.err != nil {
		return f.err
	}
	c := *e
	f.docs[e.ID] = &c
	return nil
}

func (f *fakeIndexer) Delete(_ context.Context, entryID string) error {
	delete(f.docs, entryID)
	f.deleted = append(f.deleted, entryID)
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _, _ string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeQueue struct {
	jobs []mailer.EmailJob
	err  error
}

func (q *fakeQueue) PublishJSON(_ context.Context, body any) error {
	if q.err != nil {
		return q.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

func (q *fakeQueue) last() mailer.EmailJob {
	return q.jobs[len(q.jobs)-1]
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
