package clients

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/infra/repository"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{200, 10, 10, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type fakeReminders struct {
	mu        sync.Mutex
	cancelled []string
}

func (f *fakeReminders) Schedule(context.Context, string, time.Time, string) error { return nil }

func (f *fakeReminders) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	f.cancelled = append(f.cancelled, id)
	f.mu.Unlock()
	return nil
}

type fixture struct {
	svc       *Service
	repo      *repository.BookingGormRepository
	photos    *storage.MemoryStore
	reminders *fakeReminders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      repository.NewBookingGormRepository(testdb.Open(t)),
		photos:    storage.NewMemoryStore(640),
		reminders: &fakeReminders{},
	}
	f.svc = New(f.repo, f.photos, f.reminders, clock.NewFixed(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)), nil, nil)
	return f
}

func TestClients_SearchAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Riley Brooks", "Jordan Miles", "Casey Vega"} {
		if _, err := f.svc.Create(ctx, ClientInput{Name: name}, nil); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if _, err := f.svc.Create(ctx, ClientInput{Name: "  "}, nil); !httperr.IsBusiness(err, "invalid_name") {
		t.Fatalf("expected invalid_name, got %v", err)
	}

	found, err := f.svc.List(ctx, "MIL", false)
	if err != nil || len(found) != 1 || found[0].Name != "Jordan Miles" {
		t.Fatalf("expected case-insensitive match, got %+v (%v)", found, err)
	}

	all, _ := f.svc.List(ctx, "", false)
	if all[0].Name != "Casey Vega" {
		t.Fatalf("expected alphabetical order, got %s first", all[0].Name)
	}
}

func TestClients_UpdateNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Create(ctx, ClientInput{Name: "Taylor Reeves", Phone: "555-0123"}, nil)

	notes := "Add hard part"
	got, err := f.svc.Update(ctx, c.ID, ClientPatch{Notes: &notes}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Notes != notes || got.Phone != "555-0123" {
		t.Fatalf("unexpected client %+v", got)
	}
}

func TestHaircuts_PhotoLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Create(ctx, ClientInput{Name: "Morgan Hale"}, nil)

	h, err := f.svc.AddHaircut(ctx, c.ID, HaircutInput{Notes: "Low fade", Photo: pngBytes(t)}, nil)
	if err != nil {
		t.Fatalf("add haircut: %v", err)
	}
	if h.PhotoRef == "" {
		t.Fatalf("expected a photo ref")
	}
	if _, ok := f.photos.Get(h.PhotoRef); !ok {
		t.Fatalf("photo not stored")
	}
	if !h.TakenAt.Equal(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock time, got %v", h.TakenAt)
	}

	if _, err := f.svc.AddHaircut(ctx, c.ID, HaircutInput{Photo: []byte("nope")}, nil); !httperr.IsBusiness(err, "invalid_image") {
		t.Fatalf("expected invalid_image, got %v", err)
	}

	if err := f.svc.DeleteHaircut(ctx, h.ID, nil); err != nil {
		t.Fatalf("delete haircut: %v", err)
	}
	if _, ok := f.photos.Get(h.PhotoRef); ok {
		t.Fatalf("photo must be removed with the haircut")
	}
}

func TestDelete_CascadesAndRemovesPhotos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Create(ctx, ClientInput{Name: "Jordan Miles"}, nil)
	h, _ := f.svc.AddHaircut(ctx, c.ID, HaircutInput{Photo: pngBytes(t)}, nil)

	b := domain.New(c, nil, nil, time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC))
	if err := f.repo.InsertBooking(ctx, b); err != nil {
		t.Fatalf("insert booking: %v", err)
	}

	if err := f.svc.Delete(ctx, c.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.repo.FindBooking(ctx, b.ID); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("booking must be deleted with its client, got %v", err)
	}
	if _, ok := f.photos.Get(h.PhotoRef); ok {
		t.Fatalf("haircut photo must be removed")
	}
	if len(f.reminders.cancelled) != 1 || f.reminders.cancelled[0] != b.ReminderID {
		t.Fatalf("expected the booking reminder cancelled, got %v", f.reminders.cancelled)
	}
	if _, err := f.svc.Haircuts(ctx, c.ID); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected client_not_found, got %v", err)
	}
}
