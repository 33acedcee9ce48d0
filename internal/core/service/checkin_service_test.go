package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type checkInFixture struct {
	svc      *CheckInService
	tx       *stubTx
	visitors *stubVisitorRepo
	visits   *stubVisitRepo
	photos   *stubPhotoRepo
	media    *stubMedia
	audit    *stubAudit
	clock    *fixedClock
}

func newCheckInFixture() *checkInFixture {
	f := &checkInFixture{
		tx:       &stubTx{},
		visitors: newStubVisitorRepo(),
		media:    newStubMedia(),
		audit:    &stubAudit{},
		clock:    &fixedClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.visits = newStubVisitRepo(f.visitors)
	f.photos = &stubPhotoRepo{visits: f.visits}
	f.svc = NewCheckInService(f.tx, f.visitors, f.visits, f.photos, f.media, f.audit, zerolog.Nop())
	f.svc.now = f.clock.now
	return f
}

func baseInput() ports.CheckInInput {
	return ports.CheckInInput{
		Name:     "Ana Lopez",
		Email:    "ana@example.com",
		Phone:    "555-0100",
		Purpose:  "Interview",
		HostName: "Maria",
	}
}

func TestCheckIn_NewVisitor(t *testing.T) {
	f := newCheckInFixture()

	res, err := f.svc.CheckIn(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}
	if res.Resolution != domain.ResolutionCreated || res.ReturningVisitor() {
		t.Fatalf("resolution = %v, want created", res.Resolution)
	}
	if !res.Visit.IsActive() {
		t.Fatalf("new visit must be active")
	}
	if res.Visit.Visitor == nil || res.Visit.Visitor.Email != "ana@example.com" {
		t.Fatalf("visit should carry its visitor, got %+v", res.Visit.Visitor)
	}
	if len(f.visitors.byID) != 1 || len(f.visits.byID) != 1 {
		t.Fatalf("want 1 visitor and 1 visit, got %d and %d", len(f.visitors.byID), len(f.visits.byID))
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if got := f.audit.types(); len(got) != 1 || got[0] != domain.EventCheckedIn {
		t.Fatalf("audit events = %v", got)
	}
}

func TestCheckIn_MatchesByEmailAndOverwritesPhone(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	first, err := f.svc.CheckIn(ctx, baseInput())
	if err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}

	in := baseInput()
	in.Name = "Ana L."
	in.Phone = "555-0199"
	second, err := f.svc.CheckIn(ctx, in)
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}

	if second.Resolution != domain.ResolutionMatchedByEmail || !second.ReturningVisitor() {
		t.Fatalf("resolution = %v, want matched_by_email", second.Resolution)
	}
	if len(f.visitors.byID) != 1 {
		t.Fatalf("returning visitor must not create a new record, have %d", len(f.visitors.byID))
	}
	stored := f.visitors.byID[first.Visit.VisitorID]
	if stored.Phone != "555-0199" || stored.Name != "Ana L." {
		t.Fatalf("visitor not overwritten: %+v", stored)
	}
	if second.Visit.VisitorID != first.Visit.VisitorID || second.Visit.ID == first.Visit.ID {
		t.Fatalf("second visit should be new and belong to the same visitor")
	}
}

func TestCheckIn_MatchesByPhoneAndOverwritesEmail(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	if _, err := f.svc.CheckIn(ctx, baseInput()); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}

	in := baseInput()
	in.Email = "ana.new@example.com"
	res, err := f.svc.CheckIn(ctx, in)
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}
	if res.Resolution != domain.ResolutionMatchedByPhone {
		t.Fatalf("resolution = %v, want matched_by_phone", res.Resolution)
	}
	if res.Visit.Visitor.Email != "ana.new@example.com" {
		t.Fatalf("email not overwritten: %s", res.Visit.Visitor.Email)
	}
	if f.visitors.creates != 1 {
		t.Fatalf("expected one visitor create, got %d", f.visitors.creates)
	}
}

func TestCheckIn_ConflictingContactsFail(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	if _, err := f.svc.CheckIn(ctx, baseInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	other := baseInput()
	other.Email, other.Phone = "ben@example.com", "555-0200"
	if _, err := f.svc.CheckIn(ctx, other); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	// Email belongs to Ana, phone belongs to Ben.
	in := baseInput()
	in.Phone = "555-0200"
	_, err := f.svc.CheckIn(ctx, in)
	if !errors.Is(err, domain.ErrVisitorConflict) {
		t.Fatalf("got %v, want ErrVisitorConflict", err)
	}
}

func TestCheckIn_VisitCreateFailureIsReturned(t *testing.T) {
	f := newCheckInFixture()
	f.visits.createErr = errors.New("db down")

	in := baseInput()
	in.Photo.DataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	_, err := f.svc.CheckIn(context.Background(), in)
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected db error, got %v", err)
	}
	if len(f.media.files) != 0 {
		t.Fatalf("no attachment should be stored when the visit was not created")
	}
}

func TestCheckIn_InvalidPhotoKeepsVisit(t *testing.T) {
	f := newCheckInFixture()

	in := baseInput()
	in.Photo.DataURL = "not-a-data-url"
	res, err := f.svc.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("CheckIn must succeed despite a bad photo, got %v", err)
	}
	if len(res.Attachments) != 1 {
		t.Fatalf("want 1 attachment result, got %d", len(res.Attachments))
	}
	a := res.Attachments[0]
	if a.Kind != ports.AttachmentPhoto || a.Stored || !errors.Is(a.Err, domain.ErrInvalidImageData) {
		t.Fatalf("unexpected attachment result %+v", a)
	}
	if len(f.visits.byID) != 1 || len(f.photos.saved) != 0 {
		t.Fatalf("visit must exist without photos")
	}
}

func TestCheckIn_PhotoDataURLStored(t *testing.T) {
	f := newCheckInFixture()

	in := baseInput()
	in.Photo.DataURL = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	res, err := f.svc.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if !res.Attachments[0].Stored {
		t.Fatalf("photo not stored: %v", res.Attachments[0].Err)
	}
	if len(f.photos.saved) != 1 {
		t.Fatalf("want 1 photo, got %d", len(f.photos.saved))
	}
	p := f.photos.saved[0]
	if p.VisitorID != res.Visit.VisitorID {
		t.Fatalf("photo visitor %s != visit visitor %s", p.VisitorID, res.Visit.VisitorID)
	}
	if !strings.HasPrefix(p.Image, "visitor_photos/visitor_photo_") || !strings.HasSuffix(p.Image, ".jpeg") {
		t.Fatalf("unexpected photo path %q", p.Image)
	}
	if string(f.media.files[p.Image]) != "jpeg-bytes" {
		t.Fatalf("stored bytes differ")
	}
	if res.Visit.FirstPhoto() == nil {
		t.Fatalf("reloaded visit should include the photo")
	}
}

func TestCheckIn_PhotoUploadMustBeImage(t *testing.T) {
	f := newCheckInFixture()

	in := baseInput()
	in.Photo.File = &ports.Upload{Filename: "notes.txt", Data: []byte("plain text")}
	res, err := f.svc.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Attachments[0].Stored || !errors.Is(res.Attachments[0].Err, domain.ErrInvalidImageData) {
		t.Fatalf("text upload must be rejected, got %+v", res.Attachments[0])
	}

	in.Photo.File = &ports.Upload{Filename: "face.PNG", Data: pngHeader}
	res, err = f.svc.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if !res.Attachments[0].Stored {
		t.Fatalf("png upload rejected: %v", res.Attachments[0].Err)
	}
}

func TestCheckIn_SignatureKinds(t *testing.T) {
	imageData := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	cases := []struct {
		name      string
		sig       ports.SignatureInput
		wantKind  domain.SignatureKind
		wantImage bool
	}{
		{"vector json", ports.SignatureInput{Data: `{"paths":[[1,2],[3,4]]}`}, domain.SignatureVector, false},
		{"vector flag", ports.SignatureInput{Data: "M 0 0 L 10 10", Vector: true}, domain.SignatureVector, false},
		{"image data url", ports.SignatureInput{Data: imageData}, domain.SignatureImage, true},
		{"raw text", ports.SignatureInput{Data: "Ana Lopez"}, domain.SignatureRaw, false},
		{"uploaded file", ports.SignatureInput{File: &ports.Upload{Filename: "sig.png", Data: pngHeader}}, domain.SignatureImage, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckInFixture()
			in := baseInput()
			in.Signature = tc.sig

			res, err := f.svc.CheckIn(context.Background(), in)
			if err != nil {
				t.Fatalf("CheckIn: %v", err)
			}
			if !res.Attachments[0].Stored {
				t.Fatalf("signature not stored: %v", res.Attachments[0].Err)
			}
			if res.Visit.SignatureType != tc.wantKind {
				t.Fatalf("kind = %q, want %q", res.Visit.SignatureType, tc.wantKind)
			}
			if (res.Visit.SignatureImage != "") != tc.wantImage {
				t.Fatalf("signature image = %q, want image %v", res.Visit.SignatureImage, tc.wantImage)
			}
			if tc.sig.Data != "" && res.Visit.SignatureData != tc.sig.Data {
				t.Fatalf("signature data must be kept verbatim")
			}
		})
	}
}

func TestCheckIn_BrokenSignatureIsSwallowed(t *testing.T) {
	f := newCheckInFixture()

	in := baseInput()
	in.Signature.Data = "data:image/png;base64,%%%not-base64%%%"
	res, err := f.svc.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if res.Attachments[0].Stored {
		t.Fatalf("broken signature must not be stored")
	}
	if res.Visit.SignatureType != domain.SignatureNone {
		t.Fatalf("visit should have no signature, got %q", res.Visit.SignatureType)
	}
}

func TestCheckOut_ComputesDurationAndRejectsSecondCall(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	res, err := f.svc.CheckIn(ctx, baseInput())
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	f.clock.advance(2*time.Hour + 5*time.Minute + 42*time.Second)
	visit, err := f.svc.CheckOut(ctx, res.Visit.ID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if visit.IsActive() || *visit.DurationMinutes != 125 {
		t.Fatalf("duration = %v, want 125", visit.DurationMinutes)
	}
	if visit.DurationFormatted() != "2h 5m" {
		t.Fatalf("formatted = %q", visit.DurationFormatted())
	}

	f.clock.advance(time.Hour)
	if _, err := f.svc.CheckOut(ctx, res.Visit.ID); !errors.Is(err, domain.ErrVisitAlreadyClosed) {
		t.Fatalf("second CheckOut: got %v, want ErrVisitAlreadyClosed", err)
	}
	stored := f.visits.byID[res.Visit.ID]
	if *stored.DurationMinutes != 125 {
		t.Fatalf("second check-out changed the stored duration to %d", *stored.DurationMinutes)
	}
}

func TestCheckOut_UnknownVisit(t *testing.T) {
	f := newCheckInFixture()
	if _, err := f.svc.CheckOut(context.Background(), "missing"); !errors.Is(err, domain.ErrVisitNotFound) {
		t.Fatalf("got %v, want ErrVisitNotFound", err)
	}
}

func TestCheckOut_ConcurrentCallsCloseOnce(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	res, err := f.svc.CheckIn(ctx, baseInput())
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	f.clock.advance(30 * time.Minute)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		closed    int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckOut(ctx, res.Visit.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrVisitAlreadyClosed):
				closed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || closed != callers-1 {
		t.Fatalf("succeeded=%d closed=%d, want 1 and %d", succeeded, closed, callers-1)
	}
}

func TestListActive_OnlyOpenVisitsNewestFirst(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	a, _ := f.svc.CheckIn(ctx, baseInput())
	f.clock.advance(time.Minute)
	in := baseInput()
	in.Email, in.Phone = "ben@example.com", "555-0200"
	b, _ := f.svc.CheckIn(ctx, in)
	f.clock.advance(time.Minute)
	in.Email, in.Phone = "cy@example.com", "555-0300"
	c, _ := f.svc.CheckIn(ctx, in)

	if _, err := f.svc.CheckOut(ctx, b.Visit.ID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	active, err := f.svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 || active[0].ID != c.Visit.ID || active[1].ID != a.Visit.ID {
		t.Fatalf("unexpected active list %+v", active)
	}
}

func TestAttachPhoto_LaterUpload(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	res, _ := f.svc.CheckIn(ctx, baseInput())
	visit, err := f.svc.AttachPhoto(ctx, res.Visit.ID, ports.PhotoInput{File: &ports.Upload{Filename: "p.png", Data: pngHeader}})
	if err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	if len(visit.Photos) != 1 {
		t.Fatalf("want 1 photo, got %d", len(visit.Photos))
	}

	if _, err := f.svc.AttachPhoto(ctx, res.Visit.ID, ports.PhotoInput{DataURL: "garbage"}); !errors.Is(err, domain.ErrInvalidImageData) {
		t.Fatalf("got %v, want ErrInvalidImageData", err)
	}
	if _, err := f.svc.AttachPhoto(ctx, "missing", ports.PhotoInput{DataURL: "x;base64,eA=="}); !errors.Is(err, domain.ErrVisitNotFound) {
		t.Fatalf("got %v, want ErrVisitNotFound", err)
	}
}

func TestAttachSignature_ReplacesExisting(t *testing.T) {
	f := newCheckInFixture()
	ctx := context.Background()

	in := baseInput()
	in.Signature.Data = "first"
	res, _ := f.svc.CheckIn(ctx, in)

	visit, err := f.svc.AttachSignature(ctx, res.Visit.ID, ports.SignatureInput{Data: `{"paths":[]}`})
	if err != nil {
		t.Fatalf("AttachSignature: %v", err)
	}
	if visit.SignatureType != domain.SignatureVector {
		t.Fatalf("kind = %q, want vector", visit.SignatureType)
	}
	if f.visits.byID[res.Visit.ID].SignatureData != `{"paths":[]}` {
		t.Fatalf("stored signature not replaced")
	}
}

func TestPhotoRepo_RejectsForeignVisitor(t *testing.T) {
	f := newCheckInFixture()
	res, _ := f.svc.CheckIn(context.Background(), baseInput())

	photo := domain.NewVisitorPhoto(res.Visit, "visitor_photos/x.png", time.Now())
	photo.VisitorID = "someone-else"
	if err := f.photos.Create(context.Background(), photo); !errors.Is(err, domain.ErrPhotoVisitorMismatch) {
		t.Fatalf("got %v, want ErrPhotoVisitorMismatch", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	ext, data, err := decodeDataURL("data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("abc")))
	if err != nil || ext != "webp" || string(data) != "abc" {
		t.Fatalf("got (%q, %q, %v)", ext, data, err)
	}

	ext, _, err = decodeDataURL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>")))
	if err != nil || ext != "png" {
		t.Fatalf("odd subtype should fall back to png, got %q (%v)", ext, err)
	}

	if _, _, err := decodeDataURL("data:image/png,abc"); !errors.Is(err, domain.ErrInvalidImageData) {
		t.Fatalf("missing separator: got %v", err)
	}
	if _, _, err := decodeDataURL("data:image/png;base64,"); !errors.Is(err, domain.ErrInvalidImageData) {
		t.Fatalf("empty payload: got %v", err)
	}
}
