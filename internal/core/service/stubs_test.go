package service

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubTx struct {
	calls int
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type stubVisitorRepo struct {
	byID      map[string]*domain.Visitor
	createErr error
	creates   int
	updates   int
}

func newStubVisitorRepo() *stubVisitorRepo {
	return &stubVisitorRepo{byID: make(map[string]*domain.Visitor)}
}

func (r *stubVisitorRepo) conflicts(v *domain.Visitor) bool {
	for id, other := range r.byID {
		if id != v.ID && (other.Email == v.Email || other.Phone == v.Phone) {
			return true
		}
	}
	return false
}

func (r *stubVisitorRepo) Create(_ context.Context, v *domain.Visitor) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.conflicts(v) {
		return domain.ErrVisitorConflict
	}
	r.creates++
	clone := *v
	r.byID[v.ID] = &clone
	return nil
}

func (r *stubVisitorRepo) Update(_ context.Context, v *domain.Visitor) error {
	if _, ok := r.byID[v.ID]; !ok {
		return domain.ErrVisitorNotFound
	}
	if r.conflicts(v) {
		return domain.ErrVisitorConflict
	}
	r.updates++
	clone := *v
	r.byID[v.ID] = &clone
	return nil
}

func (r *stubVisitorRepo) FindByID(_ context.Context, id string) (*domain.Visitor, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrVisitorNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *stubVisitorRepo) find(match func(*domain.Visitor) bool) (*domain.Visitor, error) {
	for _, v := range r.byID {
		if match(v) {
			clone := *v
			return &clone, nil
		}
	}
	return nil, domain.ErrVisitorNotFound
}

func (r *stubVisitorRepo) FindByEmail(_ context.Context, email string) (*domain.Visitor, error) {
	return r.find(func(v *domain.Visitor) bool { return v.Email == email })
}

func (r *stubVisitorRepo) FindByPhone(_ context.Context, phone string) (*domain.Visitor, error) {
	return r.find(func(v *domain.Visitor) bool { return v.Phone == phone })
}

func (r *stubVisitorRepo) List(_ context.Context, f ports.VisitorFilter) ([]domain.Visitor, int64, error) {
	var all []domain.Visitor
	for _, v := range r.byID {
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubVisitorRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrVisitorNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubVisitRepo struct {
	mu        sync.Mutex
	visitors  *stubVisitorRepo
	byID      map[string]*domain.Visit
	createErr error
}

func newStubVisitRepo(visitors *stubVisitorRepo) *stubVisitRepo {
	return &stubVisitRepo{visitors: visitors, byID: make(map[string]*domain.Visit)}
}

func (r *stubVisitRepo) load(v *domain.Visit) domain.Visit {
	clone := *v
	clone.Photos = append([]domain.VisitorPhoto(nil), v.Photos...)
	if visitor, ok := r.visitors.byID[v.VisitorID]; ok {
		vc := *visitor
		clone.Visitor = &vc
	}
	return clone
}

func (r *stubVisitRepo) Create(_ context.Context, v *domain.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *v
	clone.Visitor = nil
	r.byID[v.ID] = &clone
	return nil
}

func (r *stubVisitRepo) UpdateDetails(_ context.Context, v *domain.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[v.ID]
	if !ok {
		return domain.ErrVisitNotFound
	}
	stored.Purpose = v.Purpose
	stored.HostName = v.HostName
	return nil
}

func (r *stubVisitRepo) SetSignature(_ context.Context, id string, sig domain.Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return domain.ErrVisitNotFound
	}
	stored.ApplySignature(sig)
	return nil
}

func (r *stubVisitRepo) FindByID(_ context.Context, id string) (*domain.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	loaded := r.load(v)
	return &loaded, nil
}

func (r *stubVisitRepo) CloseIfOpen(_ context.Context, v *domain.Visit) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[v.ID]
	if !ok {
		return false, domain.ErrVisitNotFound
	}
	if stored.CheckOutTime != nil {
		return false, nil
	}
	out := *v.CheckOutTime
	d := *v.DurationMinutes
	stored.CheckOutTime = &out
	stored.DurationMinutes = &d
	return true, nil
}

func (r *stubVisitRepo) sorted(keep func(*domain.Visit) bool) []domain.Visit {
	var out []domain.Visit
	for _, v := range r.byID {
		if keep(v) {
			out = append(out, r.load(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out
}

func (r *stubVisitRepo) ListActive(_ context.Context) ([]domain.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(v *domain.Visit) bool { return v.IsActive() }), nil
}

func (r *stubVisitRepo) History(_ context.Context, f ports.HistoryFilter) ([]domain.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(v *domain.Visit) bool {
		visitor := r.visitors.byID[v.VisitorID]
		if f.Email != "" && (visitor == nil || visitor.Email != f.Email) {
			return false
		}
		return true
	}), nil
}

func (r *stubVisitRepo) List(_ context.Context, f ports.VisitFilter) ([]domain.Visit, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(v *domain.Visit) bool {
		return (f.VisitorID == "" || v.VisitorID == f.VisitorID) && (!f.ActiveOnly || v.IsActive())
	})
	if f.Limit > 0 && len(all) > f.Limit {
		return all[:f.Limit], int64(len(all)), nil
	}
	return all, int64(len(all)), nil
}

func (r *stubVisitRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrVisitNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubVisitRepo) ActivityFor(_ context.Context, visitorID string) (*ports.VisitorActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	visits := r.sorted(func(v *domain.Visit) bool { return v.VisitorID == visitorID })
	a := &ports.VisitorActivity{TotalVisits: int64(len(visits))}
	if len(visits) > 0 {
		last := visits[0].CheckInTime
		a.LastVisit = &last
	}
	for i := range visits {
		if visits[i].IsActive() {
			a.ActiveVisit = &visits[i]
			break
		}
	}
	return a, nil
}

func (r *stubVisitRepo) CountCheckInsSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.byID {
		if !v.CheckInTime.Before(since) {
			n++
		}
	}
	return n, nil
}

type stubPhotoRepo struct {
	visits *stubVisitRepo
	saved  []domain.VisitorPhoto
}

func (r *stubPhotoRepo) Create(_ context.Context, p *domain.VisitorPhoto) error {
	r.visits.mu.Lock()
	defer r.visits.mu.Unlock()
	visit, ok := r.visits.byID[p.VisitID]
	if !ok {
		return domain.ErrVisitNotFound
	}
	if visit.VisitorID != p.VisitorID {
		return domain.ErrPhotoVisitorMismatch
	}
	r.saved = append(r.saved, *p)
	visit.Photos = append([]domain.VisitorPhoto{*p}, visit.Photos...)
	return nil
}

type stubMedia struct {
	files   map[string][]byte
	saveErr error
}

func newStubMedia() *stubMedia {
	return &stubMedia{files: make(map[string][]byte)}
}

func (m *stubMedia) Save(_ context.Context, dir, filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	p := path.Join(dir, filename)
	m.files[p] = data
	return p, nil
}

func (m *stubMedia) URL(p string) string {
	return "/media/" + p
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.VisitEvent
}

func (a *stubAudit) Publish(e domain.VisitEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *stubAudit) types() []domain.VisitEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.VisitEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

// fixedClock returns a clock that starts at t and can be moved forward.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
