package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "gymstay/database/repository/booking"
	offerRepo "gymstay/database/repository/offer"
	"gymstay/models"
	"gymstay/services/payment"

	"go.uber.org/zap"
)

// fakeBookingRepo is an in-memory Repository. CommitTransition honours the
// expected-prior-state contract so the optimistic concurrency paths are
// exercised for real.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	// beforeCommit, when set, runs ahead of a CommitTransition attempt so a
	// test can interleave a competing transition.
	beforeCommit func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	if b.Authorization != nil {
		auth := *b.Authorization
		c.Authorization = &auth
	}
	c.Transitions = append([]models.Transition(nil), b.Transitions...)
	return &c
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ConfirmationReference == reference {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) GetByExternalRef(ctx context.Context, externalRef string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Authorization != nil && b.Authorization.ExternalRef == externalRef {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) CommitTransition(ctx context.Context, fromState models.BookingState, b *models.Booking) (bool, error) {
	if r.beforeCommit != nil {
		r.beforeCommit()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok || stored.State != fromState {
		return false, nil
	}
	r.bookings[b.ID] = cloneBooking(b)
	return true, nil
}

func (r *fakeBookingRepo) CountOverlapping(ctx context.Context, offerID string, start, end time.Time, states []models.BookingState) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Offer.OfferID != offerID {
			continue
		}
		inState := false
		for _, s := range states {
			if b.State == s {
				inState = true
				break
			}
		}
		if inState && b.StartDate.Before(end) && b.EndDate.After(start) {
			n++
		}
	}
	return n, nil
}

type fakeOfferRepo struct {
	offers map[string]*models.Offer
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, offerRepo.ErrNotFound
	}
	return o, nil
}

// fakeAuthority counts processor calls and can be told to fail.
type fakeAuthority struct {
	mu           sync.Mutex
	holdCalls    int
	captureCalls int
	releaseCalls int
	holdExpiry   time.Time
	failHold     error
	failCapture  error

	// onCreateHold, when set, runs while the hold call is in flight so a
	// test can interleave a competing booking.
	onCreateHold func()
}

func (a *fakeAuthority) CreateHold(ctx context.Context, amount float64, currency, idempotencyKey string) (*payment.Hold, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failHold != nil {
		return nil, a.failHold
	}
	a.holdCalls++
	if a.onCreateHold != nil {
		a.onCreateHold()
	}
	return &payment.Hold{
		ExternalRef:  "pi_test_1",
		Status:       "requires_action",
		ClientSecret: "pi_test_1_secret",
		ExpiresAt:    a.holdExpiry,
	}, nil
}

func (a *fakeAuthority) Capture(ctx context.Context, externalRef, idempotencyKey string) (*payment.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failCapture != nil {
		return nil, a.failCapture
	}
	a.captureCalls++
	return &payment.Result{Status: "succeeded"}, nil
}

func (a *fakeAuthority) Release(ctx context.Context, externalRef, idempotencyKey string) (*payment.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseCalls++
	return &payment.Result{Status: "canceled"}, nil
}

// fakeDispatcher records enqueued notifications.
type fakeDispatcher struct {
	mu       sync.Mutex
	payloads []models.NotificationPayload
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, p models.NotificationPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, p)
	return nil
}

func (d *fakeDispatcher) countKind(kind models.NotificationKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, p := range d.payloads {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

func (s *fakeScheduler) ScheduleHoldExpiry(ctx context.Context, bookingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, bookingID)
	return nil
}

type fixture struct {
	svc        *DefaultBookingService
	repo       *fakeBookingRepo
	authority  *fakeAuthority
	dispatcher *fakeDispatcher
	scheduler  *fakeScheduler
	now        time.Time
}

func newFixture(t *testing.T, offer *models.Offer) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		repo:       newFakeBookingRepo(),
		authority:  &fakeAuthority{holdExpiry: now.Add(7 * 24 * time.Hour)},
		dispatcher: &fakeDispatcher{},
		scheduler:  &fakeScheduler{},
		now:        now,
	}
	f.svc = NewDefaultBookingService(
		f.repo,
		&fakeOfferRepo{offers: map[string]*models.Offer{offer.ID: offer}},
		f.authority,
		f.dispatcher,
		f.scheduler,
		zap.NewNop(),
	)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func testOffer(mode models.BookingMode) *models.Offer {
	weekly := 14000.0
	return &models.Offer{
		ID:          "offer-1",
		GymID:       "gym-1",
		Title:       "Muay Thai camp with room",
		Kind:        models.OfferTrainingAccommodation,
		Rates:       models.RateTable{Weekly: &weekly},
		Currency:    "THB",
		MinStayDays: 7,
		BookingMode: mode,
		HostEmail:   "host@gym.example",
	}
}

func testRequest() models.BookingRequest {
	return models.BookingRequest{
		OfferID:   "offer-1",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC),
		Guest:     models.Guest{Name: "Ana Silva", Email: "ana@example.com"},
	}
}

func TestRequestBookingPricesAndNotifies(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking returned error: %v", err)
	}
	if b.State != models.StateRequested {
		t.Errorf("state = %s, want %s", b.State, models.StateRequested)
	}
	if b.TotalAmount != 14000 {
		t.Errorf("totalAmount = %v, want 14000", b.TotalAmount)
	}
	if b.ConfirmationReference == "" || b.ConfirmationPIN == "" {
		t.Error("confirmation reference and PIN must be generated at request time")
	}
	if got := f.dispatcher.countKind(models.NotifyGuestRequested); got != 1 {
		t.Errorf("guest_requested notifications = %d, want 1", got)
	}
	if got := f.dispatcher.countKind(models.NotifyHostNewRequest); got != 1 {
		t.Errorf("host_new_request notifications = %d, want 1", got)
	}
}

func TestRequestBookingBelowMinimumStayReturnsAnchor(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))

	req := testRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, 3)

	_, err := f.svc.RequestBooking(context.Background(), req)
	var minStay *MinimumStayNotMetError
	if !errors.As(err, &minStay) {
		t.Fatalf("got %v, want MinimumStayNotMetError", err)
	}
	if minStay.MinStayDays != 7 || minStay.RequestedDays != 3 {
		t.Errorf("minStay = %d requested = %d", minStay.MinStayDays, minStay.RequestedDays)
	}
	if minStay.Anchor == nil || minStay.Anchor.Amount != 14000 {
		t.Errorf("anchor = %+v, want amount 14000 at the minimum duration", minStay.Anchor)
	}
	if len(f.repo.bookings) != 0 {
		t.Error("nothing must be persisted when validation fails")
	}
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	first, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("first RequestBooking returned error: %v", err)
	}
	// A second request only blocks once the first holds dates for real.
	if _, _, err := f.svc.CreateHold(ctx, first.ID); err != nil {
		t.Fatalf("CreateHold returned error: %v", err)
	}

	req := testRequest()
	req.StartDate = req.StartDate.AddDate(0, 0, 3)
	req.EndDate = req.EndDate.AddDate(0, 0, 3)

	_, err = f.svc.RequestBooking(ctx, req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("overlapping request: got %v, want ValidationError", err)
	}
}

func TestCreateHoldRejectsDatesTakenSinceRequest(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	// Two guests request the same dates; REQUESTED does not block, so both
	// succeed.
	first, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("first RequestBooking: %v", err)
	}
	second, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("second RequestBooking: %v", err)
	}

	if _, _, err := f.svc.CreateHold(ctx, first.ID); err != nil {
		t.Fatalf("first CreateHold: %v", err)
	}

	// Only the first to hold wins the dates.
	_, _, err = f.svc.CreateHold(ctx, second.ID)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("second CreateHold: got %v, want ValidationError", err)
	}
	if f.authority.holdCalls != 1 {
		t.Errorf("processor hold calls = %d, want 1", f.authority.holdCalls)
	}

	stored, err := f.repo.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateRequested {
		t.Errorf("loser state = %s, want unchanged %s", stored.State, models.StateRequested)
	}
}

func TestCreateHoldSurrendersHoldWhenDateRaceIsLost(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	winner, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("first RequestBooking: %v", err)
	}
	loser, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("second RequestBooking: %v", err)
	}

	// The competing booking takes the dates while the loser's processor
	// call is in flight, after the pre-call availability check passed.
	f.authority.onCreateHold = func() {
		f.authority.onCreateHold = nil
		f.repo.bookings[winner.ID].State = models.StateHoldCreated
	}

	_, _, err = f.svc.CreateHold(ctx, loser.ID)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}

	// The already-created processor hold is cancelled, not leaked.
	if f.authority.releaseCalls != 1 {
		t.Errorf("processor release calls = %d, want 1", f.authority.releaseCalls)
	}

	stored, err := f.repo.GetByID(ctx, loser.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateRequested || stored.Authorization != nil {
		t.Errorf("loser = %s with auth %v, want untouched REQUESTED", stored.State, stored.Authorization)
	}
}

func TestCaptureLosesCommitRaceToConcurrentRelease(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if _, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1"); err != nil {
		t.Fatalf("RecordAuthorization: %v", err)
	}

	// A release wins between the capture's state re-check and its commit.
	f.repo.beforeCommit = func() {
		f.repo.beforeCommit = nil
		f.repo.bookings[b.ID].State = models.StateReleased
	}

	_, err = f.svc.Capture(ctx, b.ID)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("got %v, want IllegalTransitionError", err)
	}

	stored, err := f.repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateReleased {
		t.Errorf("state = %s, want the winning %s", stored.State, models.StateReleased)
	}
}

func TestRecordAuthorizationRecoversWhenDuplicateWonCommit(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	// The webhook delivery commits the same authorization first; the
	// redirect path's commit loses but recognises the matching reference.
	f.repo.beforeCommit = func() {
		f.repo.beforeCommit = nil
		stored := f.repo.bookings[b.ID]
		stored.State = models.StateAuthorized
		stored.Authorization.Status = "authorized"
	}

	got, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1")
	if err != nil {
		t.Fatalf("RecordAuthorization after losing the commit: %v", err)
	}
	if got.State != models.StateAuthorized {
		t.Errorf("state = %s, want %s", got.State, models.StateAuthorized)
	}
	// The winning commit owns the notifications; the loser sends none.
	if n := f.dispatcher.countKind(models.NotifyGuestAuthorized); n != 0 {
		t.Errorf("guest_authorized notifications from the losing path = %d, want 0", n)
	}
}

func TestCaptureWithoutAuthorizationRecordFails(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if _, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1"); err != nil {
		t.Fatalf("RecordAuthorization: %v", err)
	}

	// Hand-edited store data: AUTHORIZED but the authorization is gone.
	f.repo.bookings[b.ID].Authorization = nil

	if _, err := f.svc.Capture(ctx, b.ID); err == nil {
		t.Fatal("Capture without an authorization record must fail, not panic")
	}
	if f.authority.captureCalls != 0 {
		t.Errorf("processor capture calls = %d, want 0", f.authority.captureCalls)
	}
}

func TestFullLifecycleCapturesExactlyOnce(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, err := f.svc.HostAccept(ctx, b.ID); err != nil {
		t.Fatalf("HostAccept: %v", err)
	}
	_, clientSecret, err := f.svc.CreateHold(ctx, b.ID)
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if clientSecret == "" {
		t.Error("CreateHold must surface the client secret")
	}
	if len(f.scheduler.scheduled) != 1 {
		t.Errorf("expiry watches scheduled = %d, want 1", len(f.scheduler.scheduled))
	}
	if _, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1"); err != nil {
		t.Fatalf("RecordAuthorization: %v", err)
	}
	confirmed, err := f.svc.Capture(ctx, b.ID)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if confirmed.State != models.StateConfirmed {
		t.Errorf("state = %s, want %s", confirmed.State, models.StateConfirmed)
	}

	// A repeated capture is a no-op, never a second charge.
	again, err := f.svc.Capture(ctx, b.ID)
	if err != nil {
		t.Fatalf("repeated Capture: %v", err)
	}
	if again.State != models.StateConfirmed {
		t.Errorf("repeated capture state = %s", again.State)
	}
	if f.authority.captureCalls != 1 {
		t.Errorf("processor capture calls = %d, want 1", f.authority.captureCalls)
	}
	if got := f.dispatcher.countKind(models.NotifyGuestCharged); got != 1 {
		t.Errorf("guest_charged notifications = %d, want 1", got)
	}
}

func TestInstantModeSkipsHostDecision(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	// No host notification in instant mode.
	if got := f.dispatcher.countKind(models.NotifyHostNewRequest); got != 0 {
		t.Errorf("host_new_request notifications = %d, want 0", got)
	}

	held, _, err := f.svc.CreateHold(ctx, b.ID)
	if err != nil {
		t.Fatalf("CreateHold from REQUESTED in instant mode: %v", err)
	}
	if held.State != models.StateHoldCreated {
		t.Errorf("state = %s, want %s", held.State, models.StateHoldCreated)
	}
}

func TestCreateHoldRequiresHostAcceptance(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	_, _, err = f.svc.CreateHold(ctx, b.ID)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("got %v, want IllegalTransitionError", err)
	}
	if f.authority.holdCalls != 0 {
		t.Errorf("processor hold calls = %d, want 0", f.authority.holdCalls)
	}
}

func TestCaptureFromRequestedIsIllegal(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	_, err = f.svc.Capture(ctx, b.ID)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("got %v, want IllegalTransitionError", err)
	}

	stored, err := f.repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateRequested {
		t.Errorf("state = %s, want unchanged %s", stored.State, models.StateRequested)
	}
	if f.authority.captureCalls != 0 {
		t.Errorf("processor capture calls = %d, want 0", f.authority.captureCalls)
	}
}

func TestCreateHoldProcessorFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, err := f.svc.HostAccept(ctx, b.ID); err != nil {
		t.Fatalf("HostAccept: %v", err)
	}

	f.authority.failHold = errors.New("processor unavailable")
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err == nil {
		t.Fatal("CreateHold must propagate the processor failure")
	}

	stored, err := f.repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateHostAccepted {
		t.Errorf("state after failed hold = %s, want %s", stored.State, models.StateHostAccepted)
	}

	// The same call succeeds once the processor recovers.
	f.authority.failHold = nil
	held, _, err := f.svc.CreateHold(ctx, b.ID)
	if err != nil {
		t.Fatalf("retried CreateHold: %v", err)
	}
	if held.State != models.StateHoldCreated {
		t.Errorf("state = %s, want %s", held.State, models.StateHoldCreated)
	}
}

func TestRecordAuthorizationIsIdempotent(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	// Redirect and webhook both deliver the same confirmation.
	if _, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1"); err != nil {
		t.Fatalf("first RecordAuthorization: %v", err)
	}
	if _, err := f.svc.RecordAuthorizationByRef(ctx, "pi_test_1"); err != nil {
		t.Fatalf("duplicate RecordAuthorizationByRef: %v", err)
	}

	if got := f.dispatcher.countKind(models.NotifyGuestAuthorized); got != 1 {
		t.Errorf("guest_authorized notifications = %d, want 1", got)
	}
	if got := f.dispatcher.countKind(models.NotifyOperatorAuthorized); got != 1 {
		t.Errorf("operator_authorized notifications = %d, want 1", got)
	}
}

func TestRecordAuthorizationRejectsMismatchedRef(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	_, err = f.svc.RecordAuthorization(ctx, b.ID, "pi_someone_else")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestExpiredHoldReleasesInsteadOfCapturing(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if _, err := f.svc.RecordAuthorization(ctx, b.ID, "pi_test_1"); err != nil {
		t.Fatalf("RecordAuthorization: %v", err)
	}

	// Clock passes the hold's expiry before the operator captures.
	f.now = f.authority.holdExpiry.Add(time.Hour)

	_, err = f.svc.Capture(ctx, b.ID)
	var expired *AuthorizationExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("got %v, want AuthorizationExpiredError", err)
	}
	if f.authority.captureCalls != 0 {
		t.Errorf("processor capture calls = %d, want 0", f.authority.captureCalls)
	}
	if f.authority.releaseCalls != 1 {
		t.Errorf("processor release calls = %d, want 1", f.authority.releaseCalls)
	}

	stored, err := f.repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.State != models.StateReleased {
		t.Errorf("state = %s, want %s", stored.State, models.StateReleased)
	}
}

func TestReleaseExpiredIsNoOpAfterTerminalState(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeInstant))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if _, _, err := f.svc.CreateHold(ctx, b.ID); err != nil {
		t.Fatalf("CreateHold: %v", err)
	}

	// Expiry fires without a capture: exactly one processor release.
	if err := f.svc.ReleaseExpired(ctx, b.ID); err != nil {
		t.Fatalf("ReleaseExpired: %v", err)
	}
	if err := f.svc.ReleaseExpired(ctx, b.ID); err != nil {
		t.Fatalf("repeated ReleaseExpired: %v", err)
	}
	if f.authority.releaseCalls != 1 {
		t.Errorf("processor release calls = %d, want 1", f.authority.releaseCalls)
	}
	if err := f.svc.ReleaseExpired(ctx, "missing-booking"); err != nil {
		t.Errorf("ReleaseExpired on a missing booking = %v, want nil", err)
	}
}

func TestHostDeclineIsTerminal(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	declined, err := f.svc.HostDecline(ctx, b.ID, "fully booked that week")
	if err != nil {
		t.Fatalf("HostDecline: %v", err)
	}
	if declined.State != models.StateHostDeclined {
		t.Errorf("state = %s, want %s", declined.State, models.StateHostDeclined)
	}
	if got := f.dispatcher.countKind(models.NotifyGuestDeclined); got != 1 {
		t.Errorf("guest_declined notifications = %d, want 1", got)
	}

	var illegal *IllegalTransitionError
	if _, err := f.svc.HostAccept(ctx, b.ID); !errors.As(err, &illegal) {
		t.Errorf("HostAccept after decline: got %v, want IllegalTransitionError", err)
	}
}

func TestAccessBookingRequiresReferenceAndEmail(t *testing.T) {
	f := newFixture(t, testOffer(models.ModeRequestToBook))
	ctx := context.Background()

	b, err := f.svc.RequestBooking(ctx, testRequest())
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	got, err := f.svc.AccessBooking(ctx, b.ConfirmationReference, "ANA@example.com")
	if err != nil {
		t.Fatalf("AccessBooking with matching email: %v", err)
	}
	if got.ConfirmationPIN != b.ConfirmationPIN {
		t.Error("possession-based access must return the PIN")
	}

	if _, err := f.svc.AccessBooking(ctx, b.ConfirmationReference, "wrong@example.com"); err != bookingRepo.ErrNotFound {
		t.Errorf("mismatched email: got %v, want ErrNotFound", err)
	}
}
