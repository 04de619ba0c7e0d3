package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"barbershop/internal/booking"
	"barbershop/internal/models"
	"barbershop/internal/store"
)

var fixedNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc      *BookingService
	bookings *stubBookings
	wallets  *stubWallets
	ledger   *stubLedger
	catalog  *stubCatalog
	hub      *stubHub
}

func newBookingFixture() *bookingFixture {
	bookings := &stubBookings{}
	wallets := newStubWallets()
	ledger := &stubLedger{wallets: wallets}
	catalog := &stubCatalog{services: map[string]models.Service{}}
	hub := newStubHub()
	svc := NewBookingService(fakeTxRunner{}, bookings, wallets, ledger, catalog, hub, testPolicy())
	svc.now = func() time.Time { return fixedNow }
	return &bookingFixture{svc: svc, bookings: bookings, wallets: wallets, ledger: ledger, catalog: catalog, hub: hub}
}

func TestReserveDebitsWalletAndSplitsPrice(t *testing.T) {
	f := newBookingFixture()
	f.catalog.services["svc-1"] = models.Service{ID: "svc-1", PriceMinor: 3500, Active: true}
	f.wallets.add("client-1", "w-1", 10000)

	created, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "client-1", StaffID: "staff-1", ServiceID: "svc-1",
		Date: "2026-09-02", SlotTime: "10:00",
	})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if created.PriceMinor != 3500 || created.Commission != 175 || created.StaffNet != 3325 {
		t.Fatalf("price split = %d/%d/%d, want 3500/175/3325",
			created.PriceMinor, created.Commission, created.StaffNet)
	}
	if created.Status != string(booking.StatusReserved) {
		t.Fatalf("status = %s, want reserved", created.Status)
	}
	if got := f.wallets.wallets["client-1"].Balance; got != 6500 {
		t.Fatalf("balance after reserve = %d, want 6500", got)
	}
	if len(f.ledger.appends) != 1 || f.ledger.appends[0].Kind != store.KindPayment {
		t.Fatalf("expected one payment ledger entry, got %+v", f.ledger.appends)
	}
	if f.ledger.entries[0].BalanceBefore != 10000 || f.ledger.entries[0].BalanceAfter != 6500 {
		t.Fatalf("entry balances = %d/%d, want 10000/6500",
			f.ledger.entries[0].BalanceBefore, f.ledger.entries[0].BalanceAfter)
	}
	if update, ok := f.hub.updates["client-1"]; !ok || update.Balance != "65.00" {
		t.Fatalf("expected balance broadcast 65.00, got %+v", f.hub.updates)
	}
}

func TestReserveRejectsSelfBooking(t *testing.T) {
	f := newBookingFixture()
	_, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "u-1", StaffID: "u-1", ServiceID: "svc-1",
		Date: "2026-09-02", SlotTime: "10:00",
	})
	if !errors.Is(err, ErrSelfBooking) {
		t.Fatalf("err = %v, want ErrSelfBooking", err)
	}
	if len(f.bookings.created) != 0 || len(f.ledger.appends) != 0 {
		t.Fatal("self-booking must not touch any store")
	}
}

func TestReserveRejectsSlotInsideLeadTime(t *testing.T) {
	f := newBookingFixture()
	// 10:15 is only 15 minutes out; the minimum lead time is 30.
	_, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "client-1", StaffID: "staff-1", ServiceID: "svc-1",
		Date: "2026-09-01", SlotTime: "10:15",
	})
	if !errors.Is(err, ErrPastSlot) {
		t.Fatalf("err = %v, want ErrPastSlot", err)
	}
}

func TestReserveUnknownService(t *testing.T) {
	f := newBookingFixture()
	f.wallets.add("client-1", "w-1", 10000)
	_, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "client-1", StaffID: "staff-1", ServiceID: "missing",
		Date: "2026-09-02", SlotTime: "10:00",
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
}

func TestReserveInsufficientFunds(t *testing.T) {
	f := newBookingFixture()
	f.catalog.services["svc-1"] = models.Service{ID: "svc-1", PriceMinor: 3500, Active: true}
	f.wallets.add("client-1", "w-1", 3499)

	_, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "client-1", StaffID: "staff-1", ServiceID: "svc-1",
		Date: "2026-09-02", SlotTime: "10:00",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(f.bookings.created) != 0 {
		t.Fatal("no booking row may be written without funds")
	}
	if got := f.wallets.wallets["client-1"].Balance; got != 3499 {
		t.Fatalf("balance changed to %d on a failed reserve", got)
	}
}

func TestReserveSlotAlreadyTaken(t *testing.T) {
	f := newBookingFixture()
	f.catalog.services["svc-1"] = models.Service{ID: "svc-1", PriceMinor: 3500, Active: true}
	f.wallets.add("client-1", "w-1", 10000)
	f.bookings.reservedHits = 1

	_, err := f.svc.Reserve(context.Background(), ReserveRequest{
		ClientID: "client-1", StaffID: "staff-1", ServiceID: "svc-1",
		Date: "2026-09-02", SlotTime: "10:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("err = %v, want ErrSlotTaken", err)
	}
	if len(f.ledger.appends) != 0 {
		t.Fatal("taken slot must not debit the wallet")
	}
}

func reservedBooking() models.Booking {
	return models.Booking{
		ID:         "b-1",
		ClientID:   "client-1",
		StaffID:    "staff-1",
		ServiceID:  "svc-1",
		Date:       "2026-09-02",
		SlotTime:   "10:00",
		PriceMinor: 5000,
		Commission: 250,
		StaffNet:   4750,
		Status:     string(booking.StatusReserved),
	}
}

func TestCompletePaysOutNetAndRecordsCommission(t *testing.T) {
	f := newBookingFixture()
	f.bookings.booking = reservedBooking()
	f.wallets.add("staff-1", "w-staff", 0)

	summary, err := f.svc.Complete(context.Background(), CompleteRequest{
		BookingID: "b-1", ActorID: "staff-1", ActorRole: models.RoleStaff,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if summary.StaffNet != 4750 || summary.Commission != 250 {
		t.Fatalf("summary = %+v, want 4750/250", summary)
	}
	if got := f.wallets.wallets["staff-1"].Balance; got != 4750 {
		t.Fatalf("staff balance = %d, want 4750", got)
	}
	if len(f.ledger.appends) != 2 {
		t.Fatalf("expected payout + commission entries, got %d", len(f.ledger.appends))
	}
	if f.ledger.appends[0].Kind != store.KindPayout || f.ledger.appends[1].Kind != store.KindCommission {
		t.Fatalf("entry kinds = %s/%s", f.ledger.appends[0].Kind, f.ledger.appends[1].Kind)
	}
	// The commission entry is informational: it must not move the balance.
	if f.ledger.entries[1].BalanceBefore != f.ledger.entries[1].BalanceAfter {
		t.Fatal("commission entry changed the balance")
	}
	if len(f.bookings.completed) != 1 || f.bookings.completed[0] != "b-1" {
		t.Fatalf("completed = %v", f.bookings.completed)
	}
}

func TestCompleteCreatesStaffWalletLazily(t *testing.T) {
	f := newBookingFixture()
	f.bookings.booking = reservedBooking()

	if _, err := f.svc.Complete(context.Background(), CompleteRequest{
		BookingID: "b-1", ActorID: "staff-1", ActorRole: models.RoleStaff,
	}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(f.wallets.created) != 1 || f.wallets.created[0] != "staff-1" {
		t.Fatalf("expected lazy wallet for staff-1, got %v", f.wallets.created)
	}
	if got := f.wallets.wallets["staff-1"].Balance; got != 4750 {
		t.Fatalf("staff balance = %d, want 4750", got)
	}
}

func TestCompleteForbiddenForOtherStaff(t *testing.T) {
	f := newBookingFixture()
	f.bookings.booking = reservedBooking()

	_, err := f.svc.Complete(context.Background(), CompleteRequest{
		BookingID: "b-1", ActorID: "staff-2", ActorRole: models.RoleStaff,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestCompleteAllowedForAdmin(t *testing.T) {
	f := newBookingFixture()
	f.bookings.booking = reservedBooking()
	f.wallets.add("staff-1", "w-staff", 0)

	if _, err := f.svc.Complete(context.Background(), CompleteRequest{
		BookingID: "b-1", ActorID: "admin-1", ActorRole: models.RoleAdmin,
	}); err != nil {
		t.Fatalf("Complete as admin: %v", err)
	}
}

func TestCompleteRejectsTerminalStates(t *testing.T) {
	f := newBookingFixture()
	b := reservedBooking()
	b.Status = string(booking.StatusCompleted)
	f.bookings.booking = b

	_, err := f.svc.Complete(context.Background(), CompleteRequest{
		BookingID: "b-1", ActorID: "staff-1", ActorRole: models.RoleStaff,
	})
	if !errors.Is(err, booking.ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if len(f.ledger.appends) != 0 {
		t.Fatal("double completion must not pay out twice")
	}
}

func TestCancelEarlyRefundsFullPrice(t *testing.T) {
	f := newBookingFixture()
	b := reservedBooking()
	b.Date = "2026-09-03" // well outside the late window
	f.bookings.booking = b
	f.wallets.add("client-1", "w-1", 0)

	summary, err := f.svc.Cancel(context.Background(), CancelRequest{
		BookingID: "b-1", ActorID: "client-1", ActorRole: models.RoleClient,
	})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if summary.FeeApplied || summary.Fee != 0 || summary.Refund != 5000 {
		t.Fatalf("summary = %+v, want full 5000 refund", summary)
	}
	if got := f.wallets.wallets["client-1"].Balance; got != 5000 {
		t.Fatalf("balance = %d, want 5000", got)
	}
	if len(f.ledger.appends) != 1 || f.ledger.appends[0].Kind != store.KindRefund {
		t.Fatalf("expected single refund entry, got %+v", f.ledger.appends)
	}
	if f.bookings.cancelReason != "Cancelled by user" {
		t.Fatalf("reason = %q", f.bookings.cancelReason)
	}
}

func TestCancelInsideWindowKeepsFee(t *testing.T) {
	f := newBookingFixture()
	b := reservedBooking()
	b.PriceMinor = 4000
	b.Date = "2026-09-01"
	b.SlotTime = "11:00" // one hour out, threshold is two
	f.bookings.booking = b
	f.wallets.add("client-1", "w-1", 0)

	summary, err := f.svc.Cancel(context.Background(), CancelRequest{
		BookingID: "b-1", ActorID: "client-1", ActorRole: models.RoleClient,
		Reason: "running late",
	})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !summary.FeeApplied || summary.Fee != 400 || summary.Refund != 3600 {
		t.Fatalf("summary = %+v, want fee 400 refund 3600", summary)
	}
	if got := f.wallets.wallets["client-1"].Balance; got != 3600 {
		t.Fatalf("balance = %d, want 3600", got)
	}
	if len(f.ledger.appends) != 2 || f.ledger.appends[1].Kind != store.KindLateFee {
		t.Fatalf("expected refund + late-fee entries, got %+v", f.ledger.appends)
	}
	if f.ledger.entries[1].BalanceBefore != f.ledger.entries[1].BalanceAfter {
		t.Fatal("late-fee entry changed the balance")
	}
	if f.bookings.cancelReason != "running late" {
		t.Fatalf("reason = %q", f.bookings.cancelReason)
	}
}

func TestCancelForbiddenForStranger(t *testing.T) {
	f := newBookingFixture()
	f.bookings.booking = reservedBooking()

	_, err := f.svc.Cancel(context.Background(), CancelRequest{
		BookingID: "b-1", ActorID: "client-2", ActorRole: models.RoleClient,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestCancelRejectsCancelledBooking(t *testing.T) {
	f := newBookingFixture()
	b := reservedBooking()
	b.Status = string(booking.StatusCancelled)
	f.bookings.booking = b

	_, err := f.svc.Cancel(context.Background(), CancelRequest{
		BookingID: "b-1", ActorID: "client-1", ActorRole: models.RoleClient,
	})
	if !errors.Is(err, booking.ErrAlreadyCancelled) {
		t.Fatalf("err = %v, want ErrAlreadyCancelled", err)
	}
	if len(f.ledger.appends) != 0 {
		t.Fatal("double cancel must not refund twice")
	}
}

func TestRateShareRounding(t *testing.T) {
	cases := []struct {
		amount int64
		rate   int64
		want   int64
	}{
		{3500, 5, 175},
		{4000, 10, 400},
		{999, 5, 50},
		{1010, 5, 50}, // 50.5 rounds half-to-even down
	}
	for _, tc := range cases {
		if got := rateShare(tc.amount, percent(tc.rate)); got != tc.want {
			t.Errorf("rateShare(%d, %d%%) = %d, want %d", tc.amount, tc.rate, got, tc.want)
		}
	}
}
