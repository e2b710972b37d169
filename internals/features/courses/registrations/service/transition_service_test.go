package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
)

func TestUpdateStatusIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 3)
	ctx := context.Background()

	reg, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("ada"), testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := UpdateStatus(ctx, db, reg.RegistrationID, model.StatusApproved)
		if err != nil {
			t.Fatalf("approve #%d: %v", i, err)
		}
		if got.RegistrationStatus != model.StatusApproved {
			t.Fatalf("status = %s", got.RegistrationStatus)
		}
	}
	if got := seatsTaken(t, db, c); got != 1 {
		t.Fatalf("seats taken = %d after repeated approvals, want 1", got)
	}
}

func TestUpdateStatusRejectReleasesSeat(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 1)
	ctx := context.Background()

	first, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("first"), testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := UpdateStatus(ctx, db, first.RegistrationID, model.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := seatsTaken(t, db, c); got != 0 {
		t.Fatalf("seats taken = %d after reject, want 0", got)
	}

	// the freed seat goes to someone else
	second, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("second"), testNow)
	if err != nil {
		t.Fatalf("admit second: %v", err)
	}

	// bringing the first one back must not overbook
	if _, err := UpdateStatus(ctx, db, first.RegistrationID, model.StatusPending); !errors.Is(err, ErrSeatsUnavailable) {
		t.Fatalf("reactivate on full course: err = %v, want ErrSeatsUnavailable", err)
	}
	if got := countHolders(t, db, c); got != 1 {
		t.Fatalf("holders = %d, want 1", got)
	}

	if _, err := UpdateStatus(ctx, db, second.RegistrationID, model.StatusRejected); err != nil {
		t.Fatalf("reject second: %v", err)
	}
	if _, err := UpdateStatus(ctx, db, first.RegistrationID, model.StatusApproved); err != nil {
		t.Fatalf("reactivate after seat freed: %v", err)
	}
	if got := seatsTaken(t, db, c); got != 1 {
		t.Fatalf("seats taken = %d, want 1", got)
	}
}

func TestUpdatePaymentStampsDateOnEachMoveToPaid(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 2)
	ctx := context.Background()

	reg, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("ada"), testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	paidAt := testNow.Add(time.Hour)
	got, err := UpdatePayment(ctx, db, reg.RegistrationID, model.PaymentPaid, paidAt)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if got.RegistrationPaymentDate == nil || !got.RegistrationPaymentDate.Equal(paidAt) {
		t.Fatalf("payment date = %v, want %v", got.RegistrationPaymentDate, paidAt)
	}

	again, err := UpdatePayment(ctx, db, reg.RegistrationID, model.PaymentPaid, paidAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("pay again: %v", err)
	}
	if again.RegistrationPaymentDate == nil || !again.RegistrationPaymentDate.Equal(paidAt) {
		t.Fatalf("repeat moved payment date to %v", again.RegistrationPaymentDate)
	}

	refunded, err := UpdatePayment(ctx, db, reg.RegistrationID, model.PaymentRefunded, paidAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.RegistrationPaymentStatus != model.PaymentRefunded {
		t.Fatalf("payment status = %s", refunded.RegistrationPaymentStatus)
	}

	// paying again after a refund is a new payment
	repaidAt := paidAt.Add(72 * time.Hour)
	repaid, err := UpdatePayment(ctx, db, reg.RegistrationID, model.PaymentPaid, repaidAt)
	if err != nil {
		t.Fatalf("repay: %v", err)
	}
	if repaid.RegistrationPaymentDate == nil || !repaid.RegistrationPaymentDate.Equal(repaidAt) {
		t.Fatalf("repaid payment date = %v, want %v", repaid.RegistrationPaymentDate, repaidAt)
	}

	stored, err := GetRegistration(ctx, db, reg.RegistrationID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.RegistrationPaymentDate == nil || !stored.RegistrationPaymentDate.Equal(repaidAt) {
		t.Fatalf("stored payment date = %v, want %v", stored.RegistrationPaymentDate, repaidAt)
	}
}

func TestUpdatePaymentByReference(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 2)
	ctx := context.Background()

	reg, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("ada"), testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if err := SetPaymentReference(ctx, db, reg.RegistrationID, "REG-ABC-1"); err != nil {
		t.Fatalf("set reference: %v", err)
	}

	got, err := UpdatePaymentByReference(ctx, db, "REG-ABC-1", model.PaymentPaid, testNow)
	if err != nil {
		t.Fatalf("by reference: %v", err)
	}
	if got.RegistrationID != reg.RegistrationID || got.RegistrationPaymentStatus != model.PaymentPaid {
		t.Fatalf("unexpected registration %+v", got)
	}

	if _, err := UpdatePaymentByReference(ctx, db, "REG-UNKNOWN", model.PaymentPaid, testNow); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("unknown reference: err = %v", err)
	}
}

func TestDeleteRegistrationReleasesSeat(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 1)
	ctx := context.Background()

	reg, err := EvaluateRegistration(ctx, db, c.CourseID, applicant("ada"), testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := DeleteRegistration(ctx, db, reg.RegistrationID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := seatsTaken(t, db, c); got != 0 {
		t.Fatalf("seats taken = %d, want 0", got)
	}
	if _, err := GetRegistration(ctx, db, reg.RegistrationID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("get deleted: err = %v", err)
	}
	if _, err := DeleteRegistration(ctx, db, uuid.New()); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("delete unknown: err = %v", err)
	}
}
