package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	regModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
)

func TestSignatureKeyMatchesKnownVector(t *testing.T) {
	// sha512("ORDER-1" + "200" + "10000.00" + "SB-key")
	got := SignatureKey("SB-key", "ORDER-1", "200", "10000.00")
	if len(got) != 128 {
		t.Fatalf("len = %d", len(got))
	}
	if !VerifySignature("SB-key", "ORDER-1", "200", "10000.00", strings.ToUpper(got)) {
		t.Fatal("upper-case hex signature rejected")
	}
	if VerifySignature("SB-key", "ORDER-1", "200", "10001.00", got) {
		t.Fatal("tampered amount accepted")
	}
	if VerifySignature("", "ORDER-1", "200", "10000.00", got) {
		t.Fatal("empty server key accepted")
	}
}

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct {
		tx, fraud string
		want      string
		ok        bool
	}{
		{"settlement", "", regModel.PaymentPaid, true},
		{"capture", "accept", regModel.PaymentPaid, true},
		{"capture", "challenge", "", false},
		{"refund", "", regModel.PaymentRefunded, true},
		{"partial_refund", "", regModel.PaymentRefunded, true},
		{"pending", "", "", false},
		{"expire", "", "", false},
	}
	for _, tc := range cases {
		got, ok := MapTransactionStatus(tc.tx, tc.fraud)
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s/%s = %q,%v want %q,%v", tc.tx, tc.fraud, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID("3f2504e0-4f89-11d3-9a0c-0305e82c3301", time.Unix(1700000000, 0))
	if id != "REG-3F2504E04F89-1700000000000" {
		t.Fatalf("order id = %q", id)
	}
	if len(id) > 50 {
		t.Fatalf("order id too long: %d", len(id))
	}
}

func TestNewGatewayWithoutKeyIsDisabled(t *testing.T) {
	gw := NewGateway(configs.MidtransConfig{})
	if _, ok := gw.(DisabledGateway); !ok {
		t.Fatalf("gateway = %T", gw)
	}
	if _, err := gw.CreateCheckout(context.Background(), CheckoutInput{}); !errors.Is(err, ErrGatewayDisabled) {
		t.Fatalf("err = %v", err)
	}
	if gw.VerifySignature("a", "b", "c", "d") {
		t.Fatal("disabled gateway accepted a signature")
	}
}

func TestSplitName(t *testing.T) {
	if f, l := splitName("  Ada  King Lovelace "); f != "Ada" || l != "King Lovelace" {
		t.Fatalf("got %q %q", f, l)
	}
	if f, l := splitName("Cher"); f != "Cher" || l != "" {
		t.Fatalf("got %q %q", f, l)
	}
}
