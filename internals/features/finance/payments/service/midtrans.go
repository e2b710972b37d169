package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	regModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
)

var ErrGatewayDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "payment gateway is not configured")

/* =========================================================
   Gateway
========================================================= */

// Gateway opens hosted checkouts and authenticates their notifications.
type Gateway interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type CheckoutInput struct {
	OrderID  string
	Amount   int64
	ItemID   string
	ItemName string
	Customer CustomerInput
}

type CustomerInput struct {
	FullName string
	Email    string
	Phone    string
}

type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// NewGateway builds a Snap client, or a disabled gateway when no server key is set.
func NewGateway(cfg configs.MidtransConfig) Gateway {
	if strings.TrimSpace(cfg.ServerKey) == "" {
		return DisabledGateway{}
	}
	env := midtrans.Sandbox
	if cfg.UseProduction {
		env = midtrans.Production
	}
	g := &SnapGateway{serverKey: cfg.ServerKey}
	g.client.New(cfg.ServerKey, env)
	return g
}

type SnapGateway struct {
	client    snap.Client
	serverKey string
}

func (g *SnapGateway) CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.Amount <= 0 {
		return nil, errors.New("checkout amount must be positive")
	}
	if in.OrderID == "" {
		return nil, errors.New("order id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first, last := splitName(in.Customer.FullName)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID,
			GrossAmt: in.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: in.Customer.Email,
			Phone: in.Customer.Phone,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		Items: &[]midtrans.ItemDetails{{
			ID:       truncate(in.ItemID, 50),
			Price:    in.Amount,
			Qty:      1,
			Name:     truncate(defaultString(in.ItemName, "Course registration"), 50),
			Category: "course",
		}},
	}

	resp, merr := g.client.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans: %s", merr.Message)
	}
	return &CheckoutResult{OrderID: in.OrderID, Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks SHA512(order_id + status_code + gross_amount + server_key).
func (g *SnapGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return VerifySignature(g.serverKey, orderID, statusCode, grossAmount, signature)
}

func VerifySignature(serverKey, orderID, statusCode, grossAmount, signature string) bool {
	if serverKey == "" || signature == "" {
		return false
	}
	want := SignatureKey(serverKey, orderID, statusCode, grossAmount)
	got := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func SignatureKey(serverKey, orderID, statusCode, grossAmount string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

type DisabledGateway struct{}

func (DisabledGateway) CreateCheckout(context.Context, CheckoutInput) (*CheckoutResult, error) {
	return nil, ErrGatewayDisabled
}

func (DisabledGateway) VerifySignature(string, string, string, string) bool { return false }

/* =========================================================
   Status mapping
========================================================= */

// MapTransactionStatus turns a Midtrans transaction/fraud status pair into a registration
// payment status. ok is false for notifications that do not move the payment.
func MapTransactionStatus(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		// card payments: only an accepted capture is money in
		if strings.ToLower(fraudStatus) == "accept" {
			return regModel.PaymentPaid, true
		}
		return "", false
	case "settlement":
		return regModel.PaymentPaid, true
	case "refund", "partial_refund":
		return regModel.PaymentRefunded, true
	}
	return "", false
}

// NewOrderID is unique per checkout attempt and fits Midtrans' 50 char limit.
func NewOrderID(registrationID string, now time.Time) string {
	short := strings.ReplaceAll(registrationID, "-", "")
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("REG-%s-%d", strings.ToUpper(short), now.UnixNano()/int64(time.Millisecond))
}

/* =========================================================
   Utils
========================================================= */

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultString(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}
