package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/refund"
)

// PaymentService wraps the Stripe client for checkout and refunds.
type PaymentService struct {
	enabled bool
}

// NewPaymentService configures the global Stripe key. An empty key
// disables payment calls, which then succeed as no-ops.
func NewPaymentService(secretKey string) *PaymentService {
	if secretKey == "" {
		log.Println("[Payments] Stripe key not configured, refunds disabled")
		return &PaymentService{}
	}
	stripe.Key = secretKey
	return &PaymentService{enabled: true}
}

// Enabled reports whether a Stripe key is configured.
func (s *PaymentService) Enabled() bool {
	return s.enabled
}

// CheckoutLine is one order line sent to Stripe checkout.
type CheckoutLine struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// CreateCheckoutSession opens a Stripe checkout session for the cart
// contents and returns its id and redirect URL.
func (s *PaymentService) CreateCheckoutSession(lines []CheckoutLine, currency, successURL, cancelURL string, metadata map[string]string) (string, string, error) {
	if !s.enabled {
		return "", "", fmt.Errorf("stripe is not configured")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currency)),
				UnitAmount: stripe.Int64(toMinorUnits(line.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SubmitType: stripe.String("pay"),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if len(metadata) > 0 {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{}
		for k, v := range metadata {
			params.AddMetadata(k, v)
			params.PaymentIntentData.AddMetadata(k, v)
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}

// CheckoutConfirmation is the verified outcome of a checkout session.
type CheckoutConfirmation struct {
	Paid            bool
	PaymentIntentID string
	Metadata        map[string]string
}

// ConfirmCheckoutSession retrieves a checkout session and reports
// whether Stripe has collected the payment.
func (s *PaymentService) ConfirmCheckoutSession(sessionID string) (*CheckoutConfirmation, error) {
	if !s.enabled {
		return nil, fmt.Errorf("stripe is not configured")
	}

	// Stray query parameters sneak in when the id was captured from a
	// redirect URL.
	if idx := strings.Index(sessionID, "?"); idx >= 0 {
		sessionID = sessionID[:idx]
	}

	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}

	confirmation := &CheckoutConfirmation{
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		confirmation.PaymentIntentID = sess.PaymentIntent.ID
	}
	return confirmation, nil
}

// Refund reverses the full charge behind paymentID and returns the
// Stripe refund id. Checkout session ids are resolved to their payment
// intent first.
func (s *PaymentService) Refund(paymentID string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	intentID, err := s.resolvePaymentIntent(paymentID)
	if err != nil {
		return "", err
	}

	r, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	})
	if err != nil {
		return "", err
	}
	log.Printf("[Payments] refund %s created with status %s", r.ID, r.Status)
	return r.ID, nil
}

// PartialRefund reverses amount of the charge for a single order line.
func (s *PaymentService) PartialRefund(paymentID string, amount float64, description string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	intentID, err := s.resolvePaymentIntent(paymentID)
	if err != nil {
		return "", err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if description != "" {
		params.AddMetadata("description", description)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", err
	}
	log.Printf("[Payments] partial refund %s of %.2f created with status %s", r.ID, amount, r.Status)
	return r.ID, nil
}

// resolvePaymentIntent accepts either a payment intent id or a checkout
// session id (cs_...) and returns the payment intent to refund against.
func (s *PaymentService) resolvePaymentIntent(paymentID string) (string, error) {
	if !strings.HasPrefix(paymentID, "cs_") {
		return paymentID, nil
	}

	// Stray query parameters sneak in when the id was captured from a
	// redirect URL.
	if idx := strings.Index(paymentID, "?"); idx >= 0 {
		paymentID = paymentID[:idx]
	}

	sess, err := session.Get(paymentID, nil)
	if err != nil {
		return "", fmt.Errorf("retrieve checkout session %s: %w", paymentID, err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return "", fmt.Errorf("checkout session %s has no payment intent", paymentID)
	}
	return sess.PaymentIntent.ID, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
