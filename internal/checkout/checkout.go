// Package checkout validates the shipping and payment form and completes an
// order by clearing the cart. There is no payment gateway and no order
// record: a valid submission ends in a confirmation state only.
package checkout

import (
	"context"
	"regexp"
	"strings"

	apperrors "github.com/urbanhaven/storefront/internal/platform/errors"
)

// Form is the checkout form as submitted.
type Form struct {
	Name       string
	Email      string
	Address    string
	City       string
	Zip        string
	CardNumber string
	Expiry     string
	CVV        string
}

// Field names used as keys in validation results.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldZip        = "zip"
	FieldCardNumber = "cardNumber"
	FieldExpiry     = "expiry"
	FieldCVV        = "cvv"
)

var (
	emailPattern  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// Normalize applies the per-field input formatting: payment fields keep
// digits only and are capped at their expected length, the card number is
// grouped in fours, and the expiry gains its MM/YY slash.
func Normalize(field, value string) string {
	switch field {
	case FieldCardNumber:
		digits := clampDigits(value, 16)
		var groups []string
		for len(digits) > 4 {
			groups = append(groups, digits[:4])
			digits = digits[4:]
		}
		if digits != "" {
			groups = append(groups, digits)
		}
		return strings.Join(groups, " ")
	case FieldExpiry:
		digits := clampDigits(value, 4)
		if len(digits) >= 3 {
			return digits[:2] + "/" + digits[2:]
		}
		return digits
	case FieldCVV:
		return clampDigits(value, 4)
	case FieldZip:
		return clampDigits(value, 5)
	default:
		return value
	}
}

func clampDigits(value string, max int) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) > max {
		digits = digits[:max]
	}
	return digits
}

// Validate checks the form and returns a localization key per failed field.
// An empty map means the form is valid.
func Validate(form Form) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(form.Name) == "" {
		errs[FieldName] = "checkout.error.name_required"
	}
	if !emailPattern.MatchString(form.Email) {
		errs[FieldEmail] = "checkout.error.email_required"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs[FieldAddress] = "checkout.error.address_required"
	}
	if strings.TrimSpace(form.City) == "" {
		errs[FieldCity] = "checkout.error.city_required"
	}
	if len(nonDigits.ReplaceAllString(form.Zip, "")) != 5 {
		errs[FieldZip] = "checkout.error.zip_required"
	}
	if len(nonDigits.ReplaceAllString(form.CardNumber, "")) != 16 {
		errs[FieldCardNumber] = "checkout.error.card_required"
	}
	if !expiryPattern.MatchString(form.Expiry) {
		errs[FieldExpiry] = "checkout.error.expiry_required"
	}
	if cvv := nonDigits.ReplaceAllString(form.CVV, ""); len(cvv) < 3 || len(cvv) > 4 {
		errs[FieldCVV] = "checkout.error.cvv_required"
	}

	return errs
}

// CartClearer empties the shopping cart after a successful submission.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// Service completes checkout submissions.
type Service struct {
	cart CartClearer
}

// NewService returns a checkout service clearing the provided cart.
func NewService(cart CartClearer) *Service {
	return &Service{cart: cart}
}

// Submit validates the form and clears the cart on success. Validation
// failures are returned as a field-to-key map alongside a typed error; the
// cart is only touched when the form is valid.
func (s *Service) Submit(ctx context.Context, form Form) (map[string]string, error) {
	if errs := Validate(form); len(errs) > 0 {
		return errs, apperrors.E(apperrors.KindInvalidInput, "checkout form is invalid")
	}
	if err := s.cart.Clear(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}
