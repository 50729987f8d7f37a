package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"procure/internal/models"
)

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns ve as an error, or nil when nothing was recorded.
func (ve *ValidationErrors) Err() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateEnum checks a field is one of allowed values.
func ValidateEnum(ve *ValidationErrors, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ValidateDate checks a field is a valid date (YYYY-MM-DD).
func ValidateDate(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		ve.Add(field, "must be a valid date (YYYY-MM-DD)")
	}
}

func finite(ve *ValidationErrors, field string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		ve.Add(field, "must be a finite number")
		return false
	}
	return true
}

// ValidatePositiveFloat checks a field is > 0.
func ValidatePositiveFloat(ve *ValidationErrors, field string, value float64) {
	if finite(ve, field, value) && value <= 0 {
		ve.Add(field, "must be a positive number")
	}
}

// ValidateNonNegativeFloat checks a field is >= 0.
func ValidateNonNegativeFloat(ve *ValidationErrors, field string, value float64) {
	if finite(ve, field, value) && value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// ValidateFloatRange checks a field is within a specified range.
func ValidateFloatRange(ve *ValidationErrors, field string, value, min, max float64) {
	if finite(ve, field, value) && (value < min || value > max) {
		ve.Add(field, fmt.Sprintf("must be between %.2f and %.2f", min, max))
	}
}

// ValidatePercentage checks a value is a valid percentage (0-100).
func ValidatePercentage(ve *ValidationErrors, field string, value float64) {
	if finite(ve, field, value) && (value < 0 || value > 100) {
		ve.Add(field, "must be between 0 and 100")
	}
}

// Maximum value constants to keep inputs in a sane range.
const (
	MaxQuantity     = 1000000000.0
	MaxPrice        = 1000000000000.0
	MaxLeadTimeDays = 730
	MaxRate         = 1.0
)

// ValidateMaxQuantity checks quantity doesn't exceed reasonable maximum.
func ValidateMaxQuantity(ve *ValidationErrors, field string, value float64) {
	if value > MaxQuantity {
		ve.Add(field, fmt.Sprintf("exceeds maximum allowed quantity of %.0f", MaxQuantity))
	}
}

// ValidateTolerance checks a tolerance percentage. Tolerances above 100
// are allowed; they only widen the accepted band.
func ValidateTolerance(ve *ValidationErrors, field string, value float64) {
	ValidateNonNegativeFloat(ve, field, value)
}

// ValidateRate checks a fractional tax or withholding rate.
func ValidateRate(ve *ValidationErrors, field string, value float64) {
	ValidateFloatRange(ve, field, value, 0, MaxRate)
}

// ValidateWeights checks scoring weights are non-negative. All-zero weights
// are valid and score every bid 0.
func ValidateWeights(ve *ValidationErrors, w models.Weights) {
	ValidateNonNegativeFloat(ve, "weights.price", w.Price)
	ValidateNonNegativeFloat(ve, "weights.lead_time", w.LeadTime)
	ValidateNonNegativeFloat(ve, "weights.quality", w.Quality)
}

// ValidateBid checks the fields scoring depends on. A zero or negative
// price or lead time would make the relative scores undefined.
func ValidateBid(ve *ValidationErrors, prefix string, b models.Bid) {
	RequireField(ve, prefix+"rfq_line_id", b.RFQLineID)
	RequireField(ve, prefix+"vendor_id", b.VendorID)
	ValidatePositiveFloat(ve, prefix+"price", b.Price)
	ValidatePositiveFloat(ve, prefix+"lead_time_days", b.LeadTimeDays)
	if b.LeadTimeDays > MaxLeadTimeDays {
		ve.Add(prefix+"lead_time_days", fmt.Sprintf("must not exceed %d", MaxLeadTimeDays))
	}
}

// ValidateAward checks an award against the requested quantity of its line.
// Awarding less than requested is allowed.
func ValidateAward(ve *ValidationErrors, prefix string, a models.Award, requestedQty float64) {
	RequireField(ve, prefix+"rfq_line_id", a.RFQLineID)
	RequireField(ve, prefix+"vendor_id", a.VendorID)
	ValidatePositiveFloat(ve, prefix+"awarded_qty", a.AwardedQty)
	if requestedQty > 0 && a.AwardedQty > requestedQty {
		ve.Add(prefix+"awarded_qty", fmt.Sprintf("must not exceed requested quantity %g", requestedQty))
	}
}

// ValidateInvoiceLine checks a billed line.
func ValidateInvoiceLine(ve *ValidationErrors, prefix string, l models.InvoiceLine) {
	ValidateNonNegativeFloat(ve, prefix+"quantity", l.Quantity)
	ValidateMaxQuantity(ve, prefix+"quantity", l.Quantity)
	ValidateNonNegativeFloat(ve, prefix+"price", l.Price)
	if l.Price > MaxPrice {
		ve.Add(prefix+"price", fmt.Sprintf("exceeds maximum allowed price of %.0f", MaxPrice))
	}
}
