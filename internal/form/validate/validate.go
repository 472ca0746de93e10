// Package validate implements the per-field and whole-form checks for the
// applicant step. All messages are German-locale user-facing text.
package validate

import (
	"regexp"
	"strings"

	"grundbuch-workers/internal/models"
)

// FieldError is the per-field verdict. Zero value means the field passed.
type FieldError struct {
	HasError bool   `json:"hasError"`
	Message  string `json:"message"`
}

const RequiredMessage = "Dieses Feld ist erforderlich."

var (
	houseNumberRe = regexp.MustCompile(`^[1-9]\d{0,3}[a-zA-Z]?(-[1-9]\d{0,3}[a-zA-Z]?)?$`)
	zipCodeRe     = regexp.MustCompile(`^\d{5}$`)
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe       = regexp.MustCompile(`^(\+49|0049|0)[1-9]\d{6,14}$`)
	digitRe       = regexp.MustCompile(`\d`)
	phoneStripRe  = regexp.MustCompile(`[\s\-()]`)
)

// Field validates a single raw value. Pure and deterministic; an empty
// value passes here (required checks live in Form).
func Field(name, value string) FieldError {
	switch name {
	case "companyName":
		if len([]rune(value)) < 2 {
			return fail("Bitte geben Sie einen gültigen Firmennamen ein.")
		}

	case "firstName":
		if len([]rune(value)) < 2 || digitRe.MatchString(value) {
			return fail("Bitte geben Sie einen gültigen Vornamen ein.")
		}

	case "lastName":
		if len([]rune(value)) < 2 || digitRe.MatchString(value) {
			return fail("Bitte geben Sie einen gültigen Nachnamen ein.")
		}

	case "street":
		if len([]rune(value)) < 2 {
			return fail("Bitte geben Sie einen gültigen Straßennamen ein.")
		}

	case "houseNumber":
		if !houseNumberRe.MatchString(value) {
			return fail("Bitte geben Sie eine gültige Hausnummer ein.")
		}

	case "zipCode":
		if !zipCodeRe.MatchString(value) {
			return fail("Bitte geben Sie eine gültige Postleitzahl ein.")
		}

	case "city":
		if len([]rune(value)) < 2 || digitRe.MatchString(value) {
			return fail("Bitte geben Sie einen gültigen Ortsnamen ein.")
		}

	case "email":
		if !emailRe.MatchString(value) {
			return fail("Bitte geben Sie eine gültige E-Mail-Adresse ein.")
		}

	case "phone":
		cleaned := phoneStripRe.ReplaceAllString(value, "")
		if value != "" && !phoneRe.MatchString(cleaned) {
			return fail("Bitte geben Sie eine gültige Telefonnummer ein.")
		}
	}
	return FieldError{}
}

// Form runs the whole-form check for the applicant step. Empty required
// fields get the required message; any non-empty value (including the
// optional phone) gets the format check, and the format message wins when
// both would apply.
func Form(values map[string]string, customerType models.CustomerType) (bool, map[string]FieldError) {
	errs := map[string]FieldError{}
	required := []string{"firstName", "lastName", "street", "houseNumber", "zipCode", "city", "email"}
	if customerType == models.CustomerTypeBusiness {
		required = append(required, "companyName")
	}

	valid := true

	for _, field := range required {
		value := values[field]

		if value == "" {
			errs[field] = FieldError{HasError: true, Message: RequiredMessage}
			valid = false
			continue
		}

		if fe := Field(field, value); fe.HasError {
			errs[field] = fe
			valid = false
		}
	}

	if phone := values["phone"]; phone != "" {
		if fe := Field("phone", phone); fe.HasError {
			errs["phone"] = fe
			valid = false
		}
	}

	return valid, errs
}

// Applicant validates a populated applicant record.
func Applicant(a models.Applicant) (bool, map[string]FieldError) {
	return Form(map[string]string{
		"companyName": a.CompanyName,
		"firstName":   a.FirstName,
		"lastName":    a.LastName,
		"street":      a.Street,
		"houseNumber": a.HouseNumber,
		"zipCode":     a.ZipCode,
		"city":        a.City,
		"phone":       a.Phone,
		"email":       a.Email,
	}, a.CustomerType)
}

// Details enforces the free-text invariants of the details step: when a
// selector is "sonstiges" the free text is required and capped.
func Details(d models.ApplicationDetails) (bool, map[string]FieldError) {
	errs := map[string]FieldError{}
	valid := true

	if d.Purpose == models.PurposeSonstiges {
		switch {
		case strings.TrimSpace(d.OtherPurpose) == "":
			errs["otherPurpose"] = FieldError{HasError: true, Message: RequiredMessage}
			valid = false
		case len([]rune(d.OtherPurpose)) > models.OtherPurposeMaxLen:
			errs["otherPurpose"] = fail("Bitte geben Sie einen gültigen Verwendungszweck ein.")
			valid = false
		}
	}

	if d.LegalInterest == models.InterestSonstiges {
		switch {
		case strings.TrimSpace(d.OtherInterest) == "":
			errs["otherInterest"] = FieldError{HasError: true, Message: RequiredMessage}
			valid = false
		case len([]rune(d.OtherInterest)) > models.OtherInterestMaxLen:
			errs["otherInterest"] = fail("Bitte geben Sie ein gültiges berechtigtes Interesse ein.")
			valid = false
		}
	}

	return valid, errs
}

// TruncateOtherPurpose applies the input cap the form applies while typing.
func TruncateOtherPurpose(value string) string {
	return truncate(value, models.OtherPurposeMaxLen)
}

// TruncateOtherInterest applies the input cap the form applies while typing.
func TruncateOtherInterest(value string) string {
	return truncate(value, models.OtherInterestMaxLen)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func fail(message string) FieldError {
	return FieldError{HasError: true, Message: message}
}
