package biz

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/nriit/facultypubs/internal/objects"
)

const minYear = 1900

var (
	pagesPattern = regexp.MustCompile(`^[0-9-]+$`)
	// Spreadsheet cells may carry a numeric year as "2020.0".
	yearPattern = regexp.MustCompile(`^([0-9]+)(?:\.0+)?$`)
)

// Validator checks record fields. Now defaults to time.Now.
type Validator struct {
	AllowedDomains []string
	Now            func() time.Time
}

func NewValidator(domains []string) Validator {
	normalized := make([]string, 0, len(domains))

	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(d), "@")))
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	return Validator{AllowedDomains: normalized, Now: time.Now}
}

func (v Validator) currentYear() int {
	if v.Now == nil {
		return time.Now().Year()
	}

	return v.Now().Year()
}

// ValidateOwnerEmail requires an email and, when domains are configured, one of them.
func (v Validator) ValidateOwnerEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "Email is required")
	}

	if len(v.AllowedDomains) == 0 {
		return nil
	}

	parts := strings.Split(strings.ToLower(email), "@")
	if len(parts) != 2 {
		return invalid("email", fmt.Sprintf("Invalid email domain: %s. Please use your college email", email))
	}

	for _, d := range v.AllowedDomains {
		if parts[1] == d {
			return nil
		}
	}

	return invalid("email", fmt.Sprintf("Invalid email domain: %s. Please use your college email", email))
}

// ValidatePhone accepts exactly ten digits starting with 6, 7, 8 or 9.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) != 10 {
		return invalid("phone", "Invalid phone number")
	}

	for _, r := range phone {
		if r < '0' || r > '9' {
			return invalid("phone", "Invalid phone number")
		}
	}

	switch phone[0] {
	case '6', '7', '8', '9':
		return nil
	default:
		return invalid("phone", "Invalid phone number")
	}
}

// ParseYear converts a cell or JSON value into a year. Empty input yields nil.
// Strings must be plain decimal digits.
func ParseYear(raw any) (*int, error) {
	var (
		year int
		err  error
	)

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}

		m := yearPattern.FindStringSubmatch(s)
		if m == nil {
			return nil, invalid("year", "Year must be a valid number")
		}

		year, err = strconv.Atoi(m[1])
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, invalid("year", "Year must be a valid number")
		}

		year = int(v)
	case float32:
		return ParseYear(float64(v))
	case json.Number:
		return ParseYear(v.String())
	default:
		year, err = cast.ToIntE(raw)
	}

	if err != nil {
		return nil, invalid("year", "Year must be a valid number")
	}

	return &year, nil
}

// CheckYear bounds the year to 1900..current year.
func (v Validator) CheckYear(year int) error {
	current := v.currentYear()
	if year > current {
		return invalid("year", fmt.Sprintf("Year cannot be greater than %d", current))
	}

	if year < minYear {
		return invalid("year", fmt.Sprintf("Year must be %d or later", minYear))
	}

	return nil
}

// ValidatePages accepts digits and hyphens only.
func ValidatePages(pages string) error {
	if !pagesPattern.MatchString(strings.TrimSpace(pages)) {
		return invalid("pages", "Pages must contain only digits and hyphens")
	}

	return nil
}

// ValidateRecord checks the invariants every stored record satisfies.
func (v Validator) ValidateRecord(p objects.Publication) error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "Title is required")
	}

	if strings.TrimSpace(p.Email) == "" {
		return invalid("email", "Email is required")
	}

	if _, ok := objects.ParsePublicationType(string(p.PublicationType)); !ok {
		return invalid("publicationType", fmt.Sprintf("Unknown publication type: %s", p.PublicationType))
	}

	if _, ok := objects.ParseUGCApproval(string(p.UGCApproved)); !ok {
		return invalid("ugcApproved", "UGC Approved must be Yes or No")
	}

	if p.Phone != "" {
		if err := ValidatePhone(p.Phone); err != nil {
			return err
		}
	}

	if p.Year != nil {
		if err := v.CheckYear(*p.Year); err != nil {
			return err
		}
	}

	// Pages are only checked alongside a year; records without one keep pages as entered.
	if p.Year != nil && p.Pages != "" {
		if err := ValidatePages(p.Pages); err != nil {
			return err
		}
	}

	return nil
}

// normalize trims the identifying fields and canonicalizes the enums.
func normalize(p objects.Publication) objects.Publication {
	p.Title = strings.TrimSpace(p.Title)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Pages = strings.TrimSpace(p.Pages)

	if t, ok := objects.ParsePublicationType(string(p.PublicationType)); ok {
		p.PublicationType = t
	}

	if u, ok := objects.ParseUGCApproval(string(p.UGCApproved)); ok {
		p.UGCApproved = u
	}

	return p
}

func normalizePatch(patch objects.PublicationPatch) objects.PublicationPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}

		t := strings.TrimSpace(*v)

		return &t
	}

	patch.Title = trim(patch.Title)
	patch.Email = trim(patch.Email)
	patch.Phone = trim(patch.Phone)
	patch.Pages = trim(patch.Pages)

	if patch.PublicationType != nil {
		if t, ok := objects.ParsePublicationType(string(*patch.PublicationType)); ok {
			patch.PublicationType = &t
		}
	}

	if patch.UGCApproved != nil {
		if u, ok := objects.ParseUGCApproval(string(*patch.UGCApproved)); ok {
			patch.UGCApproved = &u
		}
	}

	return patch
}
