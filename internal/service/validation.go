package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "IN"
)

// Social networks a business profile may link to.
const (
	NetworkFacebook  = "facebook"
	NetworkInstagram = "instagram"
	NetworkTwitter   = "twitter"
	NetworkLinkedIn  = "linkedin"
)

var allowedSocialDomains = map[string]string{
	"facebook.com":  NetworkFacebook,
	"fb.com":        NetworkFacebook,
	"instagram.com": NetworkInstagram,
	"twitter.com":   NetworkTwitter,
	"x.com":         NetworkTwitter,
	"linkedin.com":  NetworkLinkedIn,
}

var (
	errInvalidEmail = errors.New("must be a valid email address")
	errInvalidPhone = errors.New("must be a valid phone number")
	errInvalidURL   = errors.New("must be a valid http(s) URL")
)

// ContactValidator normalizes the contact fields of a business.
type ContactValidator struct {
	DefaultRegion string
}

// NewContactValidator builds a validator that parses local phone numbers in
// defaultRegion.
func NewContactValidator(defaultRegion string) *ContactValidator {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactValidator{DefaultRegion: region}
}

// Email lower-cases the address and converts its domain to ASCII.
func (v *ContactValidator) Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", errInvalidEmail
	}
	local, domain := email[:at], email[at+1:]
	if !isDomainValid(domain) {
		return "", errInvalidEmail
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", errInvalidEmail
	}
	email = local + "@" + asciiDomain
	if !emailPattern.MatchString(email) {
		return "", errInvalidEmail
	}
	return email, nil
}

// Phone returns the number in E.164 form.
func (v *ContactValidator) Phone(raw string) (string, error) {
	normalized := normalizePhone(raw, v.DefaultRegion)
	if normalized == "" {
		return "", errInvalidPhone
	}
	return normalized, nil
}

// Website validates a homepage URL. Scheme-less input is assumed https.
func (v *ContactValidator) Website(raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	stripTracking(u)
	return u.String(), nil
}

// SocialProfile validates that raw points at the given network.
func (v *ContactValidator) SocialProfile(network, raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	hostNetwork, ok := hostMatchesAllowed(u.Hostname())
	if !ok || hostNetwork != network {
		return "", errors.New("must be a " + network + " URL")
	}
	stripTracking(u)
	return u.String(), nil
}

func hostMatchesAllowed(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, network := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return network, true
		}
	}
	return "", false
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errInvalidURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errInvalidURL
	}
	if !isDomainValid(strings.ToLower(u.Hostname())) {
		return nil, errInvalidURL
	}
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
