package sources

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// DefaultAllowedDomains is the built-in allow-list of travel content sites
// the selector will hand to the extractor. Scraping is restricted to these
// registrable domains so search results can't steer us to arbitrary URLs.
var DefaultAllowedDomains = []string{
	"tripadvisor.com",
	"lonelyplanet.com",
	"timeout.com",
	"atlasobscura.com",
	"wikivoyage.org",
	"wikitravel.org",
	"viator.com",
	"getyourguide.com",
	"culturetrip.com",
	"yelp.com",
}

// Allowlist answers whether a candidate URL belongs to a pre-approved
// registrable domain.
type Allowlist struct {
	domains map[string]struct{}
}

func NewAllowlist(domains []string) *Allowlist {
	m := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			m[d] = struct{}{}
		}
	}
	return &Allowlist{domains: m}
}

// Allows reports whether rawURL uses http or https and lives under an
// allow-listed registrable domain. Subdomains of an allowed domain are
// allowed.
func (a *Allowlist) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	registrable, err := publicsuffix.Domain(host)
	if err != nil {
		return false
	}
	_, ok := a.domains[registrable]
	return ok
}
