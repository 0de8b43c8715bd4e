package profiles

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/types"
)

// FieldSelectors lists candidate CSS selectors for each profile field, in priority order.
type FieldSelectors struct {
	Name     []string
	Title    []string
	Company  []string
	Location []string
}

// personScope matches schema.org Person microdata containers.
const personScope = `[itemtype*="schema.org/Person"]`

// SelectorsFor returns the field selectors for a platform.
func SelectorsFor(platform fetch.Platform) FieldSelectors {
	switch platform {
	case fetch.PlatformLinkedIn:
		return FieldSelectors{
			Name: []string{
				"h1.top-card-layout__title",
				"h1.text-heading-xlarge",
				".pv-text-details__left-panel h1",
			},
			Title: []string{
				"h2.top-card-layout__headline",
				".pv-text-details__left-panel .text-body-medium",
				"div.text-body-medium.break-words",
			},
			Company: []string{
				`[data-section="currentPositionsDetails"] .top-card-link__description`,
				".top-card-link--current-company span",
				`button[aria-label^="Current company"] div`,
				".pv-text-details__right-panel li:first-child",
			},
			Location: []string{
				".top-card-layout__first-subline .top-card__subline-item:first-child",
				".top-card__subline-item",
				"span.text-body-small.inline.t-black--light.break-words",
			},
		}
	case fetch.PlatformGitHub:
		return FieldSelectors{
			Name: []string{
				`span[itemprop="name"]`,
				"span.p-name",
			},
			Title: []string{
				"div.p-note",
				".user-profile-bio",
				`span[itemprop="additionalName"]`,
			},
			Company: []string{
				`[itemprop="worksFor"] span.p-org`,
				"span.p-org",
				`[itemprop="worksFor"]`,
			},
			Location: []string{
				`[itemprop="homeLocation"] span.p-label`,
				`[itemprop="homeLocation"]`,
				"span.p-label",
			},
		}
	default:
		return FieldSelectors{
			Name: []string{
				personScope + ` > [itemprop="name"]`,
				personScope + ` [itemprop="name"]`,
				`meta[property="profile:username"]`,
				"h1",
			},
			Title: []string{
				personScope + ` [itemprop="jobTitle"]`,
				`[itemprop="jobTitle"]`,
			},
			Company: []string{
				personScope + ` [itemprop="worksFor"] [itemprop="name"]`,
				personScope + ` [itemprop="worksFor"]`,
				`[itemprop="worksFor"]`,
			},
			Location: []string{
				personScope + ` [itemprop="homeLocation"]`,
				personScope + ` [itemprop="address"] [itemprop="addressLocality"]`,
				personScope + ` [itemprop="address"]`,
				`[itemprop="homeLocation"]`,
			},
		}
	}
}

// ParseProfile extracts a ProfileRecord from a rendered page.
// Every text field must be present; a partial record is returned with an ExtractionError.
func ParseProfile(html, pageURL string) (types.ProfileRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.ProfileRecord{}, &ExtractionError{
			URL:     pageURL,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	platform := fetch.DetectPlatform(pageURL)
	if noise := fetch.PlatformNoiseSelectors(platform); len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	sel := SelectorsFor(platform)
	record := types.ProfileRecord{
		Name:       firstText(doc, sel.Name),
		Title:      firstText(doc, sel.Title),
		Company:    firstText(doc, sel.Company),
		Location:   firstText(doc, sel.Location),
		ProfileURL: pageURL,
	}

	if missing := record.MissingFields(); len(missing) > 0 {
		return record, &ExtractionError{URL: pageURL, Missing: missing}
	}
	return record, nil
}

// firstText returns the normalized text of the first selector that yields a non-empty value.
// Microdata often carries values on meta tags, so the content attribute is checked first.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var value string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if content, ok := s.Attr("content"); ok {
				value = collapseSpaces(content)
			} else {
				value = collapseSpaces(s.Text())
			}
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return ""
}

// collapseSpaces joins all whitespace runs into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
