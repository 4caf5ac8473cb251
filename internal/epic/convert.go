package epic

import (
	"strings"
	"time"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// imagePreference lists key image types in the order they are tried.
var imagePreference = []string{"Thumbnail", "OfferImageWide", "DieselStoreFrontWide"}

// ToOffers keeps the elements that currently have an active promotion and
// converts each into an Offer. For every kept element the first offer of
// the first promotion group is used.
func ToOffers(elements []CatalogElement, storeBaseURL, locale string) []domain.Offer {
	offers := make([]domain.Offer, 0, len(elements))
	for i := range elements {
		promo, ok := activePromotion(&elements[i])
		if !ok {
			continue
		}
		offers = append(offers, toOffer(&elements[i], promo, storeBaseURL, locale))
	}
	return offers
}

func activePromotion(el *CatalogElement) (PromotionalOffer, bool) {
	if el.Promotions == nil || len(el.Promotions.PromotionalOffers) == 0 {
		return PromotionalOffer{}, false
	}
	group := el.Promotions.PromotionalOffers[0]
	if len(group.PromotionalOffers) == 0 {
		return PromotionalOffer{}, false
	}
	return group.PromotionalOffers[0], true
}

func toOffer(el *CatalogElement, promo PromotionalOffer, storeBaseURL, locale string) domain.Offer {
	return domain.Offer{
		ID:          el.ID,
		Title:       el.Title,
		URL:         storeURL(el, storeBaseURL, locale),
		Description: el.Description,
		ImageURL:    pickImage(el.KeyImages),
		StartDate:   parseDate(promo.StartDate),
		EndDate:     parseDate(promo.EndDate),
	}
}

// storeURL builds the product page link, falling back to the free games
// landing page when the entry carries no slug.
func storeURL(el *CatalogElement, storeBaseURL, locale string) string {
	base := strings.TrimRight(storeBaseURL, "/") + "/" + locale
	if slug := pageSlug(el); slug != "" {
		return base + "/p/" + slug
	}
	return base + "/free-games"
}

func pageSlug(el *CatalogElement) string {
	if len(el.CatalogNs.Mappings) > 0 && el.CatalogNs.Mappings[0].PageSlug != "" {
		return el.CatalogNs.Mappings[0].PageSlug
	}
	if len(el.OfferMappings) > 0 && el.OfferMappings[0].PageSlug != "" {
		return el.OfferMappings[0].PageSlug
	}
	if s := strings.TrimSuffix(el.ProductSlug, "/home"); s != "" && s != "[]" {
		return s
	}
	return el.URLSlug
}

func pickImage(images []KeyImage) string {
	for _, want := range imagePreference {
		for _, img := range images {
			if img.Type == want && img.URL != "" {
				return img.URL
			}
		}
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}

// parseDate returns the zero time for empty or malformed input.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
