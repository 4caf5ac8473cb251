package epic

// promotionsResponse is the freeGamesPromotions response envelope.
type promotionsResponse struct {
	Data *struct {
		Catalog *struct {
			SearchStore struct {
				Elements []CatalogElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

// CatalogElement is one catalog entry.
type CatalogElement struct {
	ID            string        `json:"id"`
	Namespace     string        `json:"namespace"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	ProductSlug   string        `json:"productSlug"`
	URLSlug       string        `json:"urlSlug"`
	KeyImages     []KeyImage    `json:"keyImages"`
	CatalogNs     CatalogNs     `json:"catalogNs"`
	OfferMappings []PageMapping `json:"offerMappings"`
	Promotions    *Promotions   `json:"promotions"`
}

// KeyImage is a typed artwork URL.
type KeyImage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// CatalogNs holds namespace-level page mappings.
type CatalogNs struct {
	Mappings []PageMapping `json:"mappings"`
}

// PageMapping maps an entry to a store page slug.
type PageMapping struct {
	PageSlug string `json:"pageSlug"`
	PageType string `json:"pageType"`
}

// Promotions holds current and upcoming promotion groups.
type Promotions struct {
	PromotionalOffers         []PromotionGroup `json:"promotionalOffers"`
	UpcomingPromotionalOffers []PromotionGroup `json:"upcomingPromotionalOffers"`
}

// PromotionGroup is one group of promotional offers.
type PromotionGroup struct {
	PromotionalOffers []PromotionalOffer `json:"promotionalOffers"`
}

// PromotionalOffer is a single discount window.
type PromotionalOffer struct {
	StartDate       string           `json:"startDate"`
	EndDate         string           `json:"endDate"`
	DiscountSetting *DiscountSetting `json:"discountSetting,omitempty"`
}

// DiscountSetting describes the discount applied during the window.
type DiscountSetting struct {
	DiscountType       string `json:"discountType"`
	DiscountPercentage int    `json:"discountPercentage"`
}
