package supplier

import (
	"encoding/json"
	"strings"
)

// errorEnvelope is the top-level rejection shape some methods return.
type errorEnvelope struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	SubCode string `json:"sub_code"`
	SubMsg  string `json:"sub_msg"`
}

// methodResult is the nested result wrapper other methods return. A
// resp_code other than 200 is a supplier-level rejection even though the
// HTTP call succeeded.
type methodResult struct {
	RespCode int             `json:"resp_code"`
	RespMsg  string          `json:"resp_msg"`
	Result   json.RawMessage `json:"result"`
}

// productDetail is the payload of a product query scoped to one ship-to
// country.
type productDetail struct {
	Subject   string      `json:"subject"`
	ImageURLs string      `json:"image_urls"`
	SKUs      []skuDetail `json:"sku_list"`
}

type skuDetail struct {
	SKUID     string `json:"sku_id"`
	Price     string `json:"sku_price"`
	Stock     int    `json:"sku_stock"`
	Available bool   `json:"sku_available"`
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireTime   int64  `json:"expire_time"`
}

// Listing is the normalized product data extracted from a successful probe.
type Listing struct {
	ProductID    string
	Country      string
	Title        string
	ImageCount   int
	VariantCount int
	Raw          json.RawMessage
}

func listingFromDetail(productID, country string, detail productDetail, raw json.RawMessage) *Listing {
	imageCount := 0
	// Image URLs arrive as one semicolon-joined string per the supplier's
	// wire convention.
	if detail.ImageURLs != "" {
		imageCount = len(strings.Split(detail.ImageURLs, ";"))
	}
	return &Listing{
		ProductID:    productID,
		Country:      country,
		Title:        detail.Subject,
		ImageCount:   imageCount,
		VariantCount: len(detail.SKUs),
		Raw:          raw,
	}
}
