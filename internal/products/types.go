package products

// UpstreamProduct is one record of the external search API response.
type UpstreamProduct struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// Product is the shape returned to clients.
type Product struct {
	Title       string  `json:"title" xml:"title"`
	Description string  `json:"description" xml:"description"`
	FinalPrice  float64 `json:"final_price" xml:"final_price"`
}

// searchResponse is the upstream envelope. Products is a pointer so a missing
// field can be told apart from an empty result.
type searchResponse struct {
	Products *[]UpstreamProduct `json:"products"`
}
