package models

import "encoding/json"

// Pagination is the metadata block of paged list responses.
type Pagination struct {
	CurrentPage   int `json:"currentPage"`
	NumberOfPages int `json:"numberOfPages"`
	Limit         int `json:"limit"`
	NextPage      int `json:"nextPage,omitempty"`
	PrevPage      int `json:"prevPage,omitempty"`
}

// Envelope is the JSON wrapper every store API response uses.
type Envelope struct {
	Status         string          `json:"status,omitempty"`
	Message        string          `json:"message,omitempty"`
	Results        int             `json:"results,omitempty"`
	NumOfCartItems int             `json:"numOfCartItems,omitempty"`
	CartID         string          `json:"cartId,omitempty"`
	Pagination     *Pagination     `json:"pagination,omitempty"`
	Metadata       *Pagination     `json:"metadata,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// Paging returns the pagination block under either of its names.
func (e Envelope) Paging() Pagination {
	switch {
	case e.Pagination != nil:
		return *e.Pagination
	case e.Metadata != nil:
		return *e.Metadata
	}
	return Pagination{CurrentPage: 1, NumberOfPages: 1}
}

// CartEnvelope is a decoded cart response.
type CartEnvelope struct {
	Status         string
	NumOfCartItems int
	Cart           Cart
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Products   []Product
	Results    int
	Pagination Pagination
}
