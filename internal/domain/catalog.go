package domain

// Catalog entities are read-only business data surfaced to customers by the
// agent's tools. They are managed elsewhere (admin CRUD is out of scope
// here); this service only reads them.

// Package is an event decoration package tier.
type Package struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	IsPopular    bool     `json:"is_popular"`
	DisplayOrder int      `json:"display_order"`
	Items        []string `json:"items,omitempty"`
}

// Enhancement is an add-on customers can attach to any package.
type Enhancement struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
	Category      string  `json:"category"`
	DisplayOrder  int     `json:"display_order"`
	IsAvailable   bool    `json:"is_available"`
}

// Theme is a decoration style.
type Theme struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GalleryItem showcases past work.
type GalleryItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Testimonial is a customer review.
type Testimonial struct {
	ID         int64   `json:"id"`
	ClientName string  `json:"client_name"`
	EventType  string  `json:"event_type"`
	Message    string  `json:"message"`
	Rating     float64 `json:"rating"`
}

// FAQ is a frequently asked question entry.
type FAQ struct {
	ID           int64  `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}
