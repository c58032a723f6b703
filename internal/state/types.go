package state

import (
	"encoding/json"
	"time"
)

// Tones are the accepted brand tone values.
var Tones = []string{"professional", "friendly", "playful", "luxurious", "bold", "minimal"}

// Layouts are the accepted hero layout values.
var Layouts = []string{"centered", "left", "right", "split"}

// Placement zones for homepage sections.
const (
	ZoneHeader = "header"
	ZoneHero   = "hero"
	ZoneMain   = "main"
	ZoneFooter = "footer"
)

// DefaultLayout is the hero layout of a merchant with no hero section.
const DefaultLayout = "centered"

// DefaultTemplate names the homepage template.
const DefaultTemplate = "default"

// StoreState is the canonical storefront document for one merchant.
type StoreState struct {
	Brand    Brand     `json:"brand"`
	Products []Product `json:"products"`
	Homepage Homepage  `json:"homepage"`
	Assets   []Asset   `json:"assets"`
	Meta     Meta      `json:"meta"`
}

// Brand is the merchant identity.
type Brand struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Tone     string `json:"tone"`
	Tagline  string `json:"tagline"`
}

// Product is the agent-facing product. Images are display labels; the
// matching storage references live in ImageRefs.
type Product struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Price       int64      `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Inventory   int64      `json:"inventory"`
	Images      []string   `json:"images"`
	Tags        []string   `json:"tags"`
	IsActive    bool       `json:"is_active"`
	ImageRefs   []ImageRef `json:"-"`
}

// ImageRef pairs a display label with its storage URL (possibly empty).
type ImageRef struct {
	Label string
	URL   string
}

// Homepage holds the hero and the ordered section list. The persisted hero
// section is represented only by Hero; its record id and internal settings
// are kept out of the JSON.
type Homepage struct {
	Hero          Hero           `json:"hero"`
	Sections      []Section      `json:"sections"`
	Template      string         `json:"template"`
	HeroSectionID string         `json:"-"`
	HeroSettings  map[string]any `json:"-"`
}

// Hero is the agent-facing hero banner.
type Hero struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTAText     string `json:"cta_text"`
	CTALink     string `json:"cta_link"`
	Image       string `json:"image"`
	Layout      string `json:"layout"`
}

// Section is a positioned homepage block. Settings is the simplified view;
// Internal is the full persisted settings object.
type Section struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Zone     string         `json:"zone"`
	Position int            `json:"position"`
	Visible  bool           `json:"visible"`
	Settings map[string]any `json:"settings"`
	Internal map[string]any `json:"-"`
}

// Asset is a derived, read-only image reference.
type Asset struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	URL         string `json:"-"`
}

// Meta carries document bookkeeping.
type Meta struct {
	MerchantID  string    `json:"merchant_id"`
	LastUpdated time.Time `json:"last_updated"`
	Revision    int64     `json:"revision"`
}

// Empty returns a structurally valid document with every collection empty.
func Empty(merchantID string) StoreState {
	return StoreState{
		Products: []Product{},
		Homepage: Homepage{
			Hero:         Hero{Layout: DefaultLayout},
			Sections:     []Section{},
			Template:     DefaultTemplate,
			HeroSettings: map[string]any{},
		},
		Assets: []Asset{},
		Meta:   Meta{MerchantID: merchantID},
	}
}

// JSON renders the agent-facing document.
func (s StoreState) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FindProduct returns the index of the product with id, or -1.
func (s StoreState) FindProduct(id string) int {
	for i, p := range s.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FindSection returns the index of the section with id, or -1.
func (s StoreState) FindSection(id string) int {
	for i, sec := range s.Homepage.Sections {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

// FindAsset returns the asset whose id or label equals ref.
// Ids win over labels.
func (s StoreState) FindAsset(ref string) (Asset, bool) {
	for _, a := range s.Assets {
		if a.ID == ref {
			return a, true
		}
	}
	for _, a := range s.Assets {
		if a.Label == ref {
			return a, true
		}
	}
	return Asset{}, false
}
