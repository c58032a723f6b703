package state

import "fmt"

// HeroAssetID is the asset id of the hero image.
const HeroAssetID = "asset-hero"

// HeroImageKey is the internal hero setting holding the image reference.
const HeroImageKey = "background_image"

// DeriveAssets recomputes the asset list from the hero and products: the
// hero image first, then every product image in product order.
func DeriveAssets(s StoreState) []Asset {
	assets := []Asset{}

	if s.Homepage.Hero.Image != "" {
		u, _ := s.Homepage.HeroSettings[HeroImageKey].(string)
		assets = append(assets, Asset{
			ID:          HeroAssetID,
			Label:       s.Homepage.Hero.Image,
			Description: "Hero image",
			URL:         u,
		})
	}

	for _, p := range s.Products {
		for i, ref := range p.ImageRefs {
			assets = append(assets, Asset{
				ID:          fmt.Sprintf("asset-%s-%d", p.ID, i+1),
				Label:       ref.Label,
				Description: fmt.Sprintf("Image %d of %s", i+1, p.Title),
				URL:         ref.URL,
			})
		}
	}
	return assets
}

// RefreshAssets replaces s.Assets with DeriveAssets(s).
func (s *StoreState) RefreshAssets() {
	s.Assets = DeriveAssets(*s)
}
