package state

import (
	"slices"

	"github.com/roach88/storepilot/internal/ir"
)

// Clone returns a deep copy of s. Nothing reachable from the result aliases s.
func Clone(s StoreState) StoreState {
	out := s

	if s.Products != nil {
		out.Products = make([]Product, len(s.Products))
		for i, p := range s.Products {
			out.Products[i] = cloneProduct(p)
		}
	}

	if s.Homepage.Sections != nil {
		out.Homepage.Sections = make([]Section, len(s.Homepage.Sections))
		for i, sec := range s.Homepage.Sections {
			out.Homepage.Sections[i] = cloneSection(sec)
		}
	}
	out.Homepage.HeroSettings = cloneSettings(s.Homepage.HeroSettings)

	out.Assets = slices.Clone(s.Assets)
	return out
}

func cloneProduct(p Product) Product {
	out := p
	out.Images = cloneStrings(p.Images)
	out.Tags = cloneStrings(p.Tags)
	out.ImageRefs = slices.Clone(p.ImageRefs)
	return out
}

func cloneSection(s Section) Section {
	out := s
	out.Settings = cloneSettings(s.Settings)
	out.Internal = cloneSettings(s.Internal)
	return out
}

func cloneStrings(in []string) []string {
	return slices.Clone(in)
}

func cloneSettings(m map[string]any) map[string]any {
	return ir.CloneMap(m)
}
