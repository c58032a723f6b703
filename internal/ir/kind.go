package ir

// Kind identifies one action in the closed action vocabulary.
type Kind string

const (
	KindCreateProduct               Kind = "CREATE_PRODUCT"
	KindUpdateProduct               Kind = "UPDATE_PRODUCT"
	KindDeleteProduct               Kind = "DELETE_PRODUCT"
	KindUpdateHeroHeadline          Kind = "UPDATE_HERO_HEADLINE"
	KindUpdateHeroSubheadline       Kind = "UPDATE_HERO_SUBHEADLINE"
	KindUpdateHeroCTA               Kind = "UPDATE_HERO_CTA"
	KindUpdateHeroImage             Kind = "UPDATE_HERO_IMAGE"
	KindUpdateHeroLayout            Kind = "UPDATE_HERO_LAYOUT"
	KindAddSection                  Kind = "ADD_SECTION"
	KindRemoveSection               Kind = "REMOVE_SECTION"
	KindUpdateSection               Kind = "UPDATE_SECTION"
	KindReorderSections             Kind = "REORDER_SECTIONS"
	KindUpdateBrandInfo             Kind = "UPDATE_BRAND_INFO"
	KindGenerateProductDescriptions Kind = "GENERATE_PRODUCT_DESCRIPTIONS"
)

// kinds is the declaration order. Docs, prompts and parity tests iterate it.
var kinds = []Kind{
	KindCreateProduct,
	KindUpdateProduct,
	KindDeleteProduct,
	KindUpdateHeroHeadline,
	KindUpdateHeroSubheadline,
	KindUpdateHeroCTA,
	KindUpdateHeroImage,
	KindUpdateHeroLayout,
	KindAddSection,
	KindRemoveSection,
	KindUpdateSection,
	KindReorderSections,
	KindUpdateBrandInfo,
	KindGenerateProductDescriptions,
}

// Kinds returns every action kind in declaration order.
// The returned slice is a copy.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind returns the Kind named by s and whether it is a member of the
// closed set. Matching is exact; the LLM is prompted with the exact names.
func ParseKind(s string) (Kind, bool) {
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// TouchesSections reports whether actions of this kind may change
// homepage section ordering.
func (k Kind) TouchesSections() bool {
	switch k {
	case KindAddSection, KindRemoveSection, KindUpdateSection, KindReorderSections:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
