package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
)

func createProduct(ctx context.Context, x *execution) (map[string]any, error) {
	p := x.payload
	title, _ := p.String("title")
	price, _ := p.Int("price")
	inventory, _ := p.Int("inventory")
	description, _ := p.String("description")
	category, _ := p.String("category")
	isActive := true
	if b, ok := p.Bool("is_active"); ok {
		isActive = b
	}
	tags, _ := p.Strings("tags")
	if tags == nil {
		tags = []string{}
	}
	refs, raw := []state.ImageRef{}, []any{}
	if images, ok := p.Strings("images"); ok {
		refs, raw = resolveImages(*x.st, images)
	}

	id := x.newID()
	rec := store.Product{
		ID:          id,
		MerchantID:  x.merchantID,
		Title:       title,
		Price:       price,
		Description: description,
		Category:    category,
		Inventory:   inventory,
		Images:      raw,
		Tags:        tags,
		IsActive:    isActive,
	}
	if err := x.persist("insert product "+id, func() error {
		return x.repo().InsertProduct(ctx, rec)
	}); err != nil {
		return nil, err
	}

	x.st.Products = append(x.st.Products, state.Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Description: description,
		Category:    category,
		Inventory:   inventory,
		Images:      state.Labels(refs),
		Tags:        slices.Clone(tags),
		IsActive:    isActive,
		ImageRefs:   refs,
	})
	return map[string]any{"product_id": id}, nil
}

func updateProduct(ctx context.Context, x *execution) (map[string]any, error) {
	p := x.payload
	id, _ := p.String("product_id")
	i := x.st.FindProduct(id)
	if i < 0 {
		return nil, notFound(x.kind, "product %q not found", id)
	}

	var patch store.ProductPatch
	var changed []string
	var refs []state.ImageRef
	if v, ok := p.String("title"); ok {
		patch.Title = &v
		changed = append(changed, "title")
	}
	if v, ok := p.Int("price"); ok {
		patch.Price = &v
		changed = append(changed, "price")
	}
	if v, ok := p.String("description"); ok {
		patch.Description = &v
		changed = append(changed, "description")
	}
	if v, ok := p.String("category"); ok {
		patch.Category = &v
		changed = append(changed, "category")
	}
	if v, ok := p.Int("inventory"); ok {
		patch.Inventory = &v
		changed = append(changed, "inventory")
	}
	if v, ok := p.Strings("images"); ok {
		var raw []any
		refs, raw = resolveImages(*x.st, v)
		patch.Images = &raw
		changed = append(changed, "images")
	}
	if v, ok := p.Strings("tags"); ok {
		patch.Tags = &v
		changed = append(changed, "tags")
	}
	if v, ok := p.Bool("is_active"); ok {
		patch.IsActive = &v
		changed = append(changed, "is_active")
	}

	if !patch.Empty() {
		if err := x.persist("update product "+id, func() error {
			return x.repo().UpdateProduct(ctx, x.merchantID, id, patch)
		}); err != nil {
			return nil, err
		}
	}

	prod := &x.st.Products[i]
	if patch.Title != nil {
		prod.Title = *patch.Title
	}
	if patch.Price != nil {
		prod.Price = *patch.Price
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.Category != nil {
		prod.Category = *patch.Category
	}
	if patch.Inventory != nil {
		prod.Inventory = *patch.Inventory
	}
	if patch.Images != nil {
		prod.ImageRefs = refs
		prod.Images = state.Labels(refs)
	}
	if patch.Tags != nil {
		prod.Tags = slices.Clone(*patch.Tags)
	}
	if patch.IsActive != nil {
		prod.IsActive = *patch.IsActive
	}

	return map[string]any{
		"product_id":     id,
		"changed_fields": stringsToAny(changed),
	}, nil
}

func deleteProduct(ctx context.Context, x *execution) (map[string]any, error) {
	id, _ := x.payload.String("product_id")
	i := x.st.FindProduct(id)
	if i < 0 {
		return nil, notFound(x.kind, "product %q not found", id)
	}
	if err := x.persist("delete product "+id, func() error {
		return x.repo().DeleteProduct(ctx, x.merchantID, id)
	}); err != nil {
		return nil, err
	}
	x.st.Products = slices.Delete(x.st.Products, i, i+1)
	return map[string]any{"product_id": id}, nil
}

func generateProductDescriptions(ctx context.Context, x *execution) (map[string]any, error) {
	descriptions, _ := x.payload.Object("descriptions")

	ids := make([]string, 0, len(descriptions))
	for id := range descriptions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	updated := 0
	skipped := []any{}
	for _, id := range ids {
		text, ok := descriptions[id].(string)
		i := x.st.FindProduct(id)
		if !ok || i < 0 {
			skipped = append(skipped, id)
			continue
		}
		patch := store.ProductPatch{Description: &text}
		if err := x.persist("update product "+id+" description", func() error {
			return x.repo().UpdateProduct(ctx, x.merchantID, id, patch)
		}); err != nil {
			return nil, err
		}
		x.st.Products[i].Description = text
		updated++
	}
	return map[string]any{"updated": updated, "skipped": skipped}, nil
}

// resolveImages turns agent-supplied image references into labelled refs
// and the raw values to persist. Each entry is tried as an asset id or
// label, then as a URL, and otherwise kept as a plain label.
func resolveImages(st state.StoreState, entries []string) ([]state.ImageRef, []any) {
	refs := make([]state.ImageRef, 0, len(entries))
	raw := make([]any, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		var ref state.ImageRef
		var stored any
		if asset, ok := st.FindAsset(entry); ok && entry != "" {
			ref = state.ImageRef{Label: asset.Label, URL: asset.URL}
			obj := map[string]any{"label": asset.Label}
			if asset.URL != "" {
				obj["url"] = asset.URL
			}
			stored = obj
		} else if state.IsURL(entry) {
			ref = state.ImageRef{Label: state.LabelFromURL(entry), URL: entry}
			stored = entry
		} else {
			ref = state.ImageRef{Label: entry}
			stored = map[string]any{"label": entry}
		}
		if ref.Label == "" {
			ref.Label = fmt.Sprintf("image-%d", i+1)
		}
		refs = append(refs, ref)
		raw = append(raw, stored)
	}
	return refs, raw
}
