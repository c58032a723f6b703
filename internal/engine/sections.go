package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
)

func addSection(ctx context.Context, x *execution) (map[string]any, error) {
	p := x.payload
	cat := x.catalog()
	typ, _ := p.String("section_type")
	if typ == catalog.HeroType {
		return nil, conflict(x.kind, "the hero is edited with the UPDATE_HERO_* actions and cannot be added as a section")
	}
	if _, known := cat.Spec(typ); !known {
		slog.Warn("adding section of unknown type", "merchant_id", x.merchantID, "section_type", typ)
	}

	zone := cat.Zone(typ)
	if z, ok := p.String("zone"); ok && z != "" {
		zone = z
	}
	if zone == state.ZoneHero {
		return nil, invalidReference(x.kind, "zone %q is reserved for the hero", zone)
	}

	internal := cat.Defaults(typ)
	if settings, ok := p.Object("settings"); ok {
		for k, v := range cat.Translate(typ, settings) {
			internal[k] = v
		}
	}
	visible := true
	if b, ok := p.Bool("visible"); ok {
		visible = b
	}

	sections := x.st.Homepage.Sections
	members := state.ZoneSections(sections, zone)
	pos := len(members)
	if n, ok := p.Int("position"); ok && n < int64(pos) {
		pos = max(int(n), 0)
	}

	// Open a slot at pos before inserting.
	for _, i := range members {
		sec := &sections[i]
		if sec.Position < pos {
			continue
		}
		shifted := sec.Position + 1
		if err := x.persist("shift section "+sec.ID, func() error {
			return x.repo().UpdateSectionPosition(ctx, x.merchantID, sec.ID, shifted)
		}); err != nil {
			return nil, err
		}
		sec.Position = shifted
	}

	id := x.newID()
	rec := store.Section{
		ID:         id,
		MerchantID: x.merchantID,
		Page:       store.PageHome,
		Kind:       typ,
		Zone:       zone,
		Position:   pos,
		Visible:    visible,
		Settings:   internal,
	}
	if err := x.persist("insert section "+id, func() error {
		return x.repo().InsertSection(ctx, rec)
	}); err != nil {
		return nil, err
	}

	x.st.Homepage.Sections = append(sections, state.Section{
		ID:       id,
		Type:     typ,
		Zone:     zone,
		Position: pos,
		Visible:  visible,
		Settings: cat.Simplify(typ, internal),
		Internal: ir.CloneMap(internal),
	})
	return map[string]any{"section_id": id, "position": pos}, nil
}

func removeSection(ctx context.Context, x *execution) (map[string]any, error) {
	id, _ := x.payload.String("section_id")
	i := x.st.FindSection(id)
	if i < 0 {
		return nil, notFound(x.kind, "section %q not found", id)
	}
	removed := x.st.Homepage.Sections[i]
	if err := x.persist("delete section "+id, func() error {
		return x.repo().DeleteSection(ctx, x.merchantID, id)
	}); err != nil {
		return nil, err
	}
	x.st.Homepage.Sections = slices.Delete(x.st.Homepage.Sections, i, i+1)

	// Close the gap left in the zone.
	sections := x.st.Homepage.Sections
	for j := range sections {
		sec := &sections[j]
		if sec.Zone != removed.Zone || sec.Position <= removed.Position {
			continue
		}
		shifted := sec.Position - 1
		if err := x.persist("shift section "+sec.ID, func() error {
			return x.repo().UpdateSectionPosition(ctx, x.merchantID, sec.ID, shifted)
		}); err != nil {
			return nil, err
		}
		sec.Position = shifted
	}
	return map[string]any{"section_id": id}, nil
}

func updateSection(ctx context.Context, x *execution) (map[string]any, error) {
	id, _ := x.payload.String("section_id")
	i := x.st.FindSection(id)
	if i < 0 {
		return nil, notFound(x.kind, "section %q not found", id)
	}
	sec := &x.st.Homepage.Sections[i]
	cat := x.catalog()
	changed := []string{}

	if settings, ok := x.payload.Object("settings"); ok && len(settings) > 0 {
		merged := ir.CloneMap(sec.Internal)
		if merged == nil {
			merged = map[string]any{}
		}
		for k, v := range cat.Translate(sec.Type, settings) {
			merged[k] = v
		}
		if err := x.persist("update section "+id+" settings", func() error {
			return x.repo().UpdateSectionSettings(ctx, x.merchantID, id, merged)
		}); err != nil {
			return nil, err
		}
		sec.Internal = merged
		sec.Settings = cat.Simplify(sec.Type, merged)
		changed = append(changed, "settings")
	}

	if visible, ok := x.payload.Bool("visible"); ok && visible != sec.Visible {
		if err := x.persist("update section "+id+" visibility", func() error {
			return x.repo().UpdateSectionVisibility(ctx, x.merchantID, id, visible)
		}); err != nil {
			return nil, err
		}
		sec.Visible = visible
		changed = append(changed, "visible")
	}

	return map[string]any{
		"section_id":     id,
		"changed_fields": stringsToAny(changed),
	}, nil
}

// reorderSections gives the listed sections positions in list order within
// their zones. Unknown and repeated ids are dropped; sections left out keep
// their relative order after the listed ones.
func reorderSections(ctx context.Context, x *execution) (map[string]any, error) {
	ids, _ := x.payload.Strings("section_ids")
	sections := x.st.Homepage.Sections

	listed := make(map[string]bool, len(ids))
	var order []int
	dropped := []any{}
	for _, id := range ids {
		if listed[id] {
			continue
		}
		i := x.st.FindSection(id)
		if i < 0 {
			dropped = append(dropped, id)
			continue
		}
		listed[id] = true
		order = append(order, i)
	}
	for i, sec := range sections {
		if !listed[sec.ID] {
			order = append(order, i)
		}
	}

	next := make(map[string]int)
	target := make([]int, len(sections))
	for _, i := range order {
		zone := sections[i].Zone
		target[i] = next[zone]
		next[zone]++
	}

	updated := 0
	for i := range sections {
		sec := &sections[i]
		pos := target[i]
		if sec.Position == pos {
			continue
		}
		if err := x.persist("move section "+sec.ID, func() error {
			return x.repo().UpdateSectionPosition(ctx, x.merchantID, sec.ID, pos)
		}); err != nil {
			return nil, err
		}
		sec.Position = pos
		updated++
	}
	return map[string]any{"updated": updated, "dropped": dropped}, nil
}
