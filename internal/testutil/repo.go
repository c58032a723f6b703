package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/store"
)

// MemoryRepository is an in-memory store.Repository with per-operation
// fault injection and a call log. Semantics follow store.Store: writes bump
// the merchant revision, updates and deletes of missing rows return
// store.ErrNotFound, and lists are returned in the store's order.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryRepository struct {
	mu        sync.Mutex
	merchants map[string]*store.Brand
	revisions map[string]int64
	products  []store.Product
	sections  []store.Section
	faults    map[string]error
	calls     []string
	now       func() time.Time
}

var _ store.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		merchants: make(map[string]*store.Brand),
		revisions: make(map[string]int64),
		faults:    make(map[string]error),
		now:       func() time.Time { return Epoch },
	}
}

// FailOn makes every later call to op (e.g. "UpdateProduct") return err.
// op may also name a single call as it appears in Calls, e.g.
// "UpdateProduct p2". A nil err clears the fault.
func (r *MemoryRepository) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.faults, op)
		return
	}
	r.faults[op] = err
}

// Calls returns the operations invoked so far, e.g. "DeleteProduct p1".
func (r *MemoryRepository) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Writes returns only the mutating calls.
func (r *MemoryRepository) Writes() []string {
	var out []string
	for _, c := range r.Calls() {
		switch {
		case strings.HasPrefix(c, "Revision"), strings.HasPrefix(c, "Get"), strings.HasPrefix(c, "List"):
		default:
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (r *MemoryRepository) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Bump simulates a write by another editor.
func (r *MemoryRepository) Bump(merchantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revisions[merchantID]++
}

func (r *MemoryRepository) enter(op, detail string) error {
	call := op
	if detail != "" {
		call += " " + detail
	}
	r.calls = append(r.calls, call)
	if err, ok := r.faults[call]; ok {
		return err
	}
	return r.faults[op]
}

func (r *MemoryRepository) EnsureMerchant(_ context.Context, merchantID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnsureMerchant", merchantID); err != nil {
		return err
	}
	if _, ok := r.merchants[merchantID]; !ok {
		r.merchants[merchantID] = &store.Brand{MerchantID: merchantID, Name: name, UpdatedAt: r.now()}
	}
	return nil
}

func (r *MemoryRepository) Revision(_ context.Context, merchantID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Revision", merchantID); err != nil {
		return 0, err
	}
	return r.revisions[merchantID], nil
}

func (r *MemoryRepository) GetBrand(_ context.Context, merchantID string) (store.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetBrand", merchantID); err != nil {
		return store.Brand{}, err
	}
	b, ok := r.merchants[merchantID]
	if !ok {
		return store.Brand{}, fmt.Errorf("get brand %s: %w", merchantID, store.ErrNotFound)
	}
	return *b, nil
}

func (r *MemoryRepository) UpdateBrand(_ context.Context, merchantID string, patch store.BrandPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateBrand", merchantID); err != nil {
		return err
	}
	if patch.Empty() {
		return nil
	}
	b, ok := r.merchants[merchantID]
	if !ok {
		return fmt.Errorf("update brand %s: %w", merchantID, store.ErrNotFound)
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Tone != nil {
		b.Tone = *patch.Tone
	}
	if patch.Tagline != nil {
		b.Tagline = *patch.Tagline
	}
	b.UpdatedAt = r.now()
	r.revisions[merchantID]++
	return nil
}

func (r *MemoryRepository) ListProducts(_ context.Context, merchantID string) ([]store.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListProducts", merchantID); err != nil {
		return nil, err
	}
	out := []store.Product{}
	for _, p := range r.products {
		if p.MerchantID == merchantID {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (r *MemoryRepository) InsertProduct(_ context.Context, p store.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertProduct", p.ID); err != nil {
		return err
	}
	if _, ok := r.merchants[p.MerchantID]; !ok {
		return fmt.Errorf("insert product: unknown merchant %s", p.MerchantID)
	}
	for _, existing := range r.products {
		if existing.ID == p.ID {
			return fmt.Errorf("insert product: duplicate id %s", p.ID)
		}
	}
	p = copyProduct(p)
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	r.products = append(r.products, p)
	r.revisions[p.MerchantID]++
	return nil
}

func (r *MemoryRepository) UpdateProduct(_ context.Context, merchantID, productID string, patch store.ProductPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("UpdateProduct", productID); err != nil {
		return err
	}
	if patch.Empty() {
		return nil
	}
	i := r.productIndex(merchantID, productID)
	if i < 0 {
		return fmt.Errorf("update product %s: %w", productID, store.ErrNotFound)
	}
	p := &r.products[i]
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Inventory != nil {
		p.Inventory = *patch.Inventory
	}
	if patch.Images != nil {
		p.Images = ir.CloneValue(*patch.Images).([]any)
	}
	if patch.Tags != nil {
		p.Tags = slices.Clone(*patch.Tags)
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = r.now()
	r.revisions[merchantID]++
	return nil
}

func (r *MemoryRepository) DeleteProduct(_ context.Context, merchantID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteProduct", productID); err != nil {
		return err
	}
	i := r.productIndex(merchantID, productID)
	if i < 0 {
		return fmt.Errorf("delete product %s: %w", productID, store.ErrNotFound)
	}
	r.products = slices.Delete(r.products, i, i+1)
	r.revisions[merchantID]++
	return nil
}

func (r *MemoryRepository) ListSections(_ context.Context, merchantID, page string) ([]store.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ListSections", merchantID); err != nil {
		return nil, err
	}
	out := []store.Section{}
	for _, s := range r.sections {
		if s.MerchantID == merchantID && s.Page == page {
			out = append(out, copySection(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Zone != b.Zone {
			return a.Zone < b.Zone
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MemoryRepository) InsertSection(_ context.Context, s store.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("InsertSection", s.ID); err != nil {
		return err
	}
	if _, ok := r.merchants[s.MerchantID]; !ok {
		return fmt.Errorf("insert section: unknown merchant %s", s.MerchantID)
	}
	if s.Page == "" {
		s.Page = store.PageHome
	}
	r.sections = append(r.sections, copySection(s))
	r.revisions[s.MerchantID]++
	return nil
}

func (r *MemoryRepository) UpdateSectionSettings(_ context.Context, merchantID, sectionID string, settings map[string]any) error {
	return r.updateSection("UpdateSectionSettings", merchantID, sectionID, func(s *store.Section) {
		s.Settings = ir.CloneMap(settings)
	})
}

func (r *MemoryRepository) UpdateSectionPosition(_ context.Context, merchantID, sectionID string, position int) error {
	return r.updateSection("UpdateSectionPosition", merchantID, sectionID, func(s *store.Section) {
		s.Position = position
	})
}

func (r *MemoryRepository) UpdateSectionVisibility(_ context.Context, merchantID, sectionID string, visible bool) error {
	return r.updateSection("UpdateSectionVisibility", merchantID, sectionID, func(s *store.Section) {
		s.Visible = visible
	})
}

func (r *MemoryRepository) updateSection(op, merchantID, sectionID string, apply func(*store.Section)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(op, sectionID); err != nil {
		return err
	}
	i := r.sectionIndex(merchantID, sectionID)
	if i < 0 {
		return fmt.Errorf("update section %s: %w", sectionID, store.ErrNotFound)
	}
	apply(&r.sections[i])
	r.revisions[merchantID]++
	return nil
}

func (r *MemoryRepository) DeleteSection(_ context.Context, merchantID, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DeleteSection", sectionID); err != nil {
		return err
	}
	i := r.sectionIndex(merchantID, sectionID)
	if i < 0 {
		return fmt.Errorf("delete section %s: %w", sectionID, store.ErrNotFound)
	}
	r.sections = slices.Delete(r.sections, i, i+1)
	r.revisions[merchantID]++
	return nil
}

func (r *MemoryRepository) productIndex(merchantID, productID string) int {
	for i, p := range r.products {
		if p.MerchantID == merchantID && p.ID == productID {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) sectionIndex(merchantID, sectionID string) int {
	for i, s := range r.sections {
		if s.MerchantID == merchantID && s.ID == sectionID {
			return i
		}
	}
	return -1
}

func copyProduct(p store.Product) store.Product {
	if p.Images != nil {
		p.Images = ir.CloneValue(p.Images).([]any)
	}
	p.Tags = slices.Clone(p.Tags)
	return p
}

func copySection(s store.Section) store.Section {
	s.Settings = ir.CloneMap(s.Settings)
	return s
}
