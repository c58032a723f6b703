package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/storepilot/internal/agent"
	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/engine"
	"github.com/roach88/storepilot/internal/llm"
	"github.com/roach88/storepilot/internal/prompt"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
	"github.com/roach88/storepilot/internal/testutil"
)

// IDPrefix prefixes the sequential ids handed out during a run: id-1, id-2...
const IDPrefix = "id"

// Run executes scenario against a fresh in-memory SQLite store.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.DriverSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewClock()
	st.WithClock(clock.Now)
	cat := catalog.Default()

	if err := seed(ctx, st, cat, scenario.Merchant, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed %s: %w", scenario.Merchant, err)
	}

	replies, err := scriptFor(scenario.Turns)
	if err != nil {
		return nil, err
	}
	loader := state.NewLoader(st, cat)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := agent.NewSession(scenario.Merchant, agent.Deps{
		Loader:    loader,
		Revisions: st,
		Executor: engine.New(st, cat,
			engine.WithClock(clock),
			engine.WithIDGenerator(testutil.NewSequentialIDs(IDPrefix)),
		),
		Prompt: prompt.NewDefault(),
		LLM:    llm.NewScripted(replies...),
	}, agent.WithClock(clock), agent.WithLogger(quiet))
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Turns {
		report := session.Process(ctx, step.Instruction, step.Selection)
		result.Trace = append(result.Trace, TraceEvent{
			Turn:        i + 1,
			Instruction: step.Instruction,
			Success:     report.Success,
			Error:       report.Error,
			Rejected:    report.ValidationErrors,
			Mutations:   report.Mutations,
		})
		for _, msg := range checkTurn(step.Expect, report) {
			result.AddError(fmt.Sprintf("turns[%d]: %s", i, msg))
		}
	}

	result.State = session.State()
	if err := checkStoreAgreement(ctx, loader, scenario.Merchant, result.State); err != nil {
		result.AddError(err.Error())
	}
	for _, msg := range EvaluateAssertions(result.State, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func seed(ctx context.Context, repo store.Repository, cat catalog.Catalog, merchantID string, s Seed) error {
	name := s.Brand.Name
	if name == "" {
		name = merchantID
	}
	if err := repo.EnsureMerchant(ctx, merchantID, name); err != nil {
		return err
	}

	var patch store.BrandPatch
	for _, f := range []struct {
		val string
		dst **string
	}{
		{s.Brand.Category, &patch.Category},
		{s.Brand.Tone, &patch.Tone},
		{s.Brand.Tagline, &patch.Tagline},
	} {
		if f.val != "" {
			v := f.val
			*f.dst = &v
		}
	}
	if !patch.Empty() {
		if err := repo.UpdateBrand(ctx, merchantID, patch); err != nil {
			return err
		}
	}

	for _, p := range s.Products {
		active := true
		if p.IsActive != nil {
			active = *p.IsActive
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		if err := repo.InsertProduct(ctx, store.Product{
			ID:          p.ID,
			MerchantID:  merchantID,
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Inventory:   p.Inventory,
			Images:      p.Images,
			Tags:        tags,
			IsActive:    active,
		}); err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
	}

	if s.Hero != nil {
		settings := cat.Defaults(catalog.HeroType)
		for k, v := range s.Hero {
			settings[k] = v
		}
		if err := repo.InsertSection(ctx, store.Section{
			ID:         "hero",
			MerchantID: merchantID,
			Page:       store.PageHome,
			Kind:       catalog.HeroType,
			Zone:       state.ZoneHero,
			Visible:    true,
			Settings:   settings,
		}); err != nil {
			return fmt.Errorf("hero: %w", err)
		}
	}

	for _, sec := range s.Sections {
		zone := sec.Zone
		if zone == "" {
			zone = cat.Zone(sec.Type)
		}
		visible := true
		if sec.Visible != nil {
			visible = *sec.Visible
		}
		settings := cat.Defaults(sec.Type)
		for k, v := range sec.Settings {
			settings[k] = v
		}
		if err := repo.InsertSection(ctx, store.Section{
			ID:         sec.ID,
			MerchantID: merchantID,
			Page:       store.PageHome,
			Kind:       sec.Type,
			Zone:       zone,
			Position:   sec.Position,
			Visible:    visible,
			Settings:   settings,
		}); err != nil {
			return fmt.Errorf("section %s: %w", sec.ID, err)
		}
	}
	return nil
}

// scriptFor turns each step into the model reply the session will receive.
func scriptFor(steps []TurnStep) ([]string, error) {
	replies := make([]string, len(steps))
	for i, step := range steps {
		if step.Reply != "" {
			replies[i] = step.Reply
			continue
		}
		data, err := json.Marshal(map[string]any{"actions": step.Actions})
		if err != nil {
			return nil, fmt.Errorf("turns[%d]: actions are not JSON-encodable: %w", i, err)
		}
		replies[i] = string(data)
	}
	return replies, nil
}

func checkTurn(expect *TurnExpect, r agent.Report) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	if expect.Success != nil && *expect.Success != r.Success {
		errs = append(errs, fmt.Sprintf("expected success=%t, got %t (error: %s)", *expect.Success, r.Success, r.Error))
	}
	if expect.Mutations != nil && *expect.Mutations != len(r.Mutations) {
		errs = append(errs, fmt.Sprintf("expected %d mutations, got %d", *expect.Mutations, len(r.Mutations)))
	}
	if expect.ErrorContains != "" && !strings.Contains(r.Error, expect.ErrorContains) {
		errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", expect.ErrorContains, r.Error))
	}
	if expect.Explanation != "" && expect.Explanation != r.Explanation {
		errs = append(errs, fmt.Sprintf("expected explanation %q, got %q", expect.Explanation, r.Explanation))
	}
	return errs
}

// checkStoreAgreement reloads the merchant and compares the agent-facing
// parts of the document with the session's copy.
func checkStoreAgreement(ctx context.Context, src state.Source, merchantID string, held state.StoreState) error {
	fresh, err := src.Load(ctx, merchantID)
	if err != nil {
		return fmt.Errorf("reload for comparison failed: %w", err)
	}
	for _, part := range []struct {
		name        string
		held, fresh any
	}{
		{"brand", held.Brand, fresh.Brand},
		{"products", held.Products, fresh.Products},
		{"homepage", held.Homepage, fresh.Homepage},
		{"revision", held.Meta.Revision, fresh.Meta.Revision},
	} {
		a, err := json.Marshal(part.held)
		if err != nil {
			return err
		}
		b, err := json.Marshal(part.fresh)
		if err != nil {
			return err
		}
		if !bytes.Equal(a, b) {
			return fmt.Errorf("session %s diverged from store:\n  held:  %s\n  store: %s", part.name, a, b)
		}
	}
	return nil
}
