package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/engine"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Name string
}

// SeedResult is the output of the seed command.
type SeedResult struct {
	MerchantID    string `json:"merchant_id"`
	HeroSectionID string `json:"hero_section_id"`
	HeroCreated   bool   `json:"hero_created"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a merchant with an empty storefront",
		Long: `Create the merchant row and a default hero section.

Running seed again for an existing merchant leaves its data untouched.

Examples:
  storepilot seed -m acme --name "Acme Goods"
  storepilot seed -m acme --db postgres://localhost/store --driver pgx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "store name for a new merchant")
	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.Settings()
	if err != nil {
		return err
	}
	merchantID, err := requireMerchant(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	if err := st.EnsureMerchant(ctx, merchantID, opts.Name); err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to create merchant", err.Error())
	}

	sections, err := st.ListSections(ctx, merchantID, store.PageHome)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to read sections", err.Error())
	}
	result := SeedResult{MerchantID: merchantID}
	for _, s := range sections {
		if s.Kind == catalog.HeroType {
			result.HeroSectionID = s.ID
			break
		}
	}
	if result.HeroSectionID == "" {
		hero := store.Section{
			ID:         engine.UUIDv7Generator{}.Generate(),
			MerchantID: merchantID,
			Page:       store.PageHome,
			Kind:       catalog.HeroType,
			Zone:       state.ZoneHero,
			Visible:    true,
			Settings:   catalog.Default().Defaults(catalog.HeroType),
		}
		if err := st.InsertSection(ctx, hero); err != nil {
			return f.Fail(ExitFailure, ErrCodeStore, "failed to create hero section", err.Error())
		}
		result.HeroSectionID = hero.ID
		result.HeroCreated = true
	}

	if f.JSON() {
		return f.Success(result)
	}
	status := "exists"
	if result.HeroCreated {
		status = "created"
	}
	fmt.Fprintf(f.Writer, "✓ merchant %s ready (hero %s %s)\n", merchantID, result.HeroSectionID, status)
	return nil
}
