package itembank

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Guardian identifiers recorded in repository metadata.
const (
	GuardianName        = "ItemMetadataGuardian"
	metaGuardianOptions = "metadata_guardian.options"
	metaImporterPrefix  = "metadata_importer."
)

// GuardianOptions configures the item metadata guardian: during item import
// it looks up existing items by the value found at ExpectedPath and matches
// them on PropertyURI.
type GuardianOptions struct {
	Key          string   `json:"-"`
	ExpectedPath []string `json:"expected_path"`
	PropertyURI  string   `json:"property_uri"`
}

// DefaultGuardianOptions guards items on their LOM label.
func DefaultGuardianOptions() GuardianOptions {
	return GuardianOptions{
		Key: "guardian",
		ExpectedPath: []string{
			"http://ltsc.ieee.org/xsd/LOM#lom",
			"http://www.w3.org/2000/01/rdf-schema#label",
		},
		PropertyURI: "http://www.w3.org/2000/01/rdf-schema#label",
	}
}

// ConfigureMetadataGuardian stores opts and registers the guardian with the
// metadata importer under opts.Key. Running it again overwrites both.
func (in *Installer) ConfigureMetadataGuardian(ctx context.Context, opts GuardianOptions) error {
	if opts.Key == "" || opts.PropertyURI == "" || len(opts.ExpectedPath) == 0 {
		return fmt.Errorf("itembank: guardian: key, property and expected path are required")
	}
	encoded, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("itembank: guardian: %w", err)
	}
	if err := in.store.SetMetadata(metaGuardianOptions, string(encoded)); err != nil {
		return fmt.Errorf("itembank: guardian: %w", err)
	}
	if err := in.store.SetMetadata(metaImporterPrefix+opts.Key, GuardianName); err != nil {
		return fmt.Errorf("itembank: guardian: %w", err)
	}
	in.logger.Info("Metadata guardian configured and registered",
		zap.String("key", opts.Key),
		zap.Strings("expected_path", opts.ExpectedPath),
		zap.String("property", opts.PropertyURI))
	return nil
}

// MetadataGuardian returns the stored guardian options and whether a
// guardian is registered under key.
func (in *Installer) MetadataGuardian(ctx context.Context, key string) (GuardianOptions, bool, error) {
	registered, err := in.store.GetMetadata(metaImporterPrefix + key)
	if err != nil {
		return GuardianOptions{}, false, fmt.Errorf("itembank: guardian: %w", err)
	}
	if registered != GuardianName {
		return GuardianOptions{}, false, nil
	}
	raw, err := in.store.GetMetadata(metaGuardianOptions)
	if err != nil {
		return GuardianOptions{}, false, fmt.Errorf("itembank: guardian: %w", err)
	}
	var opts GuardianOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return GuardianOptions{}, false, fmt.Errorf("itembank: guardian options: %w", err)
	}
	opts.Key = key
	return opts, true, nil
}

// Install runs the install actions in order: pending migrations, then the
// metadata guardian with opts.
func (in *Installer) Install(ctx context.Context, opts GuardianOptions) ([]string, error) {
	applied, err := in.Migrate(ctx)
	if err != nil {
		return applied, err
	}
	return applied, in.ConfigureMetadataGuardian(ctx, opts)
}
