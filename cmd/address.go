package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityofphiladelphia/ais/internal/db"
	"github.com/cityofphiladelphia/ais/internal/geometry"
	"github.com/cityofphiladelphia/ais/internal/geospatial"
)

var addressCmd = &cobra.Command{
	Use:   "address <street_address>...",
	Short: "Look up addresses and render them as GeoJSON",
	Long:  "Fetches normalized addresses from the AIS database and renders them with their geometry, tags and containing service areas. One match renders a Feature; anything else renders a FeatureCollection.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAddress,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func runAddress(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("address"); err != nil {
		return err
	}
	opts, err := optionsFromFlags(cmd, cfg.Serializer)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg.Store.DatabaseURL, &db.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	return lookupAndWrite(ctx, cmd.OutOrStdout(), pool, opts, args,
		geospatial.WithGeocodePriority(cfg.Store.GeocodePriority))
}

// lookupAndWrite fetches the requested addresses through pool and renders
// them to w.
func lookupAndWrite(ctx context.Context, w io.Writer, pool db.Pool, opts renderOptions, streets []string, storeOpts ...geospatial.StoreOption) error {
	store := geospatial.NewPostgresStore(pool, storeOpts...)

	if opts.summary {
		summaries, err := store.GetAddressSummaries(ctx, streets)
		if err != nil {
			return err
		}
		zap.L().Debug("address: summaries fetched", zap.Int("requested", len(streets)), zap.Int("found", len(summaries)))
		return writeSummaries(w, opts, streets, summaries)
	}

	addresses, err := store.GetAddresses(ctx, streets)
	if err != nil {
		return err
	}
	zap.L().Debug("address: addresses fetched", zap.Int("requested", len(streets)), zap.Int("found", len(addresses)))

	projector := geometry.NewProjector()
	defer projector.Close()

	return writeAddresses(ctx, w, opts, streets, addresses, projector, geospatial.NewPostgresServiceAreas(pool))
}
