package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityofphiladelphia/ais/internal/address"
	"github.com/cityofphiladelphia/ais/internal/fixture"
	"github.com/cityofphiladelphia/ais/internal/geometry"
	"github.com/cityofphiladelphia/ais/internal/geospatial"
	"github.com/cityofphiladelphia/ais/internal/model"
)

var renderCmd = &cobra.Command{
	Use:   "render [street_address...]",
	Short: "Render addresses from a fixture file",
	Long:  "Renders addresses and summaries stored in a YAML fixture file as GeoJSON, using the service areas recorded in the same file. With no arguments every record is rendered.",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("fixtures", "", "path to a YAML fixture file (required)")
	_ = renderCmd.MarkFlagRequired("fixtures")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("render"); err != nil {
		return err
	}
	opts, err := optionsFromFlags(cmd, cfg.Serializer)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("fixtures")
	set, err := fixture.Load(path)
	if err != nil {
		return err
	}
	zap.L().Debug("render: fixtures loaded",
		zap.String("path", path),
		zap.Int("addresses", len(set.Addresses)),
		zap.Int("summaries", len(set.Summaries)),
	)

	out := cmd.OutOrStdout()
	if opts.summary {
		summaries := set.Summaries
		if len(args) > 0 {
			summaries = findSummaries(set.Summaries, args)
		}
		return writeSummaries(out, opts, args, summaries)
	}

	addresses := set.Addresses
	if len(args) > 0 {
		addresses = set.Find(args)
	}

	projector := geometry.NewProjector()
	defer projector.Close()

	return writeAddresses(cmd.Context(), out, opts, args, addresses, projector, set.ServiceAreas)
}

func findSummaries(all []model.AddressSummary, streets []string) []model.AddressSummary {
	byStreet := make(map[string]int, len(all))
	for i := range all {
		byStreet[all[i].StreetAddress] = i
	}
	var out []model.AddressSummary
	for _, s := range streets {
		if i, ok := byStreet[s]; ok {
			out = append(out, all[i])
		}
	}
	return out
}

// writeAddresses renders a single Feature when exactly one address was asked
// for and found, and a paginated FeatureCollection otherwise.
func writeAddresses(ctx context.Context, w io.Writer, opts renderOptions, query []string, addresses []model.Address, projector address.Projector, areas geospatial.ServiceAreaSource) error {
	metadata := opts.metadataFor("address", query)

	if len(query) == 1 && len(addresses) == 1 {
		s, err := address.NewSerializer(opts.addressConfig(metadata, nil), projector, areas)
		if err != nil {
			return err
		}
		doc, err := s.Serialize(ctx, &addresses[0])
		if err != nil {
			return eris.Wrap(err, "render: serialize address")
		}
		_, err = fmt.Fprintln(w, doc)
		return err
	}

	start, end, pagination := opts.paginate(len(addresses))
	s, err := address.NewSerializer(opts.addressConfig(metadata, pagination), projector, areas)
	if err != nil {
		return err
	}
	doc, err := s.SerializeMany(ctx, addresses[start:end])
	if err != nil {
		return eris.Wrap(err, "render: serialize addresses")
	}
	_, err = fmt.Fprintln(w, doc)
	return err
}

func writeSummaries(w io.Writer, opts renderOptions, query []string, summaries []model.AddressSummary) error {
	metadata := opts.metadataFor("address_summary", query)

	if len(query) == 1 && len(summaries) == 1 {
		doc, err := address.NewSummarySerializer(opts.rendererConfig(metadata, nil)).Serialize(&summaries[0])
		if err != nil {
			return eris.Wrap(err, "render: serialize summary")
		}
		_, err = fmt.Fprintln(w, doc)
		return err
	}

	start, end, pagination := opts.paginate(len(summaries))
	doc, err := address.NewSummarySerializer(opts.rendererConfig(metadata, pagination)).SerializeMany(summaries[start:end])
	if err != nil {
		return eris.Wrap(err, "render: serialize summaries")
	}
	_, err = fmt.Fprintln(w, doc)
	return err
}
