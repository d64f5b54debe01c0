package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityofphiladelphia/ais/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ais",
	Short: "Address information system GeoJSON tools",
	Long:  "Looks up normalized Philadelphia addresses and renders them, with geometry, tags and service areas, as GeoJSON features.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("geom-type", "", "geometry to render: centroid or parcel (default from config)")
	rootCmd.PersistentFlags().String("geom-source", "", "geocode type for centroid, or pwd_parcel/dor_parcel for parcel")
	rootCmd.PersistentFlags().Int("srid", 0, "output spatial reference (default from config)")
	rootCmd.PersistentFlags().Int("page", 1, "page of results to render")
	rootCmd.PersistentFlags().Int("limit", 0, "results per page; 0 renders everything")
	rootCmd.PersistentFlags().Bool("summary", false, "render the address summary read model")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
