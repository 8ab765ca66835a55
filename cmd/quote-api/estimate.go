package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/landclear/quote-planner/internal/geocoding"
	"github.com/landclear/quote-planner/internal/handlers/v1alpha1/mappers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

type estimateOptions struct {
	address   string
	zipCode   string
	lat       float64
	lng       float64
	acres     float64
	pkg       string
	urgency   string
	obstacles []string
	concerns  []string
	output    string
}

var estimateOpts estimateOptions

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Price a job from the command line without storing a quote",
	Example: `  quote-api estimate --address "12 Farm Rd, Concord, NC 28025" --acres 5 --package medium
  quote-api estimate --lat 35.41 --lng -80.58 --acres 2.5 --package large --urgency emergency -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, params, err := estimateOpts.request(cmd)
		if err != nil {
			return err
		}

		cfg, flush, err := loadConfig()
		if err != nil {
			return err
		}
		defer flush()

		assembler, err := newAssembler(cfg)
		if err != nil {
			return fmt.Errorf("loading pricing tables: %w", err)
		}

		resolver, err := newResolver(cfg, assembler.Tables())
		if err != nil {
			return err
		}

		loc, err := resolver.ResolveLocation(cmd.Context(), q)
		if err != nil {
			return err
		}

		est, err := assembler.ComputeEstimate(loc, params)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), estimateOpts.output, mappers.EstimateResponseToApi(est, loc))
	},
}

func init() {
	addEstimateFlags(estimateCmd.Flags(), &estimateOpts)

	estimateCmd.MarkFlagsRequiredTogether("lat", "lng")
	_ = estimateCmd.MarkFlagRequired("acres")
}

func addEstimateFlags(f *pflag.FlagSet, o *estimateOptions) {
	f.StringVar(&o.address, "address", "", "Street address of the property")
	f.StringVar(&o.zipCode, "zip", "", "ZIP code of the property")
	f.Float64Var(&o.lat, "lat", 0, "Latitude of the pin")
	f.Float64Var(&o.lng, "lng", 0, "Longitude of the pin")
	f.Float64Var(&o.acres, "acres", 0, "Acreage to clear")
	f.StringVar(&o.pkg, "package", string(estimation.PackageMedium), "Clearing package (small, medium, large, xlarge)")
	f.StringVar(&o.urgency, "urgency", string(estimation.UrgencyStandard), "Scheduling urgency (standard, priority, emergency)")
	f.StringSliceVar(&o.obstacles, "obstacle", nil, "Obstacle on the site, repeatable")
	f.StringSliceVar(&o.concerns, "concern", nil, "Access concern, repeatable")
	f.StringVarP(&o.output, "output", "o", "json", "Output format (json or yaml)")
}

func (o estimateOptions) request(cmd *cobra.Command) (geocoding.LocationQuery, estimation.ProjectParameters, error) {
	q := geocoding.LocationQuery{Address: o.address, ZipCode: o.zipCode}
	if cmd.Flags().Changed("lat") {
		q.Coordinates = &geo.Coordinates{Lat: o.lat, Lng: o.lng}
	}
	if q.Address == "" && q.ZipCode == "" && q.Coordinates == nil {
		return q, estimation.ProjectParameters{}, fmt.Errorf("one of --address, --zip or --lat/--lng is required")
	}

	params := estimation.ProjectParameters{
		Acreage:        o.acres,
		Package:        estimation.PackageType(o.pkg),
		Urgency:        estimation.UrgencyTier(o.urgency),
		Obstacles:      o.obstacles,
		AccessConcerns: o.concerns,
	}
	return q, params, nil
}

func writeOutput(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}
