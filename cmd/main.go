package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kass/go-quadgrid/pkg/cellindex"
	"github.com/kass/go-quadgrid/pkg/export"
	"github.com/kass/go-quadgrid/pkg/quadgrid"
	"github.com/kass/go-quadgrid/pkg/region"
	"github.com/kass/go-quadgrid/pkg/store"
)

var (
	gridFile string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "quadgrid",
	Short: "Quadcell uniform-resolution grid toolkit",
	Long:  `Generate quadtree-identified lat/lon grids at arbitrary resolutions, mask them against regions and compute distances and areas.`,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a grid and save it",
	Long:  `Construct a quadgrid at the given resolution and bounds, compute qids and areas, and save it to the grid file.`,
	RunE:  runBuild,
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Mask the grid against a GeoJSON region",
	Long:  `Classify every cell centroid of the saved grid as inside or outside a GeoJSON region and save the result.`,
	RunE:  runMask,
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Compute centroid distances from a point",
	Long:  `Compute the great-circle distance in km from a reference point to every cell centroid of the saved grid.`,
	RunE:  runDistance,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the grid as GeoJSON or a flat table",
	RunE:  runExport,
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Push the grid into PostGIS",
	Long:  `Write every cell of the saved grid into a PostGIS table with its qid, centroid, area and mask flag.`,
	RunE:  runStore,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the cells nearest to a point",
	RunE:  runNearest,
}

var (
	resolution   float64
	lonFrom      float64
	lonTo        float64
	latFrom      float64
	latTo        float64
	regionFile   string
	bufferDeg    float64
	refLon       float64
	refLat       float64
	exportFormat string
	outputFile   string
	numNeighbors int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&gridFile, "file", "f", "quadgrid.gob", "Grid file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	buildCmd.Flags().Float64VarP(&resolution, "resolution", "r", 1.0, "Resolution in decimal degrees")
	buildCmd.Flags().Float64Var(&lonFrom, "lon-from", -180, "Western longitude bound")
	buildCmd.Flags().Float64Var(&lonTo, "lon-to", 180, "Eastern longitude bound")
	buildCmd.Flags().Float64Var(&latFrom, "lat-from", -90, "Southern latitude bound")
	buildCmd.Flags().Float64Var(&latTo, "lat-to", 90, "Northern latitude bound")

	maskCmd.Flags().StringVar(&regionFile, "region", "", "GeoJSON region file (geometry, feature or collection)")
	maskCmd.Flags().Float64Var(&bufferDeg, "buffer", quadgrid.AutoBuffer, "Buffer distance in degrees (0 for none, default auto)")
	maskCmd.MarkFlagRequired("region")

	distanceCmd.Flags().Float64Var(&refLon, "lon", 0, "Reference longitude")
	distanceCmd.Flags().Float64Var(&refLat, "lat", 0, "Reference latitude")

	exportCmd.Flags().StringVar(&exportFormat, "format", "geojson", "Output format: geojson or table")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")

	nearestCmd.Flags().Float64Var(&refLon, "lon", 0, "Reference longitude")
	nearestCmd.Flags().Float64Var(&refLat, "lat", 0, "Reference latitude")
	nearestCmd.Flags().IntVarP(&numNeighbors, "neighbors", "n", 5, "Number of cells to return")

	rootCmd.AddCommand(buildCmd, maskCmd, distanceCmd, exportCmd, storeCmd, nearestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	g, err := quadgrid.New(resolution, quadgrid.Bounds{
		LonFrom: lonFrom, LonTo: lonTo, LatFrom: latFrom, LatTo: latTo,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Built %s in %v\n", g, time.Since(start))
	fmt.Printf("  %d rows x %d cols = %d cells\n", g.NRows(), g.NCols(), g.NCells())
	fmt.Printf("  total area: %.0f km2\n", g.TotalAreaKm2())
	if verbose {
		fmt.Printf("  quadtree levels: %d\n", g.Key().Levels())
		fmt.Printf("  row offset %d, col offset %d\n", g.RowOffset(), g.ColOffset())
	}

	if err := g.SaveToFile(gridFile); err != nil {
		return err
	}
	fmt.Printf("Saved grid to %s\n", gridFile)
	return nil
}

func runMask(cmd *cobra.Command, args []string) error {
	g, err := quadgrid.LoadFromFile(gridFile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(regionFile)
	if err != nil {
		return fmt.Errorf("failed to read region file: %w", err)
	}
	r, err := region.FromGeoJSON(data)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := g.ApplyMask(r, bufferDeg); err != nil {
		return err
	}
	fmt.Printf("Masked %d cells in %v: %d inside (%.1f%%)\n",
		g.NCells(), time.Since(start), g.MaskedCount(),
		100*float64(g.MaskedCount())/float64(g.NCells()))
	fmt.Printf("  masked area: %.0f km2\n", g.MaskedAreaKm2())

	return g.SaveToFile(gridFile)
}

func runDistance(cmd *cobra.Command, args []string) error {
	g, err := quadgrid.LoadFromFile(gridFile)
	if err != nil {
		return err
	}

	start := time.Now()
	dists, err := g.Distance(refLon, refLat)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Computed %d distances from (%.4f, %.4f) in %v\n", len(dists), refLon, refLat, elapsed)
	fmt.Printf("  min %.1f km | mean %.1f km | max %.1f km\n",
		floats.Min(dists), stat.Mean(dists, nil), floats.Max(dists))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	g, err := quadgrid.LoadFromFile(gridFile)
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "geojson":
		data, err = json.Marshal(export.FeatureCollection(g))
	case "table":
		data, err = json.MarshalIndent(export.Table(g), "", "  ")
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if outputFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Exported %d cells to %s\n", g.NCells(), outputFile)
	return nil
}

func runStore(cmd *cobra.Command, args []string) error {
	g, err := quadgrid.LoadFromFile(gridFile)
	if err != nil {
		return err
	}

	// Database settings come from the environment, optionally via .env.
	godotenv.Load()
	host := envOr("POSTGIS_HOST", "localhost")
	port, err := strconv.Atoi(envOr("POSTGIS_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid POSTGIS_PORT: %w", err)
	}
	user := envOr("POSTGIS_USER", "postgres")
	password := os.Getenv("POSTGIS_PASSWORD")
	dbname := envOr("POSTGIS_DB", "quadgrid")

	s, err := store.Open(host, port, user, password, dbname)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.InitSchema(); err != nil {
		return err
	}

	start := time.Now()
	if err := s.InsertGrid(g); err != nil {
		return err
	}
	fmt.Printf("Inserted %d cells in %v\n", g.NCells(), time.Since(start))

	if err := s.CreateSpatialIndex(); err != nil {
		return err
	}
	fmt.Println("Created spatial index on centroids")
	return nil
}

func runNearest(cmd *cobra.Command, args []string) error {
	g, err := quadgrid.LoadFromFile(gridFile)
	if err != nil {
		return err
	}

	ix := cellindex.New()
	start := time.Now()
	if err := ix.IndexGrid(g); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Indexed %d cells in %v\n", ix.Size(), time.Since(start))
	}

	cells := ix.NearestCells(refLon, refLat, numNeighbors)
	fmt.Printf("%d cells nearest to (%.4f, %.4f):\n", len(cells), refLon, refLat)
	for _, cell := range cells {
		fmt.Printf("  qid %-12d centroid (%8.3f, %7.3f)  %8.1f km  area %.1f km2\n",
			cell.Qid, cell.Lon, cell.Lat,
			quadgrid.Haversine(refLon, refLat, cell.Lon, cell.Lat), cell.AreaKm2)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
