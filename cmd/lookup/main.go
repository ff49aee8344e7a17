package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"airport-data/internal/airportdata"
	"airport-data/internal/models"
	"airport-data/internal/services"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

func main() {
	tablePath := flag.String("table", "", "Artifact to inspect (default: bundled table)")
	get := flag.String("get", "", "Print the airport with this ICAO code")
	search := flag.String("search", "", "Print airports whose code starts with this prefix")
	limit := flag.Int("limit", services.DefaultSearchLimit, "Maximum search results")
	stats := flag.Bool("stats", false, "Print coverage statistics")
	asJSON := flag.Bool("json", false, "Print JSON instead of text")
	flag.Parse()

	ctx := context.Background()
	logger := logging.NewStructuredLogger("airport-lookup", "1.0.0", logging.WarnLevel)
	// nothing is scraped from a one-shot CLI
	metricsCollector := metrics.NewCollector("airport_lookup", prometheus.NewRegistry())

	var lookup *services.LookupService
	if *tablePath != "" {
		lookup = services.NewLookupServiceFromFile(ctx, *tablePath, logger, metricsCollector)
	} else {
		table, err := airportdata.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bundled table is unusable: %v\n", err)
			os.Exit(1)
		}
		lookup = services.NewLookupService(table, logger, metricsCollector)
	}
	if !lookup.IsAvailable() {
		fmt.Fprintln(os.Stderr, "No airport table available")
		os.Exit(1)
	}

	out := os.Stdout
	switch {
	case *get != "":
		ap, ok := lookup.AirportByICAO(*get)
		if !ok {
			fmt.Fprintf(os.Stderr, "Airport %s not found\n", strings.ToUpper(strings.TrimSpace(*get)))
			os.Exit(2)
		}
		if *asJSON {
			writeJSON(out, ap)
			return
		}
		printAirport(out, ap)
	case *search != "":
		results := lookup.SearchAirports(*search, *limit)
		if *asJSON {
			writeJSON(out, results)
			return
		}
		fmt.Fprintf(out, "%d match(es) for %q\n", len(results), *search)
		for _, ap := range results {
			fmt.Fprintf(out, "  %-4s  %-50s  %s\n", ap.ICAO, ap.Name, ap.Region)
		}
	case *stats:
		st := services.NewStatisticsService(lookup, logger).Calculate(ctx)
		if *asJSON {
			writeJSON(out, st)
			return
		}
		printStats(out, st)
	default:
		meta := lookup.Meta()
		if *asJSON {
			writeJSON(out, meta)
			return
		}
		printMeta(out, meta)
	}
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func printMeta(w io.Writer, meta models.TableMeta) {
	fmt.Fprintln(w, strings.Repeat("═", 64))
	fmt.Fprintln(w, "AIRPORT TABLE")
	fmt.Fprintln(w, strings.Repeat("═", 64))
	fmt.Fprintf(w, "Generated:  %s\n", meta.Generated)
	fmt.Fprintf(w, "Source:     %s (%s)\n", meta.Source, meta.SourceURL)
	fmt.Fprintf(w, "Coverage:   %s\n", meta.Coverage)
	fmt.Fprintf(w, "Airports:   %d\n", meta.Count)
}

func printAirport(w io.Writer, ap models.ExpandedAirport) {
	fmt.Fprintf(w, "%s  %s\n", ap.ICAO, ap.Name)
	fmt.Fprintf(w, "  Type:       %s\n", ap.Type)
	fmt.Fprintf(w, "  Location:   %.4f, %.4f  (%s, %s)\n", ap.Latitude, ap.Longitude, ap.Municipality, ap.Region)
	fmt.Fprintf(w, "  Elevation:  %d ft\n", ap.ElevationFt)
	if len(ap.Runways) == 0 {
		fmt.Fprintln(w, "  Runways:    none")
		return
	}
	fmt.Fprintf(w, "  Runways:    %d\n", len(ap.Runways))
	for _, rw := range ap.Runways {
		fmt.Fprintf(w, "    %-9s %6d x %-4d ft  %-9s  %s %03d° / %s %03d°\n",
			rw.ID, rw.LengthFt, rw.WidthFt, rw.Surface,
			rw.Low.Ident, rw.Low.HeadingTrue, rw.High.Ident, rw.High.HeadingTrue)
	}
}

func printStats(w io.Writer, st services.TableStatistics) {
	fmt.Fprintf(w, "Airports: %d (%d without runways)\n", st.Airports, st.AirportsNoRunways)
	fmt.Fprintf(w, "Runways:  %d\n", st.Runways)
	if st.LongestRunway != nil {
		fmt.Fprintf(w, "Longest:  %s %s (%d ft)\n", st.LongestRunway.ICAO, st.LongestRunway.RunwayID, st.LongestRunway.LengthFt)
	}
	fmt.Fprintln(w, "Top countries:")
	for _, c := range st.TopCountries(10) {
		fmt.Fprintf(w, "  %-3s %d\n", c.Country, c.Airports)
	}
}
