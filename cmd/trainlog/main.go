package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasjlepore/trainlog"
	"github.com/lucasjlepore/trainlog/pipeline"
	"github.com/lucasjlepore/trainlog/store"
	"github.com/lucasjlepore/trainlog/trackimport"
)

func main() {
	var (
		storePath  = flag.String("store", "trainlog.db", "Record store path (.db|.sqlite, .parquet, or .xlsx)")
		configPath = flag.String("config", "", "Path to YAML config file")
		ftp        = flag.Float64("ftp", 0, "FTP override in watts")
		dailyCSV   = flag.String("daily-csv", "", "Write the processed daily series to this CSV path")
		sportHint  = flag.String("sport", "", "Sport override for track imports: cycling|running")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--store trainlog.db] [--config trainlog.yaml] [--ftp 250] [--daily-csv daily.csv] [track files: .fit|.gpx]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	cfg := trainlog.DefaultConfig()
	if *configPath != "" {
		loaded, err := trainlog.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "trainlog: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *ftp > 0 {
		cfg.FTPWatts = *ftp
	}

	hint, err := parseSportHint(*sportHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: %v\n", err)
		os.Exit(2)
	}

	tracks, err := importTracks(flag.Args(), cfg, hint, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: %v\n", err)
		os.Exit(1)
	}

	st, closeStore, err := openStore(*storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	result, err := pipeline.Run(pipeline.Options{
		Store:        st,
		Config:       cfg,
		Logger:       logger,
		TrackImports: tracks,
		DailyCSVPath: *dailyCSV,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("trainlog complete\n")
	fmt.Printf("records:        %d\n", len(result.Records))
	fmt.Printf("days:           %d\n", len(result.Days))
	if result.Report.Accepted+result.Report.Replaced+result.Report.SkippedDuplicate+result.Report.Rejected > 0 {
		fmt.Printf("accepted:       %d\n", result.Report.Accepted)
		fmt.Printf("replaced:       %d\n", result.Report.Replaced)
		fmt.Printf("skipped dupes:  %d\n", result.Report.SkippedDuplicate)
		fmt.Printf("rejected:       %d\n", result.Report.Rejected)
	}
	fmt.Printf("TSS (7d):       %.1f\n", result.KPIs.TSS7dSum)
	fmt.Printf("CTL:            %.1f\n", result.KPIs.CTL)
	fmt.Printf("ATL:            %.1f\n", result.KPIs.ATL)
	fmt.Printf("TSB:            %.1f\n", result.KPIs.TSB)
	fmt.Printf("sleep avg (7d): %.1f\n", result.KPIs.SleepAvg7d)
	if result.DailyCSVPath != "" {
		fmt.Printf("daily series:   %s\n", result.DailyCSVPath)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainlog: build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func parseSportHint(s string) (trainlog.Sport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return trainlog.SportUnknown, nil
	case "cycling":
		return trainlog.SportCycling, nil
	case "running":
		return trainlog.SportRunning, nil
	default:
		return trainlog.SportUnknown, fmt.Errorf("unknown sport %q (expected cycling|running)", s)
	}
}

func importTracks(paths []string, cfg trainlog.Config, hint trainlog.Sport, logger *zap.Logger) ([]trainlog.SessionRecord, error) {
	records := make([]trainlog.SessionRecord, 0, len(paths))
	for _, path := range paths {
		var (
			ts  trackimport.TrackSession
			err error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".fit":
			ts, err = trackimport.FromFITFile(path, cfg)
		case ".gpx":
			ts, err = trackimport.FromGPXFile(path, cfg)
		default:
			return nil, fmt.Errorf("unsupported track file %q (expected .fit or .gpx)", path)
		}
		if err != nil {
			return nil, err
		}
		rec := ts.ToRecord(hint)
		logger.Info("track imported",
			zap.String("path", path),
			zap.String("sport", string(rec.Sport)),
			zap.Time("date", rec.Date),
		)
		records = append(records, rec)
	}
	return records, nil
}

func openStore(path string) (store.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		st, err := store.OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return st, func() { st.Close() }, nil
	case ".parquet":
		return store.NewParquetStore(path), noop, nil
	case ".xlsx":
		return store.NewXLSXStore(path), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store path %q (expected .db, .sqlite, .parquet, or .xlsx)", path)
	}
}
