// Command court-analyse runs the analysis pipeline over a detection stream
// and writes the report, with optional diagnostics and persistence.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/fsutil"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/security"
	"github.com/banshee-data/court.report/internal/units"
	"github.com/banshee-data/court.report/internal/version"
	"github.com/banshee-data/court.report/internal/vision/l6shots"
	"github.com/banshee-data/court.report/internal/vision/monitor"
	"github.com/banshee-data/court.report/internal/vision/pipeline"
	"github.com/banshee-data/court.report/internal/vision/storage/sqlite"
)

var (
	inputPath  = flag.String("input", "", "Detection stream JSON file")
	videoID    = flag.String("video", "", "Video id; with -db and no -input the stream is loaded from the detection cache")
	configPath = flag.String("config", "", "Optional tuning config JSON overriding the sport defaults")
	outputPath = flag.String("output", "", "Report JSON output path (default stdout)")
	dbPath     = flag.String("db", "", "SQLite database for the detection cache and run history")
	plotPath   = flag.String("plot", "", "Write the event signal plot to this file (png, svg or pdf)")
	htmlPath   = flag.String("html", "", "Write the shot report HTML page to this file")
	speedUnits = flag.String("units", units.KMPH, "Speed units for the summary and charts ("+units.GetValidUnitsString()+")")
	raw        = flag.Bool("raw", false, "Skip the ball and player plausibility filters")
	omitReport = flag.Bool("omit-report", false, "Store only run summaries in the database")
	outDir     = flag.String("out-dir", "", "Confine -output, -plot and -html to this directory; relative names are placed in it")
	verbose    = flag.Bool("v", false, "Verbose pipeline logging")
	showVer    = flag.Bool("version", false, "Print version information and exit")
)

// options are the resolved command line settings of one invocation.
type options struct {
	Input      string
	VideoID    string
	Config     string
	Output     string
	DB         string
	Plot       string
	HTML       string
	Units      string
	OutDir     string
	Raw        bool
	OmitReport bool
	// FS receives every output file; nil means the OS filesystem.
	FS fsutil.FileSystem
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return
	}

	if *verbose {
		monitoring.SetLogger(log.Printf)
	} else {
		monitoring.SetLogger(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:      *inputPath,
		VideoID:    *videoID,
		Config:     *configPath,
		Output:     *outputPath,
		DB:         *dbPath,
		Plot:       *plotPath,
		HTML:       *htmlPath,
		Units:      *speedUnits,
		OutDir:     *outDir,
		Raw:        *raw,
		OmitReport: *omitReport,
	}
	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("court-analyse: %v", err)
	}
}

func run(ctx context.Context, o options, stdout, stderr io.Writer) error {
	if !units.IsValid(o.Units) {
		return fmt.Errorf("invalid units %q: valid options are %s", o.Units, units.GetValidUnitsString())
	}
	if o.Input == "" && (o.VideoID == "" || o.DB == "") {
		return errors.New("either -input or both -video and -db are required")
	}
	if o.FS == nil {
		o.FS = fsutil.OSFileSystem{}
	}
	for _, p := range []*string{&o.Output, &o.Plot, &o.HTML} {
		resolved, err := security.ResolveOutput(o.OutDir, *p)
		if err != nil {
			return err
		}
		*p = resolved
	}

	var override *config.TuningConfig
	if o.Config != "" {
		cfg, err := config.LoadTuningConfig(o.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		override = cfg
	}

	var db *sqlite.DB
	if o.DB != "" {
		lock := flock.New(o.DB + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock db: %w", err)
		}
		if !ok {
			return fmt.Errorf("database %s is in use by another run", o.DB)
		}
		defer func() { _ = lock.Unlock() }()

		if db, err = sqlite.Open(o.DB); err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
	}

	in, err := loadInput(ctx, o, db)
	if err != nil {
		return err
	}

	cfg, err := pipeline.ConfigFor(in, override)
	if err != nil {
		return err
	}

	popts := pipeline.Options{SkipFilters: o.Raw}
	if db != nil {
		popts.Sink = &pipeline.StoreSink{Runs: sqlite.NewAnalysisRunStore(db), OmitReport: o.OmitReport}
	}
	analyzer, err := pipeline.New(cfg, popts)
	if err != nil {
		return err
	}

	report, err := analyzer.Run(ctx, in)
	if err != nil {
		if report == nil {
			return fmt.Errorf("analyse %s: %w", in.VideoID, err)
		}
		// The report is complete; only persisting it failed.
		log.Printf("warning: %v", err)
	}

	if o.Output == "" {
		if err := encodeReport(stdout, report); err != nil {
			return err
		}
	} else if err := writeFile(o.FS, o.Output, func(w io.Writer) error { return encodeReport(w, report) }); err != nil {
		return err
	}
	if o.Plot != "" {
		format := strings.TrimPrefix(filepath.Ext(o.Plot), ".")
		if format == "" {
			format = "png"
		}
		err := writeFile(o.FS, o.Plot, func(w io.Writer) error {
			return monitor.WriteSignalPlot(w, format, in.VideoID, report.Signal, report.Events)
		})
		if err != nil {
			return err
		}
	}
	if o.HTML != "" {
		err := writeFile(o.FS, o.HTML, func(w io.Writer) error {
			return monitor.RenderShotReport(w, report.Shots, report.Stats, monitor.ChartOptions{
				Title: report.VideoID,
				Units: o.Units,
			})
		})
		if err != nil {
			return err
		}
	}
	printSummary(stderr, report, o.Units)
	return nil
}

// loadInput reads the stream from the input file, or from the detection
// cache by video id. A freshly read file is cached when a database is open.
func loadInput(ctx context.Context, o options, db *sqlite.DB) (*pipeline.Input, error) {
	if o.Input == "" {
		in, ok, err := pipeline.CachedInput(ctx, sqlite.NewDetectionCache(db), o.VideoID)
		if err != nil {
			return nil, fmt.Errorf("load cached detections: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("no cached detections for video %q", o.VideoID)
		}
		return in, nil
	}

	in, err := pipeline.LoadInput(o.Input)
	if err != nil {
		return nil, err
	}
	if o.VideoID != "" {
		in.VideoID = o.VideoID
	}
	if in.VideoID == "" {
		base := filepath.Base(o.Input)
		in.VideoID = security.SanitizeID(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if db != nil {
		if err := pipeline.CacheInput(ctx, sqlite.NewDetectionCache(db), in); err != nil {
			return nil, fmt.Errorf("cache detections: %w", err)
		}
	}
	return in, nil
}

func encodeReport(w io.Writer, report *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// writeFile creates path on fsys and hands it to write.
func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, r *pipeline.Report, unit string) {
	fmt.Fprintf(w, "%s (%s): %d frames, %d events, %d shots\n", r.VideoID, r.Sport, r.Frames, len(r.Events), len(r.Shots))
	if len(r.Shots) > 0 {
		rows := make([][]string, 0, len(r.Shots))
		for _, s := range r.Shots {
			rows = append(rows, []string{
				strconv.Itoa(s.EventIndex),
				fmt.Sprintf("%d-%d", s.StartFrame, s.EndFrame),
				string(s.Category),
				string(s.Direction),
				string(s.Intensity),
				participant(s),
				fmt.Sprintf("%.1f", s.DistanceMeters),
				fmt.Sprintf("%.1f", units.ConvertSpeed(s.SpeedKmh/3.6, unit)),
			})
		}
		headers := []string{"#", "Frames", "Shot", "Direction", "Intensity", "Player", "Distance (m)", "Speed (" + unit + ")"}
		fmt.Fprintln(w, renderTable(headers, rows, map[int]bool{0: true, 6: true, 7: true}))
	}
	final := r.Stats.Final()
	if r.Sport == config.SportCricket {
		fmt.Fprintf(w, "runs=%d balls=%d strike rate=%.1f\n", final.Runs, final.Balls, final.StrikeRate())
	}
	keys := make([]string, 0, len(r.Quality))
	for k, v := range r.Quality {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "quality %s=%d\n", k, r.Quality[k])
	}
}

func participant(s l6shots.ShotRecord) string {
	if s.Role == "" {
		return strconv.Itoa(int(s.ParticipantID))
	}
	return fmt.Sprintf("%s (%d)", s.Role, s.ParticipantID)
}
