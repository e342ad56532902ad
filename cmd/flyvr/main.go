package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	recordrun "github.com/albertlin1194/fly-vr/internal/cmd/record"
	cfgpkg "github.com/albertlin1194/fly-vr/internal/config"
	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
	pebblestore "github.com/albertlin1194/fly-vr/internal/storage/pebble"
	logpkg "github.com/albertlin1194/fly-vr/pkg/log"
)

func main() {
	level := os.Getenv("FLYVR_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "flyvr",
		Short: "FlyVR dataset logging CLI",
		Long:  "flyvr records experiment data streams into a single container and inspects recorded runs.",
	}
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Start a recording run",
		Long:  "Opens a fresh container (destroying any prior run at the same path), starts the dataset log server, and records until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			name, _ := cmd.Flags().GetString("name")
			metadata, _ := cmd.Flags().GetString("metadata")
			heartbeatMs, _ := cmd.Flags().GetInt("heartbeat-ms")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			queueDepth, _ := cmd.Flags().GetInt("queue-depth")
			skipBad, _ := cmd.Flags().GetBool("skip-bad-events")

			cfg, err := cfgpkg.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if dataDir == "" {
				dataDir = cfg.DataDir
			}
			if fsyncMode == "" {
				fsyncMode = cfg.Fsync
			}
			mode, err := pebblestore.ParseFsyncMode(fsyncMode)
			if err != nil {
				return err
			}
			if fsyncIntervalMs <= 0 {
				fsyncIntervalMs = cfg.FsyncIntervalMs
			}
			if !cmd.Flags().Changed("queue-depth") {
				queueDepth = cfg.QueueDepth
			}
			if !cmd.Flags().Changed("skip-bad-events") {
				skipBad = cfg.SkipBadEvents
			}

			return recordrun.Run(cmd.Context(), recordrun.Options{
				DataDir:           dataDir,
				ContainerName:     name,
				MetadataFile:      metadata,
				HeartbeatInterval: time.Duration(heartbeatMs) * time.Millisecond,
				Fsync:             mode,
				FsyncInterval:     time.Duration(fsyncIntervalMs) * time.Millisecond,
				QueueDepth:        queueDepth,
				SkipBadEvents:     skipBad,
				Config:            cfg,
			})
		},
	}
	cmd.Flags().String("config", "", "JSON config file")
	cmd.Flags().String("data-dir", "", "base data directory (default: OS data dir)")
	cmd.Flags().String("name", "container", "container directory name for this run")
	cmd.Flags().String("metadata", "", "JSON file logged under /experiment at startup")
	cmd.Flags().Int("heartbeat-ms", 0, "log a heartbeat row every N ms (0 disables)")
	cmd.Flags().String("fsync", "", "fsync mode: always|interval|never")
	cmd.Flags().Int("fsync-interval-ms", 0, "group-commit window for --fsync=interval")
	cmd.Flags().Int("queue-depth", 0, "event queue bound (0 = unbounded)")
	cmd.Flags().Bool("skip-bad-events", false, "log and skip per-event data errors instead of aborting")
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <container-dir>",
		Short: "Inspect a recorded container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dumpPath, _ := cmd.Flags().GetString("dataset")
			maxRows, _ := cmd.Flags().GetInt("rows")

			db, err := pebblestore.Open(pebblestore.Options{
				DataDir: args[0],
				Fsync:   pebblestore.FsyncModeNever,
			})
			if err != nil {
				return fmt.Errorf("open container: %w", err)
			}
			defer db.Close()
			store := dataset.New(db)

			if dumpPath != "" {
				return dumpDataset(store, dumpPath, maxRows)
			}
			return listContainer(store)
		},
	}
	cmd.Flags().String("dataset", "", "dump this dataset's rows instead of listing")
	cmd.Flags().Int("rows", 20, "max rows to dump")
	return cmd
}

func listContainer(store *dataset.Store) error {
	descs, err := store.List()
	if err != nil {
		return err
	}
	for _, d := range descs {
		fmt.Printf("dataset %-30s dtype=%s shape=%v\n", d.Path, d.Dtype, d.Shape)
	}
	leaves, err := store.ListLeaves()
	if err != nil {
		return err
	}
	for _, path := range leaves {
		raw, err := store.GetLeaf(path)
		if err != nil {
			return err
		}
		v, err := logevent.Decode(raw)
		if err != nil {
			fmt.Printf("leaf    %-30s <undecodable: %v>\n", path, err)
			continue
		}
		fmt.Printf("leaf    %-30s %s=%s\n", path, v.Kind(), formatLeaf(v))
	}
	return nil
}

func dumpDataset(store *dataset.Store, path string, maxRows int) error {
	desc, err := store.Describe(path)
	if err != nil {
		return err
	}
	n := desc.Shape[0]
	if n > maxRows {
		n = maxRows
	}
	a, err := store.ReadRows(path, 0, n)
	if err != nil {
		return err
	}
	vals := a.Float64s()
	width := a.RowWidth()
	for r := 0; r < a.Rows(); r++ {
		fmt.Printf("%6d  %v\n", r, vals[r*width:(r+1)*width])
	}
	if desc.Shape[0] > n {
		fmt.Printf("... %d more rows\n", desc.Shape[0]-n)
	}
	return nil
}

func formatLeaf(v logevent.Value) string {
	switch v.Kind() {
	case logevent.KindNull:
		return "null"
	case logevent.KindBool:
		return fmt.Sprintf("%v", v.AsBool())
	case logevent.KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case logevent.KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case logevent.KindString:
		return v.AsString()
	case logevent.KindBytes:
		return fmt.Sprintf("%d bytes", len(v.AsBytes()))
	case logevent.KindListScalar:
		return fmt.Sprintf("%v", v.AsFloats())
	case logevent.KindListString:
		return fmt.Sprintf("%q", v.AsStrings())
	case logevent.KindArray:
		a := v.AsArray()
		return fmt.Sprintf("array dtype=%s shape=%v", a.Dtype, a.Shape)
	default:
		return "?"
	}
}
