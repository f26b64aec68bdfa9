package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/jsonfs/internal/config"
	"github.com/dendrascience/jsonfs/internal/logging"
	"github.com/dendrascience/jsonfs/jsonfs"
	"github.com/dendrascience/jsonfs/util"
	"github.com/dendrascience/jsonfs/version"
	"github.com/dendrascience/jsonfs/watch"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand for the jsonfs CLI.
// It handles mounting a JSON document at a mountpoint.
func NewMountCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "mount DOCUMENT MOUNTPOINT",
		Short: "Mount a JSON document as a read-only filesystem",
		Long: `Mount a JSON document at the specified mountpoint.

DOCUMENT is the path to the JSON file. Its root must be an object or array.
MOUNTPOINT is an existing directory that does not contain DOCUMENT.

The filesystem is served in the foreground until interrupted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Document, cfg.Mountpoint = args[0], args[1]
			flags := cmd.Flags()
			cfg.ApplyEnv(os.Getenv, flags.Changed("log-level"), flags.Changed("log-file"))
			return runMount(cmd.Context(), &cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&cfg.Watch, "watch", "w", false, "Reload the document when it changes")
	flags.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Quiet period before a change triggers a reload")
	flags.DurationVar(&cfg.AttrTimeout, "attr-timeout", cfg.AttrTimeout, "How long the kernel may cache attributes and lookups")
	flags.BoolVar(&cfg.AllowOther, "allow-other", false, "Allow other users to access the mount")
	flags.StringVar(&cfg.FSName, "fsname", "", "Filesystem name shown in the mount table (default: document base name)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error ($"+config.EnvLogLevel+")")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Also write logs to this file, rotated by size ($"+config.EnvLogFile+")")
	flags.BoolVar(&cfg.LogJSON, "log-json", false, "Write logs as JSON lines")

	return cmd
}

func mountOptions(cfg *config.Config) []fuse.MountOption {
	opts := []fuse.MountOption{
		fuse.FSName(cfg.FSName),
		fuse.Subtype("jsonfs"),
		fuse.ReadOnly(),
	}
	if cfg.AllowOther {
		opts = append(opts, fuse.AllowOther())
	}
	return opts
}

func fsOptions(cfg *config.Config) jsonfs.Options {
	return jsonfs.Options{
		AttrValid: cfg.AttrTimeout,
		// a watched document changes under the page cache
		DirectIO: cfg.Watch,
	}
}

func runMount(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logOpts, err := cfg.LoggerOptions()
	if err != nil {
		return err
	}
	logger := logging.New(logOpts)
	defer logger.Close()

	logger.Info("jsonfs %s starting", version.GetFullVersion())

	store, err := jsonfs.Open(cfg.Document, jsonfs.WithLogger(logger.Named("store")))
	if err != nil {
		return err
	}
	filesystem := jsonfs.NewFS(store, fsOptions(cfg))

	if logger.Enabled(logging.Debug) {
		fuseLog := logger.Named("fuse")
		fuse.Debug = func(msg interface{}) { fuseLog.Debug("%v", msg) }
	}

	if cfg.Watch {
		w, err := watch.New(cfg.Document, func() {
			// failures leave the last generation served
			if err := store.Reload(); err != nil {
				logger.Warn("%s", describeHealth(store.Health()))
			}
		}, watch.WithDebounce(cfg.Debounce), watch.WithLogger(logger.Named("watch")))
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.Document, err)
		}
		defer w.Close()
	}

	c, err := fuse.Mount(cfg.Mountpoint, mountOptions(cfg)...)
	if err != nil {
		return err
	}
	defer c.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down, unmounting %s", cfg.Mountpoint)
		if err := fuse.Unmount(cfg.Mountpoint); err != nil {
			logger.Warn("unmount %s: %v", cfg.Mountpoint, err)
		}
	}()

	logger.Info("jsonfs %s mounted %s at %s (watch: %t)", version.GetVersion(), cfg.Document, cfg.Mountpoint, cfg.Watch)
	serveErr := fs.Serve(c, filesystem)
	logger.Info("final state: %s", describeHealth(store.Health()))
	if serveErr != nil {
		return serveErr
	}
	logger.Info("shutdown complete")
	return nil
}

// describeHealth renders a store health report for the log.
func describeHealth(h jsonfs.Health) string {
	state := "valid"
	if !h.Valid {
		state = fmt.Sprintf("invalid after %d failed reloads", h.Failures)
	}
	desc := fmt.Sprintf("serving generation %d (sha256 %s, loaded %s), document %s",
		h.Generation, util.ShortHash(h.Digest), h.LoadedAt.Format(time.RFC3339), state)
	if h.LastError != nil {
		desc += fmt.Sprintf(": %v", h.LastError)
	}
	return desc
}
