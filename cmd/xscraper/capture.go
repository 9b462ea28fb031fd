package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"xscraper/internal/replay"
	"xscraper/pkg/capture"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/scroll"
	"xscraper/pkg/session"
	"xscraper/pkg/sink"
)

var (
	// Capture command flags
	scopeTags    []string
	eventFiles   []string
	outputDir    string
	scrollBudget int
	paced        bool
	noSession    bool
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <account>",
	Short: "Capture tweet records from recorded response streams",
	Long: `Capture tweet records for an account from recorded response streams.

Each --events file is a recording of timeline traffic for one scope, replayed
in order: the first recording feeds the first scope, the second recording the
second scope, and so on. Every scope's deduplicated record set is flushed to
its own JSONL file in the output directory.

By default a recording is fed all at once. With --paced, the scroll driver
replays it on its configured step interval, one event per scroll step, and
its idle detection ends the scope once the recording is exhausted.`,
	Example: `  # Capture the tweets scope from one recording
  xscraper capture johndoe --scopes tweets --events tweets.jsonl

  # Capture tweets and likes from two recordings
  xscraper capture johndoe --scopes tweets,likes --events tweets.jsonl --events likes.jsonl

  # Bookmarks need no account identity
  xscraper capture johndoe --scopes bookmarks --events bookmarks.jsonl --output ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapture(strings.TrimSpace(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringSliceVar(&scopeTags, "scopes", nil, "scopes to capture, in order (tweets, replies, likes, bookmarks)")
	captureCmd.Flags().StringArrayVar(&eventFiles, "events", nil, "recorded event stream, one per scope (JSONL of {url, body} lines)")
	captureCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for flushed record sets")
	captureCmd.Flags().IntVar(&scrollBudget, "scroll-budget", 0, "scroll step budget per scope (0 = unlimited)")
	captureCmd.Flags().BoolVar(&paced, "paced", false, "replay recordings on the scroll driver's timing, one event per step")
	captureCmd.Flags().BoolVar(&noSession, "no-session", false, "do not persist capture progress")

	captureCmd.MarkFlagRequired("events")
}

func runCapture(account string) error {
	flags := make(map[string]interface{})
	if len(scopeTags) > 0 {
		flags["scopes"] = scopeTags
	}
	if scrollBudget > 0 {
		flags["scroll-budget"] = scrollBudget
	}
	if account != "" {
		flags["account"] = account
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("xscraper starting")

	scopes, err := capture.ParseScopes(cfg.Capture.Scopes)
	if err != nil {
		return err
	}
	if len(eventFiles) != len(scopes) {
		return fmt.Errorf("got %d event recordings for %d scopes; pass one --events file per scope",
			len(eventFiles), len(scopes))
	}

	out, err := sink.NewJSONL(cfg.Output.BaseDirectory, cfg.Output.TimestampFormat)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}

	nav := replay.NewNavigator(cfg.Capture.BaseURL + "/" + account)

	// In paced mode the scroll driver owns replay timing: each step feeds
	// one recorded event and completion flows back into the engine with the
	// run token. The stream, driver and engine reference each other, so the
	// engine variable is captured by the completion callback before it is
	// assigned.
	var engine *capture.Engine
	var stream *replay.Stream
	var scrollDone chan error
	var driver capture.ScrollDriver
	if paced {
		stream = replay.NewStream()
		scrollDone = make(chan error, 1)
		driver = scroll.NewDriver(stream.Step, cfg.Scroll.StepInterval, cfg.Scroll.IdleLimit, func(run uint64) {
			scrollDone <- engine.ScrollFinished(run)
		})
	} else {
		driver = scroll.NewManual()
	}

	engine = capture.New(cfg, nav, driver, out)
	if stream != nil {
		stream.Attach(engine)
	}

	if !noSession {
		mgr, err := session.NewManager(account)
		if err != nil {
			log.WithError(err).Warn("session persistence unavailable")
		} else {
			sess, err := mgr.Create(account, cfg.Capture.Scopes, cfg.Capture.ScrollBudget)
			if err != nil {
				log.WithError(err).Warn("failed to create session")
			} else {
				engine.AttachSession(mgr, sess)
			}
		}
	}

	if err := engine.Start(scopes, cfg.Capture.ScrollBudget); err != nil {
		return err
	}

	feeder := replay.NewFeeder(engine)
	for i, path := range eventFiles {
		if engine.Phase() == capture.PhaseDone {
			log.WithField("recording", path).Warn("all scopes finished early, recording skipped")
			break
		}

		var stats replay.Stats
		if paced {
			if _, err := stream.Load(path); err != nil {
				return err
			}
			engine.PageReady()
			if err := <-scrollDone; err != nil {
				return err
			}
			stats = stream.Stats()
		} else {
			engine.PageReady()
			stats, err = feeder.FeedFile(path)
			if err != nil {
				return err
			}
		}
		log.InfoWithFields("recording processed", map[string]interface{}{
			"scope":    string(scopes[i]),
			"events":   stats.Events,
			"accepted": stats.Accepted,
			"records":  stats.Total,
		})

		if !paced {
			if err := engine.Stop(); err != nil {
				return err
			}
		}
	}

	if engine.Phase() != capture.PhaseDone {
		return fmt.Errorf("capture ended in phase %s; some scopes were not flushed", engine.Phase())
	}

	for _, path := range out.EmittedFiles() {
		fmt.Fprintln(os.Stdout, path)
	}
	return nil
}
