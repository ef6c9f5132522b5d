package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trendforge/internal/analytics"
	"trendforge/internal/cmdlog"
	"trendforge/internal/config"
	"trendforge/internal/metrics"
	"trendforge/internal/model"
	"trendforge/internal/planner"
	"trendforge/internal/quota"
	"trendforge/internal/schedule"
	"trendforge/internal/server"
	"trendforge/internal/signals"
	"trendforge/internal/store"
	"trendforge/internal/theme"
	"trendforge/internal/youtube"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func lookupChannel(id string) (model.Channel, error) {
	ch, ok := cfg.Channel(id)
	if !ok {
		return model.Channel{}, fmt.Errorf("unknown channel %q", id)
	}
	return ch, nil
}

// --- init ---

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a starter config and signal catalog",
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("init", func() error {
			path, _ := cmd.Flags().GetString("path")
			catalog, _ := cmd.Flags().GetString("catalog")
			force, _ := cmd.Flags().GetBool("force")
			cfgPath, catPath, err := writeStarter(path, catalog, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, theme.Banner())
			fmt.Fprintln(out, "Config written to: ", cfgPath)
			fmt.Fprintln(out, "Catalog written to:", catPath)
			return nil
		})
	},
}

func init() {
	initCmd.Flags().String("path", defaultConfigPath, "path to write config")
	initCmd.Flags().String("catalog", "./signals.yaml", "path to write the signal catalog")
	initCmd.Flags().Bool("force", false, "overwrite existing files")
}

// writeStarter saves the default config pointing at a default catalog.
func writeStarter(path, catalog string, force bool) (string, string, error) {
	if !force {
		for _, p := range []string{path, catalog} {
			if _, err := os.Stat(p); err == nil {
				return "", "", fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
		}
	}
	c := config.Default()
	c.Signals.CatalogPath = catalog
	if err := config.Save(path, c); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(filepath.Dir(catalog), 0o755); err != nil {
		return "", "", err
	}
	if err := signals.SaveCatalog(catalog, signals.DefaultCatalog()); err != nil {
		return "", "", err
	}
	cfgAbs, _ := filepath.Abs(path)
	catAbs, _ := filepath.Abs(catalog)
	return cfgAbs, catAbs, nil
}

// --- channels ---

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List configured channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("channels", func() error {
			printChannels(cmd.OutOrStdout(), cfg.Channels)
			return nil
		})
	},
}

func printChannels(w io.Writer, channels []model.Channel) {
	for _, ch := range channels {
		strategies := make([]string, 0, len(ch.Strategies))
		for _, s := range ch.Strategies {
			strategies = append(strategies, string(s))
		}
		fmt.Fprintf(w, "%-16s niche=%-16s age=%-6s strategies=%s\n",
			ch.ID, ch.Niche, ch.AgeGroup.Normalize(), strings.Join(strategies, ","))
	}
}

// --- rank ---

var rankCmd = &cobra.Command{
	Use:   "rank <channel>",
	Short: "Rank trend opportunities for a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("rank", func() error {
			ch, err := lookupChannel(args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			ctx, cancel := signalContext()
			defer cancel()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			opps, err := a.planner.Opportunities(ctx, ch)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), opps)
			}
			printOpportunities(cmd.OutOrStdout(), opps)
			return nil
		})
	},
}

func init() {
	rankCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

func printOpportunities(w io.Writer, opps []model.Opportunity) {
	if len(opps) == 0 {
		fmt.Fprintln(w, "no opportunities")
		return
	}
	for i, o := range opps {
		fmt.Fprintf(w, "%2d. %-40s combined=%6.2f viral=%.2f monetization=%.2f competition=%.2f source=%s\n",
			i+1, o.Topic, o.Combined(), o.ViralScore, o.MonetizationPotential, o.CompetitionLevel, o.Source)
	}
}

// --- calendar ---

var calendarCmd = &cobra.Command{
	Use:   "calendar [channel]",
	Short: "Preview the posting calendar for one or all channels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("calendar", func() error {
			days, _ := cmd.Flags().GetInt("days")
			asJSON, _ := cmd.Flags().GetBool("json")
			channels := cfg.Channels
			if len(args) == 1 {
				ch, err := lookupChannel(args[0])
				if err != nil {
					return err
				}
				channels = []model.Channel{ch}
			}
			ctx, cancel := signalContext()
			defer cancel()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var plans []planner.Plan
			var errs []error
			for _, ch := range channels {
				plan, err := a.planner.PlanChannel(ctx, ch, days)
				if err != nil {
					errs = append(errs, fmt.Errorf("channel %s: %w", ch.ID, err))
					continue
				}
				plans = append(plans, plan)
			}
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), plans); err != nil {
					return err
				}
			} else {
				for _, plan := range plans {
					printPlan(cmd.OutOrStdout(), plan)
				}
			}
			return errors.Join(errs...)
		})
	},
}

func init() {
	calendarCmd.Flags().Int("days", 0, "number of days (defaults to schedule.days)")
	calendarCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

func printPlan(w io.Writer, plan planner.Plan) {
	fmt.Fprintf(w, "== %s (%s)\n", plan.Channel.ID, plan.Channel.Niche)
	for _, e := range plan.Calendar {
		fmt.Fprintf(w, "%s %s  %-40s views=%-8d revenue=$%.2f\n", e.Date, e.Time, e.Topic, e.EstimatedViews, e.EstimatedRevenue)
	}
	fmt.Fprintf(w, "total: %d entries, %d views, $%.2f\n",
		plan.Projection.Entries, plan.Projection.TotalViews, plan.Projection.TotalRevenue)
	fmt.Fprintf(w, "monetization: ~%d days (%s), weekly targets %d subscribers, %d watch hours, %d videos\n\n",
		plan.Timeline.EstimatedDays, plan.Timeline.TargetDate,
		plan.Timeline.Weekly.Subscribers, plan.Timeline.Weekly.WatchHours, plan.Timeline.Weekly.Videos)
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan every channel, persist and export the calendars",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("run", func() error {
			loop, _ := cmd.Flags().GetBool("loop")
			ctx, cancel := signalContext()
			defer cancel()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if loop {
				interval, err := cfg.PlanInterval()
				if err != nil {
					return err
				}
				metrics.StartServer(cfg.Metrics.Addr)
				if err := a.planner.RunLoop(ctx, interval); !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}
			res, err := a.planner.RunOnce(ctx)
			out := cmd.OutOrStdout()
			for _, plan := range res.Plans {
				fmt.Fprintf(out, "%-16s %d entries  projected=$%.2f  monetized by %s\n",
					plan.Channel.ID, plan.Projection.Entries, plan.Projection.TotalRevenue, plan.Timeline.TargetDate)
			}
			if res.File != "" {
				fmt.Fprintln(out, "Calendar exported to:", res.File)
			}
			return err
		})
	},
}

func init() {
	runCmd.Flags().Bool("loop", false, "keep planning every planner.interval")
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planning API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("serve", func() error {
			withPlanner, _ := cmd.Flags().GetBool("plan")
			ctx, cancel := signalContext()
			defer cancel()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			metrics.StartServer(cfg.Metrics.Addr)
			if withPlanner {
				interval, err := cfg.PlanInterval()
				if err != nil {
					return err
				}
				go func() { _ = a.planner.RunLoop(ctx, interval) }()
			}

			srv := server.NewServer(cfg.Server, a.planner, a.store, a.cache)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	serveCmd.Flags().Bool("plan", false, "also run the planning loop in the background")
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <channel> <video-file>",
	Short: "Schedule a video for the channel's next calendar slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("upload", func() error {
			ch, err := lookupChannel(args[0])
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			tags, _ := cmd.Flags().GetStringSlice("tags")

			ctx, cancel := signalContext()
			defer cancel()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			now := time.Now()
			allowed, err := quota.ShouldAllowUpload(ctx, a.store, ch.ID, cfg.Upload.MaxPerDay, now, loc)
			if err != nil {
				return err
			}
			if !allowed {
				return fmt.Errorf("channel %s reached its daily upload limit (%d)", ch.ID, cfg.Upload.MaxPerDay)
			}
			entry, err := nextEntry(ctx, a.store, ch, now, loc)
			if err != nil {
				return err
			}
			if entry.Topic == "" && strings.TrimSpace(title) == "" {
				return fmt.Errorf("no stored calendar slot for %s; pass --title or run `trendforge run` first", ch.ID)
			}
			publishAt, err := entry.At(loc)
			if err != nil {
				return err
			}

			svc, err := youtube.NewUploadService(ctx, youtube.Credentials{
				ClientID:     cfg.YouTube.ClientID,
				ClientSecret: cfg.YouTube.ClientSecret,
				RefreshToken: cfg.YouTube.RefreshToken,
			})
			if err != nil {
				return err
			}
			up := youtube.NewUploader(svc, cfg.Upload.CategoryID, cfg.Upload.Notify, loc)
			id, err := up.Schedule(ctx, entry, args[1], youtube.Metadata{Title: title, Description: description, Tags: tags})
			if err != nil {
				return err
			}
			if err := quota.RecordUpload(ctx, a.store, ch.ID, now); err != nil {
				return err
			}
			if err := quota.RecordSlot(ctx, a.store, ch.ID, publishAt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s for %s %s (video %s)\n", entry.Topic, entry.Date, entry.Time, id)
			return nil
		})
	},
}

func init() {
	uploadCmd.Flags().String("title", "", "video title (defaults to the calendar topic)")
	uploadCmd.Flags().String("description", "", "video description")
	uploadCmd.Flags().StringSlice("tags", nil, "comma-separated video tags")
}

// uploadLookahead bounds how far ahead stored calendar slots are searched.
const uploadLookahead = server.MaxDays

// nextEntry returns the first free stored calendar slot after now. A slot is
// free until an upload is recorded for it. Without one, the next free peak
// window for the channel's audience is used and the entry has no topic.
func nextEntry(ctx context.Context, st store.Store, ch model.Channel, now time.Time, loc *time.Location) (model.CalendarEntry, error) {
	local := now.In(loc)
	from := local.Format(model.DateLayout)
	to := local.AddDate(0, 0, uploadLookahead).Format(model.DateLayout)
	entries, err := st.LoadCalendar(ctx, ch.ID, from, to)
	if err != nil {
		return model.CalendarEntry{}, err
	}
	for _, e := range entries {
		at, err := e.At(loc)
		if err != nil {
			return model.CalendarEntry{}, err
		}
		if !at.After(now) {
			continue
		}
		taken, err := quota.SlotTaken(ctx, st, ch.ID, at)
		if err != nil {
			return model.CalendarEntry{}, err
		}
		if !taken {
			return e, nil
		}
	}

	for _, at := range schedule.ScheduleUploads(ch, uploadLookahead, local, nil) {
		if !at.After(now) {
			continue
		}
		taken, err := quota.SlotTaken(ctx, st, ch.ID, at)
		if err != nil {
			return model.CalendarEntry{}, err
		}
		if !taken {
			return model.CalendarEntry{ChannelID: ch.ID, Date: at.Format(model.DateLayout), Time: at.Format(model.TimeLayout)}, nil
		}
	}
	return model.CalendarEntry{}, fmt.Errorf("no free upload slot for %s in the next %d days", ch.ID, uploadLookahead)
}

// --- monetization ---

var monetizationCmd = &cobra.Command{
	Use:   "monetization <channel>",
	Short: "Estimate the time until a channel can be monetized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("monetization", func() error {
			ch, err := lookupChannel(args[0])
			if err != nil {
				return err
			}
			var cur analytics.Progress
			cur.Subscribers, _ = cmd.Flags().GetInt("subscribers")
			cur.WatchHours, _ = cmd.Flags().GetFloat64("watch-hours")
			cur.Videos, _ = cmd.Flags().GetInt("videos")
			printMonetization(cmd.OutOrStdout(), analytics.MonetizationTimeline(ch, time.Now()),
				analytics.TimeToMonetization(cur, analytics.Growth{}))
			return nil
		})
	},
}

func init() {
	monetizationCmd.Flags().Int("subscribers", 0, "current subscriber count")
	monetizationCmd.Flags().Float64("watch-hours", 0, "watch hours in the last 12 months")
	monetizationCmd.Flags().Int("videos", 0, "videos uploaded so far")
}

func printMonetization(w io.Writer, tl analytics.Timeline, r analytics.Remaining) {
	fmt.Fprintf(w, "new channel estimate: %d days (by %s)\n", tl.EstimatedDays, tl.TargetDate)
	fmt.Fprintf(w, "weekly targets: %d subscribers, %d watch hours, %d videos\n",
		tl.Weekly.Subscribers, tl.Weekly.WatchHours, tl.Weekly.Videos)
	fmt.Fprintf(w, "at the current pace: %d weeks remaining, bottleneck %s\n", r.WeeksRemaining, r.Bottleneck)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
