package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/autofill"
	"github.com/spigell/applyfill/internal/browser"
	"github.com/spigell/applyfill/internal/observe"
)

var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Open a page and remap its form whenever it changes",
	Long: `watch follows multi-step applications: every time the form settles after
a change the platform is detected again and the fields are remapped. With
--fill new fields are filled as they appear.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		watch(args[0])
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("fill", false, "fill the form after every change")
	watchCmd.Flags().Duration("quiet", observe.MinQuiet, "how long the page must stay unchanged before remapping")

	viper.BindPFlag("watch.fill", watchCmd.Flags().Lookup("fill"))
	viper.BindPFlag("watch.quiet", watchCmd.Flags().Lookup("quiet"))
}

func watch(pageURL string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	p, err := loadProfile(config)
	if err != nil {
		logger.Error("loading the profile", zap.Error(err))
		return
	}

	af := newAutofiller(config, logger)
	af.SetProfile(p)

	// The user moves through the steps by hand.
	config.Browser.Headful = true
	manager := browser.NewManager(config.Browser, logger)
	defer manager.Close()

	tab, err := manager.Open(ctx, pageURL)
	if err != nil {
		logger.Error("opening the page", zap.Error(err))
		return
	}
	doc := tab.Document()
	fillOnChange := viper.GetBool("watch.fill")

	onChange := func(records []observe.Record) {
		logger.Info("form changed", zap.Int("mutations", len(records)))

		if fillOnChange {
			res, err := af.Autofill(ctx, doc, autofill.Options{
				MinConfidence: config.Fill.MinConfidence,
				Delay:         config.Fill.Delay,
			})
			if err != nil {
				logger.Warn("filling the form", zap.Error(err))
				return
			}
			logger.Info("form filled",
				zap.Int("filled", res.Filled),
				zap.Int("skipped", res.Skipped),
				zap.Int("errors", len(res.Errors)),
			)
			return
		}

		plan, err := af.Map(doc)
		if err != nil {
			logger.Warn("mapping the form", zap.Error(err))
			return
		}
		platformName := "unknown"
		if plan.Platform != nil {
			platformName = plan.Platform.Platform.String()
		}
		logger.Info("form mapped",
			zap.String("platform", platformName),
			zap.Int("fields", len(plan.Mapping.Mappings)),
			zap.Int("fillable", plan.Mapping.Fillable),
			zap.Int("review", plan.Mapping.Review),
		)
	}

	// The first step is already rendered.
	onChange(nil)

	obs := observe.New(tab.Page, config.Watch, onChange, logger)
	if err := obs.Start(ctx); err != nil {
		logger.Error("watching the page", zap.Error(err))
		return
	}
	defer obs.Stop()

	logger.Info("watching the form", zap.String("hint", "close the tab or press ctrl+c to stop"))
	if err := tab.WaitClosed(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("waiting for the tab", zap.Error(err))
	}
}
