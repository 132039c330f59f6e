package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/autofill"
	"github.com/spigell/applyfill/internal/browser"
	"github.com/spigell/applyfill/internal/fill"
	"github.com/spigell/applyfill/internal/matching"
	"github.com/spigell/applyfill/internal/report"
	"github.com/spigell/applyfill/internal/utils"
)

const (
	PromptDone      = "Done"
	PromptUndoAll   = "Undo all"
	PromptUndoOne   = "Undo one field"
	PromptDump      = "Dump report to file"
	PromptBack      = "back"
	PromptFill      = "Fill"
	PromptSkip      = "Skip"
	PromptStopCheck = "Stop reviewing"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "Form filled. What next?",
	Items: []string{PromptDone, PromptUndoOne, PromptUndoAll, PromptDump},
}

var fillCmd = &cobra.Command{
	Use:   "fill <url>",
	Short: "Open an application page and fill it from the profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFill(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().Bool("review", false, "ask for every field that needs review")
	fillCmd.Flags().Bool("dry-run", false, "print the mapping without writing anything")
	fillCmd.Flags().Bool("overwrite", false, "replace values the page already holds")
	fillCmd.Flags().Bool("headful", false, "show the browser and wait until the tab is closed")
	fillCmd.Flags().Bool("no-color", false, "disable colored output")
	fillCmd.Flags().Int("min-confidence", 0, "skip fields scoring below this confidence (default is the medium threshold)")
	fillCmd.Flags().Duration("delay", 0, "pause between two field writes")
	fillCmd.Flags().BoolP("auto-approve", "y", false, "do not ask what to do after filling")

	viper.BindPFlag("fill.min-confidence", fillCmd.Flags().Lookup("min-confidence"))
	viper.BindPFlag("fill.delay", fillCmd.Flags().Lookup("delay"))
	viper.BindPFlag("fill.overwrite", fillCmd.Flags().Lookup("overwrite"))
	viper.BindPFlag("browser.headful", fillCmd.Flags().Lookup("headful"))
}

func runFill(cmd *cobra.Command, pageURL string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()
	logger.Info("starting the applyfill", zap.String("version", version), zap.String("url", pageURL))

	p, err := loadProfile(config)
	if err != nil {
		logger.Error("loading the profile", zap.Error(err))
		return
	}

	af := newAutofiller(config, logger)
	af.SetProfile(p)

	manager := browser.NewManager(config.Browser, logger)
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Warn("closing the browser", zap.Error(err))
		}
	}()

	tab, err := manager.Open(ctx, pageURL)
	if err != nil {
		logger.Error("opening the page", zap.Error(err))
		return
	}
	doc := tab.Document()

	noColor, _ := cmd.Flags().GetBool("no-color")
	printer := report.New(os.Stdout, noColor)

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		plan, err := af.Map(doc)
		if err != nil {
			logger.Error("mapping the form", zap.Error(err))
			return
		}
		printer.Platforms(af.Detector().DetectAll(doc.URL(), doc), plan.Platform, config.Detection.MinConfidence)
		printer.Mappings(plan.Mapping, config.Thresholds)
		return
	}

	res, err := af.Autofill(ctx, doc, autofill.Options{
		MinConfidence: config.Fill.MinConfidence,
		Overwrite:     config.Fill.Overwrite,
		Delay:         config.Fill.Delay,
		OnProgress: func(current, total int) {
			logger.Debug("filling field", zap.Int("current", current), zap.Int("total", total))
		},
		OnFieldFilled: func(m matching.Mapping) {
			logger.Info("field filled",
				zap.String("field", m.Field.Describe()),
				zap.String("path", m.Path),
				zap.Int("confidence", m.Confidence),
			)
		},
	})
	if res != nil {
		printer.Summary(res)
	}
	if err != nil {
		logger.Error("filling the form", zap.Error(err))
		return
	}

	if review, _ := cmd.Flags().GetBool("review"); review && len(res.Review) > 0 {
		if err := reviewMappings(ctx, af, res.Review, logger); err != nil && !errors.Is(err, errExit) {
			logger.Error("reviewing fields", zap.Error(err))
		}
	}

	if approve, _ := cmd.Flags().GetBool("auto-approve"); !approve {
		if err := actions(ctx, af, res, logger); err != nil && !errors.Is(err, errExit) {
			logger.Error("exiting", zap.Error(err))
			return
		}
	}

	if config.Browser.Headful {
		logger.Info("waiting for the tab to be closed", zap.String("hint", "submit the application in the browser window"))
		if err := tab.WaitClosed(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("waiting for the tab", zap.Error(err))
		}
		return
	}

	if err := tab.Close(); err != nil {
		logger.Warn("closing the tab", zap.Error(err))
	}
}

// reviewMappings asks about every mapping that scored in the review band and
// fills the confirmed ones.
func reviewMappings(ctx context.Context, af *autofill.Autofiller, mappings []matching.Mapping, logger *zap.Logger) error {
	for _, m := range mappings {
		prompt := promptui.Select{
			Label: fmt.Sprintf("%s <- %q (%s, confidence %d)",
				m.Field.Describe(), utils.TruncateForLog(m.Value, 60), m.Path, m.Confidence),
			Items: []string{PromptFill, PromptSkip, PromptStopCheck},
		}

		_, choice, err := prompt.Run()
		if err != nil {
			return err
		}

		switch choice {
		case PromptSkip:
			continue
		case PromptStopCheck:
			return errExit
		}

		if err := af.FillMapping(ctx, m); err != nil {
			if fill.Skipped(err) {
				logger.Warn("field not filled", zap.String("field", m.Field.Describe()), zap.Error(err))
				continue
			}
			return err
		}
		logger.Info("field filled after review", zap.String("field", m.Field.Describe()), zap.String("path", m.Path))
	}
	return nil
}

func actions(ctx context.Context, af *autofill.Autofiller, res *autofill.Result, logger *zap.Logger) error {
	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptDone:
			return errExit
		case PromptUndoAll:
			restored, err := af.UndoAll(ctx)
			logger.Info("undo finished", zap.Int("restored", restored))
			if err != nil {
				logger.Warn("some fields were not restored", zap.Error(err))
			}
			return errExit
		case PromptDump:
			filename, err := report.DumpToTmpFile(res)
			if err != nil {
				return fmt.Errorf("dump report to file: %w", err)
			}
			logger.Info("dumping report to file", zap.String("filename", filename))
		case PromptUndoOne:
			if err := undoOne(ctx, af, logger); err != nil {
				return err
			}
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func undoOne(ctx context.Context, af *autofill.Autofiller, logger *zap.Logger) error {
	entries := af.Ledger().Entries()
	if len(entries) == 0 {
		logger.Info("nothing to undo")
		return nil
	}

	items := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s: %q -> %q",
			e.Field.Describe(), utils.TruncateForLog(e.Original, 30), utils.TruncateForLog(e.New, 30)))
	}

	prompt := promptui.Select{
		Label: "Choose a field and press ENTER",
		Items: append(items, PromptBack),
	}
	i, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	ok, err := af.Undo(ctx, entries[i].Element)
	if err != nil {
		logger.Warn("field not restored", zap.String("field", entries[i].Field.Describe()), zap.Error(err))
		return nil
	}
	logger.Info("field restored", zap.String("field", entries[i].Field.Describe()), zap.Bool("changed", ok))
	return nil
}
