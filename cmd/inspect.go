package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom/htmldoc"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/pagefetch"
	"github.com/spigell/applyfill/internal/report"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|url>",
	Short: "Show the detected platform, the form fields and their mapping without a browser",
	Long: `inspect parses a saved page or downloads one over plain HTTP. Pages that
render their form with JavaScript need the fill command with --dry-run.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspect(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("url", "", "page address used for detection when inspecting a saved file")
	inspectCmd.Flags().Bool("hidden", false, "also list hidden and disabled controls")
	inspectCmd.Flags().Bool("no-color", false, "disable colored output")
}

func inspect(cmd *cobra.Command, source string) {
	ctx := context.Background()
	logger, config := setup()

	var (
		doc *htmldoc.Document
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		page, ferr := pagefetch.New(logger).Fetch(ctx, source)
		if ferr != nil {
			logger.Fatal("fetching the page", zap.Error(ferr))
		}
		doc, err = htmldoc.Parse(bytes.NewReader(page.HTML), page.URL)
	} else {
		pageURL, _ := cmd.Flags().GetString("url")
		var data []byte
		data, err = os.ReadFile(source)
		if err != nil {
			logger.Fatal("reading the page", zap.Error(err))
		}
		doc, err = htmldoc.Parse(bytes.NewReader(data), pageURL)
	}
	if err != nil {
		logger.Fatal("parsing the page", zap.Error(err))
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	printer := report.New(os.Stdout, noColor)
	af := newAutofiller(config, logger)

	hidden, _ := cmd.Flags().GetBool("hidden")
	candidate, found := af.Discover(doc, fields.Options{IncludeHidden: hidden})
	printer.Platforms(af.Detector().DetectAll(doc.URL(), doc), candidate, config.Detection.MinConfidence)

	p, err := loadProfile(config)
	if err != nil || hidden {
		if err != nil {
			logger.Info("listing fields only", zap.String("reason", err.Error()))
		}
		printer.Fields(found)
		return
	}

	af.SetProfile(p)
	plan, err := af.Map(doc)
	if err != nil {
		logger.Fatal("mapping the form", zap.Error(err))
	}
	printer.Mappings(plan.Mapping, config.Thresholds)
}
