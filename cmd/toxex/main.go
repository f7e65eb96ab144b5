// Command toxex runs the extraction pipeline from the command line.
//
// Usage:
//
//	toxex fetch -url https://example.com/report [-format text|markdown]
//	toxex extract [-file report.txt]
//	toxex urls [-file report.txt]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/chemsift/toxex/config"
	"github.com/chemsift/toxex/core/extract"
	"github.com/chemsift/toxex/core/pipeline"
	"github.com/chemsift/toxex/providers/ai/openai"
	"github.com/chemsift/toxex/toxin"
	"github.com/chemsift/toxex/web/fetch"
	"github.com/chemsift/toxex/web/page"
	"github.com/chemsift/toxex/web/urlscan"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	switch os.Args[1] {
	case "fetch":
		err = runFetch(cfg, os.Args[2:])
	case "extract":
		err = runExtract(cfg, os.Args[2:])
	case "urls":
		err = runURLs(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func runFetch(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	rawURL := fs.String("url", "", "URL to fetch")
	format := fs.String("format", "text", "Output format: text or markdown")
	fs.Parse(args)

	if *rawURL == "" {
		return fmt.Errorf("fetch: -url is required")
	}

	resolver := page.NewResolver(fetch.New(
		fetch.WithProxyAPIKey(cfg.ScraperAPIKey),
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithRetryAttempts(cfg.RetryAttempts),
	))

	ctx := context.Background()
	var out string
	var err error
	switch *format {
	case "text":
		out, err = resolver.Text(ctx, *rawURL)
	case "markdown":
		out, err = resolver.Markdown(ctx, *rawURL)
	default:
		return fmt.Errorf("fetch: unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runExtract(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "Read input from file instead of stdin")
	fs.Parse(args)

	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("extract: OPENAI_API_KEY is required")
	}

	text, err := readInput(*file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("extract: input is empty")
	}

	resolver := page.NewResolver(fetch.New(
		fetch.WithProxyAPIKey(cfg.ScraperAPIKey),
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithRetryAttempts(cfg.RetryAttempts),
	))
	extractor := extract.New[toxin.List](
		openai.New().WithAPIKey(cfg.OpenAIAPIKey),
		extract.WithModel(cfg.Model),
		extract.WithSchemaName("toxin_list"),
	)

	resp, err := pipeline.New(resolver, extractor).Process(context.Background(), text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func runURLs(args []string) error {
	fs := flag.NewFlagSet("urls", flag.ExitOnError)
	file := fs.String("file", "", "Read input from file instead of stdin")
	fs.Parse(args)

	text, err := readInput(*file)
	if err != nil {
		return err
	}
	for _, u := range urlscan.Extract(text) {
		fmt.Println(u)
	}
	return nil
}

func readInput(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: toxex <fetch|extract|urls> [flags]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "toxex:", err)
	os.Exit(1)
}
