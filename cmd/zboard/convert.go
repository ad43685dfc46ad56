package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/zboard/zboard/pkg/config"
	"github.com/zboard/zboard/pkg/gen"
	"github.com/zboard/zboard/pkg/logger"
	"github.com/zboard/zboard/pkg/parser"
)

var convertFlags struct {
	mode   string
	width  int
	output string
	watch  bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <source>",
	Short: "Convert a whiteboard-notation file to LaTeX",
	Long: `Convert a whiteboard-notation file to a LaTeX document.

Examples:
  # Convert to stdout, fuzz dialect
  zboard convert notes.zb

  # Convert with zed-csp spellings into a file
  zboard convert notes.zb --mode zed -o notes.tex

  # Keep the output up to date as the source changes
  zboard convert notes.zb -o notes.tex --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.mode, "mode", "m", "", "target dialect: fuzz or zed")
	convertCmd.Flags().IntVarP(&convertFlags.width, "width", "w", 0, "line-length threshold for overflow warnings")
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "output file (default: stdout)")
	convertCmd.Flags().BoolVar(&convertFlags.watch, "watch", false, "re-convert whenever the source file changes")
}

func runConvert(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig(source)
	if err != nil {
		return err
	}

	// The config file can turn on verbose logging when -v is absent.
	if cfg.Verbose && !verbose {
		logger.InitDev()
	}

	// Flags override the config file.
	if convertFlags.mode != "" {
		cfg.Mode = convertFlags.mode
	}
	if convertFlags.width != 0 {
		cfg.Width = convertFlags.width
	}
	if convertFlags.output != "" {
		cfg.Output = convertFlags.output
	}

	mode, err := gen.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	if err := convertOnce(source, cfg.Output, mode, cfg.Width); err != nil {
		if !convertFlags.watch {
			return err
		}
		// In watch mode a broken source is not fatal; report and
		// wait for the next edit.
		fmt.Fprintf(os.Stderr, "%s: %v\n", source, err)
	}
	if !convertFlags.watch {
		return nil
	}
	return watchConvert(source, cfg.Output, mode, cfg.Width)
}

func loadConfig(source string) (config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.Discover(filepath.Dir(source))
}

func convertOnce(source, output string, mode gen.Mode, width int) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	doc, err := parser.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	logger.LogParsing(source, len(doc.Items))

	out, warnings, err := gen.Generate(doc, mode, width)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", source, w)
	}
	logger.LogGeneration(mode.String(), len(warnings))

	if output == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(output, []byte(out), 0644)
}

// watchConvert re-runs the conversion whenever the source file changes.
// The watch is on the containing directory because editors commonly
// replace files by rename, which drops a watch on the file itself.
func watchConvert(source, output string, mode gen.Mode, width int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(source)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("Watching for changes", "file", abs)

	// Debounce bursts of events from a single save.
	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := convertOnce(source, output, mode, width); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", source, err)
			} else if output != "" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", output)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)
		}
	}
}
