package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skosovsky/view"
	"github.com/skosovsky/view/config"
	"github.com/skosovsky/view/watcher"
)

const envPrefix = "VIEW"

var version = "dev"

func newRootCmd(v *viper.Viper) *cobra.Command {
	var (
		cfgFile  string
		data     map[string]string
		section  string
		traced   bool
		watch    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:     "viewrender [flags] <template>",
		Short:   "Render a template with its layouts and includes",
		Long:    `Render a template from a root directory, composing its layouts, sections and includes, and print the result.`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if cfg.Debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			tracer, shutdown, err := newTracer(cmd.ErrOrStderr(), traced)
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(context.Background()) }()

			e, err := cfg.NewEngine(view.WithLogger(logger), view.WithTracer(tracer))
			if err != nil {
				return err
			}

			local := make(map[string]any, len(data))
			for k, val := range data {
				local[k] = val
			}
			render := func(ctx context.Context) (string, error) {
				if section != "" {
					return e.RenderSection(ctx, args[0], section, local)
				}
				return e.Render(ctx, args[0], local)
			}

			if !watch {
				out, err := render(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}

			w, err := watcher.New(watcher.Config{
				Root:        cfg.Root,
				Suffix:      e.Resolver().Suffix(),
				DebounceDur: debounce,
				Logger:      logger,
			}, e)
			if err != nil {
				return err
			}
			return watchAndRender(cmd.Context(), w, cmd.OutOrStdout(), logger, render)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "engine config file (yaml)")
	flags.StringP("root", "r", "", "template root directory")
	flags.Bool("debug", false, "re-read templates on every render and log diagnostics")
	flags.String("suffix", view.DefaultSuffix, "template file suffix")
	flags.Duration("cache-ttl", 0, "parsed template cache TTL")
	flags.Int("max-include-depth", 0, "maximum include nesting")
	flags.StringToStringVarP(&data, "data", "d", nil, "template data as key=value (repeatable)")
	flags.StringVarP(&section, "section", "s", "", "print only this section of the composed output")
	flags.BoolVar(&traced, "trace", false, "print render spans to stderr")
	flags.BoolVarP(&watch, "watch", "w", false, "re-render whenever a template under the root changes")
	flags.DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before re-rendering in watch mode")

	// Bind flags to viper
	_ = v.BindPFlag("root", flags.Lookup("root"))
	_ = v.BindPFlag("debug", flags.Lookup("debug"))
	_ = v.BindPFlag("suffix", flags.Lookup("suffix"))
	_ = v.BindPFlag("cache_ttl", flags.Lookup("cache-ttl"))
	_ = v.BindPFlag("max_include_depth", flags.Lookup("max-include-depth"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// watchAndRender prints a render now and after every template change until ctx
// is done. Render failures are logged and the watch goes on.
func watchAndRender(ctx context.Context, w *watcher.Watcher, out io.Writer, logger *slog.Logger, render func(context.Context) (string, error)) error {
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	emit := func() {
		text, err := render(ctx)
		if err != nil {
			logger.Error("render failed", "error", err)
			return
		}
		_, _ = fmt.Fprintln(out, text)
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-onChange:
			emit()
		}
	}
}

// loadConfig layers the config file, VIEW_* environment variables and flags,
// later sources winning. The file is parsed and validated by package config.
func loadConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	if cfgFile != "" {
		file, err := config.ParseFile(cfgFile)
		if err != nil {
			return nil, err
		}
		v.SetDefault("root", file.Root)
		v.SetDefault("debug", file.Debug)
		if file.Suffix != "" {
			v.SetDefault("suffix", file.Suffix)
		}
		if file.CacheTTL > 0 {
			v.SetDefault("cache_ttl", file.CacheTTL)
		}
		if file.MaxIncludeDepth > 0 {
			v.SetDefault("max_include_depth", file.MaxIncludeDepth)
		}
		v.SetDefault("globals", file.Globals)
	}
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
