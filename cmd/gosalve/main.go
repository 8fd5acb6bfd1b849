// Command gosalve compiles a RELAX NG schema to its logical pattern form.
package main

import (
	"context"
	"fmt"
	"os"

	charmlog "charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/mangalam-research/gosalve/relaxng"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gosalve",
		Short:         "RELAX NG schema compiler and streaming validator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newConvertCmd())
	return root
}

// convertFlags binds the §6 configuration table onto pflag, mirroring the
// teacher's config-struct-plus-flags idiom generalized from xml.Option.
type convertFlags struct {
	simplifiedInput      bool
	noOptimizeIDs        bool
	includePaths         bool
	allowIncompleteTypes string
	manifestHash         string
	createManifest       bool
	logLevel             string
	logFormat            string
}

func newConvertCmd() *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert <schema-url> <out-path>",
		Short: "Simplify and construct a RELAX NG schema, writing its compiled form",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], f)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.simplifiedInput, "simplified-input", false, "skip simplification; input is already in normal form")
	fl.BoolVar(&f.noOptimizeIDs, "no-optimize-ids", false, "skip grammar-merge id renumbering, for debugging")
	fl.BoolVar(&f.includePaths, "include-paths", false, "set Options.IncludePaths (the compiled output carries no source paths)")
	fl.StringVar(&f.allowIncompleteTypes, "allow-incomplete-types", "error", "policy when the schema uses an unimplemented datatype: quiet|warn|error")
	fl.BoolVar(&f.createManifest, "manifest", false, "emit a manifest of every document consulted")
	fl.StringVar(&f.manifestHash, "manifest-hash", "SHA-1", "hash algorithm identifier for the manifest")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	fl.StringVar(&f.logFormat, "log-format", "text", "log format: text|json")
	return cmd
}

func runConvert(schemaURL, outPath string, f *convertFlags) error {
	logger, err := newLogger(f.logLevel, f.logFormat)
	if err != nil {
		return err
	}

	policy, err := parseIncompleteTypePolicy(f.allowIncompleteTypes)
	if err != nil {
		return err
	}

	opts := []relaxng.Option{
		relaxng.WithLogger(logger),
		relaxng.WithIncompleteTypePolicy(policy),
	}
	if f.simplifiedInput {
		opts = append(opts, relaxng.WithSimplifiedInput())
	}
	if f.noOptimizeIDs {
		opts = append(opts, relaxng.WithNoOptimizeIDs())
	}
	if f.includePaths {
		opts = append(opts, relaxng.WithIncludePaths())
	}
	if f.createManifest {
		alg, err := manifestHashFunc(f.manifestHash)
		if err != nil {
			return err
		}
		opts = append(opts, relaxng.WithManifest(alg))
	}

	return relaxng.Convert(context.Background(), schemaURL, outPath, relaxng.NewOptions(opts...))
}

func parseIncompleteTypePolicy(s string) (relaxng.IncompleteTypePolicy, error) {
	switch s {
	case "quiet":
		return relaxng.PolicyQuiet, nil
	case "warn":
		return relaxng.PolicyWarn, nil
	case "error":
		return relaxng.PolicyError, nil
	}
	return relaxng.PolicyError, fmt.Errorf("--allow-incomplete-types: unknown policy %q", s)
}

// charmLogger adapts charm.land/log/v2's structured Logger to the narrow
// Debugf/Infof/Warnf contract relaxng.Logger expects, the one seam the
// library permits for progress messages (§10.2: library code never logs on
// its own).
type charmLogger struct {
	l *charmlog.Logger
}

func (c charmLogger) Debugf(format string, args ...any) { c.l.Debug(fmt.Sprintf(format, args...)) }
func (c charmLogger) Infof(format string, args ...any)  { c.l.Info(fmt.Sprintf(format, args...)) }
func (c charmLogger) Warnf(format string, args ...any)  { c.l.Warn(fmt.Sprintf(format, args...)) }

func newLogger(level, format string) (relaxng.Logger, error) {
	l := charmlog.New(os.Stderr)
	switch format {
	case "json":
		l.SetFormatter(charmlog.JSONFormatter)
	case "text", "":
		l.SetFormatter(charmlog.TextFormatter)
	default:
		return nil, fmt.Errorf("--log-format: unknown format %q", format)
	}
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	l.SetLevel(lvl)
	return charmLogger{l: l}, nil
}

func manifestHashFunc(name string) (func([]byte) string, error) {
	switch name {
	case "SHA-1", "sha1", "":
		return nil, nil // nil means relaxng's default (sha1Hex)
	default:
		return nil, fmt.Errorf("--manifest-hash: unsupported algorithm %q (only SHA-1 is built in)", name)
	}
}
