package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wachat/masklog/pkg/masking"
)

type rootOptions struct {
	configPath string
	rules      []string
	compact    bool
}

// NewRootCmd builds the maskjson command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "maskjson [file]",
		Short: "Mask fields of a JSON document",
		Long: `maskjson applies masking rules to a JSON document read from a file or
stdin and prints the masked document.

Rules have the form type:path[:array]. A path is dotted; "$" marks an
array level, either at the root ("$.email") or mid-path ("users.$.phone").
The optional ":array" suffix masks every string in an array value.

Examples:
  maskjson -r email:user.email payload.json
  cat payload.json | maskjson -r msisdn:contacts.$.phone -r full:token
  maskjson --config masks.yaml -r pin:card.pin payload.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMask(cmd, opts, args)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "masking config YAML (replaces the built-in rules)")
	root.Flags().StringArrayVarP(&opts.rules, "rule", "r", nil, "masking rule type:path[:array] (repeatable)")
	root.Flags().BoolVar(&opts.compact, "compact", false, "print compact JSON")

	root.AddCommand(newValueCmd(opts))
	root.AddCommand(newTypesCmd(opts))
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "maskjson: %v\n", err)
		return err
	}
	return nil
}

func runMask(cmd *cobra.Command, opts *rootOptions, args []string) error {
	rules, err := parseRules(opts.rules)
	if err != nil {
		return err
	}
	svc, err := loadService(opts.configPath)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrap(err, "decode input")
	}

	masked := svc.Mask(doc, rules)

	var out []byte
	if opts.compact {
		out, err = json.Marshal(masked)
	} else {
		out, err = json.MarshalIndent(masked, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	out = append(out, '\n')
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newValueCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "value <type> <value>",
		Short: "Mask a single value",
		Long: `Mask one string with a masking type, to check a rule set.

Examples:
  maskjson value email test@test.com
  maskjson value hash secret`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(opts.configPath)
			if err != nil {
				return err
			}
			if !svc.Matcher().Knows(args[0]) {
				return errors.Errorf("unknown masking type %q", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.Matcher().MaskString(args[0], args[1]))
			return err
		},
	}
}

func newTypesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List masking types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			svc, err := masking.NewService(cfg)
			if err != nil {
				return err
			}

			var b bytes.Buffer
			for _, name := range svc.Matcher().Types() {
				if n := len(cfg[name]); n > 0 {
					fmt.Fprintf(&b, "%s\t%d rule(s)\n", name, n)
				} else {
					fmt.Fprintf(&b, "%s\tbuilt-in\n", name)
				}
			}
			_, err = cmd.OutOrStdout().Write(b.Bytes())
			return err
		},
	}
}

// parseRules reads type:path[:array] flags.
func parseRules(flags []string) ([]masking.Rule, error) {
	rules := make([]masking.Rule, 0, len(flags))
	for _, raw := range flags {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Errorf("invalid rule %q (want type:path[:array])", raw)
		}
		rule := masking.Rule{MaskingType: parts[0], MaskingField: parts[1]}
		if len(parts) == 3 {
			if parts[2] != "array" {
				return nil, errors.Errorf("invalid rule %q: unknown flag %q", raw, parts[2])
			}
			rule.IsArray = true
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func loadConfig(path string) (masking.Config, error) {
	if path == "" {
		return masking.DefaultConfig(), nil
	}
	return masking.LoadConfigFile(path)
}

func loadService(path string) (*masking.Service, error) {
	if path == "" {
		return masking.DefaultService(), nil
	}
	cfg, err := masking.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return masking.NewService(cfg)
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	return f, nil
}
