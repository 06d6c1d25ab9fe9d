// Package cli implements the slivka command line client on top of the SDK.
//
// Command structure:
//
//	slivka version                      # client, server and API versions
//	slivka services                     # list available services
//	slivka services <id>                # describe one service and its parameters
//	slivka submit <service> -p k=v ...  # submit a job
//	slivka status <job-id>              # show job state
//	slivka files <job-id> [-o dir]      # list or download result files
//
// The server URL comes from --url, the SLIVKA_URL environment variable, or a
// YAML config file given with --config.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bartongroup/slivka-go/pkg/config"
	"github.com/bartongroup/slivka-go/pkg/model"
	"github.com/bartongroup/slivka-go/pkg/sdk"
)

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	URL   string `yaml:"url"`
	Debug bool   `yaml:"debug"`
}

type options struct {
	url        string
	configFile string
	debug      bool
}

// BuildCLI assembles the root command with all subcommands attached.
func BuildCLI() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "slivka",
		Short:         "Command line client for Slivka job-dispatching servers",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.url, "url", "u", "", "server base URL (or set SLIVKA_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(buildVersionCommand(opts))
	rootCmd.AddCommand(buildServicesCommand(opts))
	rootCmd.AddCommand(buildSubmitCommand(opts))
	rootCmd.AddCommand(buildStatusCommand(opts))
	rootCmd.AddCommand(buildFilesCommand(opts))

	return rootCmd
}

// newClient resolves the server URL from flags, environment and config file,
// in that order, and builds a client.
func newClient(opts *options) (*sdk.Client, error) {
	url := opts.url
	debug := opts.debug

	if opts.configFile != "" {
		data, err := os.ReadFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if url == "" {
			url = fc.URL
		}
		debug = debug || fc.Debug
	}
	if url == "" {
		url = os.Getenv("SLIVKA_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL; use --url, SLIVKA_URL or a config file")
	}

	return sdk.New(&config.Config{BaseURL: url, Debug: debug})
}

func buildVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show client, server and API versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts)
			if err != nil {
				return err
			}
			v, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client:  %s\nserver:  %s\napi:     %s\n",
				v.Client, v.Server, v.API)
			return nil
		},
	}
}

func buildServicesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "services [id]",
		Short: "List services or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				svc, err := client.GetService(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printService(cmd, svc)
				return nil
			}

			services, err := client.Services(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, svc := range services {
				fmt.Fprintf(w, "%-24s %-8s %s\n", svc.ID, svc.Status.Status, svc.Name)
			}
			return nil
		},
	}
}

func printService(cmd *cobra.Command, svc *sdk.Service) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", svc.Name, svc.ID)
	if svc.Description != "" {
		fmt.Fprintln(w, svc.Description)
	}
	fmt.Fprintf(w, "version: %s  status: %s\n", svc.Version, svc.Status.Status)
	fmt.Fprintln(w, "parameters:")
	for _, p := range svc.Parameters {
		required := ""
		if p.Required {
			required = " (required)"
		}
		fmt.Fprintf(w, "  %-20s %s%s\n", p.ID, p.Type, required)
	}
}

func buildSubmitCommand(opts *options) *cobra.Command {
	var params []string
	var files []string
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <service>",
		Short: "Submit a job to a service",
		Long: "Submit a job with parameter values given as -p id=value and input\n" +
			"files as -f id=path. Repeat a -p flag to pass multiple values for an\n" +
			"array parameter.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts)
			if err != nil {
				return err
			}
			return submitJob(cmd, client, args[0], params, files, wait)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter value as id=value")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "input file as id=path")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the job to finish")
	return cmd
}

func submitJob(cmd *cobra.Command, client *sdk.Client, serviceID string, params, files []string, wait bool) error {
	svc, err := client.GetService(cmd.Context(), serviceID)
	if err != nil {
		return err
	}

	form := svc.NewForm()
	for _, kv := range params {
		id, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid parameter %q; expected id=value", kv)
		}
		value, err := parseValue(svc.GetParameter(id), raw)
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", id, err)
		}
		form.Add(id, value)
	}
	for _, kv := range files {
		id, path, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid file %q; expected id=path", kv)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		form.SetFile(id, filepath.Base(path), content)
	}

	job, err := svc.SubmitForm(cmd.Context(), form)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), job.ID())

	if wait {
		return waitForJob(cmd.Context(), cmd, job)
	}
	return nil
}

// parseValue converts a command line string into the value type the parameter
// declares. Unknown parameters keep the raw string so validation can report
// them by id.
func parseValue(p *model.Parameter, raw string) (any, error) {
	if p == nil {
		return raw, nil
	}
	switch p.Type {
	case model.TypeInteger:
		return strconv.ParseInt(raw, 10, 64)
	case model.TypeDecimal:
		return decimal.NewFromString(raw)
	case model.TypeFlag:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

// waitForJob polls until the job reaches a terminal state. The SDK throttles
// the requests, the sleep here only keeps the loop from spinning.
func waitForJob(ctx context.Context, cmd *cobra.Command, job *sdk.Job) error {
	for {
		state, err := job.Status(ctx)
		if err != nil {
			return err
		}
		if state.Finished() {
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func buildStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts)
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state, err := job.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "job:       %s\n", job.ID())
			fmt.Fprintf(w, "service:   %s\n", job.ServiceID())
			fmt.Fprintf(w, "state:     %s\n", state)
			fmt.Fprintf(w, "submitted: %s\n", job.SubmissionTime().Format(time.RFC3339))
			if done, err := job.CompletionTime(cmd.Context()); err == nil && !done.IsZero() {
				fmt.Fprintf(w, "completed: %s\n", done.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func buildFilesCommand(opts *options) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "files <job-id>",
		Short: "List result files of a job, or download them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts)
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			results, err := job.Results(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outputDir == "" {
				for _, f := range results {
					fmt.Fprintf(w, "%-36s %-16s %s\n", f.ID, f.Label, f.Path)
				}
				return nil
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			for _, f := range results {
				dest := filepath.Join(outputDir, filepath.FromSlash(f.Path))
				if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
					return fmt.Errorf("failed to create output dir: %w", err)
				}
				if err := f.Dump(cmd.Context(), sdk.PathTarget{Path: dest}); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s -> %s\n", f.Path, dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "download all files into this directory")
	return cmd
}
