package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shaarli/shaarli-client-go/internal/config"
	"github.com/shaarli/shaarli-client-go/internal/endpoint"
	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/output"
	"github.com/shaarli/shaarli-client-go/pkg/shaarli"
)

const instanceURLFlag = "instance-url"

// endpointCommands derives one subcommand per registered endpoint.
func (a *app) endpointCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, d := range endpoint.All() {
		cmds = append(cmds, a.endpointCommand(d))
	}
	return cmds
}

func (a *app) endpointCommand(d endpoint.Descriptor) *cobra.Command {
	cmd := &cobra.Command{
		Use:   d.Name,
		Short: d.Help,
		Args:  resourceArgs(d),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, d, args)
		},
	}

	if d.HasResource() {
		cmd.Use = fmt.Sprintf("%s <%s>", d.Name, d.Resource.Name)
		cmd.Long = fmt.Sprintf("%s\n\nArguments:\n  %s\t%s", d.Help, d.Resource.Name, d.Resource.Help)
	}

	for _, p := range d.Params {
		addParamFlag(cmd.Flags(), p)
	}

	// A --url parameter hides the global --url/-u on this command.
	if cmd.Flags().Lookup("url") != nil {
		cmd.Flags().StringVarP(&a.opts.url, instanceURLFlag, "u", "", "Shaarli instance URL (unsafe); --url is the link URL here")
	}

	return cmd
}

// addParamFlag registers the flag matching the kind of p. Join flags may be
// repeated; their values are sent as one space-separated string.
func addParamFlag(flags *pflag.FlagSet, p endpoint.ParamSpec) {
	switch p.Kind {
	case endpoint.KindFlag:
		flags.Bool(p.Name, false, p.Help)
	case endpoint.KindJoin:
		flags.StringArray(p.Name, nil, p.Help+" (repeatable, joined with spaces)")
	case endpoint.KindList:
		flags.StringSlice(p.Name, nil, p.Help+" (comma-separated or repeated)")
	case endpoint.KindChoice:
		flags.String(p.Name, "", fmt.Sprintf("%s (%s)", p.Help, strings.Join(p.Choices, ", ")))
	default:
		flags.String(p.Name, "", p.Help)
	}
}

// collectParams returns the parameters whose flags were set on the command
// line. Unset flags are not forwarded.
func collectParams(flags *pflag.FlagSet, d endpoint.Descriptor) (shaarli.Params, error) {
	params := shaarli.Params{}
	for _, p := range d.Params {
		if !flags.Changed(p.Name) {
			continue
		}

		var (
			value interface{}
			err   error
		)
		switch p.Kind {
		case endpoint.KindFlag:
			value, err = flags.GetBool(p.Name)
		case endpoint.KindJoin:
			value, err = flags.GetStringArray(p.Name)
		case endpoint.KindList:
			value, err = flags.GetStringSlice(p.Name)
		default:
			value, err = flags.GetString(p.Name)
		}
		if err != nil {
			return nil, errors.NewValueError(d.Name, err.Error())
		}
		params[p.Name] = value
	}
	return params, nil
}

func resourceArgs(d endpoint.Descriptor) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if !d.HasResource() {
			if len(args) > 0 {
				return errors.NewValueError(d.Name, fmt.Sprintf("unexpected argument %q", args[0]))
			}
			return nil
		}
		if len(args) != 1 {
			return errors.NewValueError(d.Name, fmt.Sprintf("expected exactly one %s, got %d arguments", d.Resource.Name, len(args)))
		}
		_, err := endpoint.ParseResource(d, args[0])
		return err
	}
}

// run resolves credentials, sends the request and writes the response.
func (a *app) run(cmd *cobra.Command, d endpoint.Descriptor, args []string) (err error) {
	log, err := a.newLogger()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}

	var resource interface{}
	if d.HasResource() {
		if resource, err = endpoint.ParseResource(d, args[0]); err != nil {
			return err
		}
	}

	params, err := collectParams(cmd.Flags(), d)
	if err != nil {
		return err
	}

	creds, err := config.Resolve(config.Options{
		ConfigPath: a.opts.configPath,
		Instance:   a.opts.instance,
		URL:        a.opts.url,
		Secret:     a.opts.secret,
	}, log)
	if err != nil {
		return err
	}

	client, err := shaarli.New(creds.URL, creds.Secret,
		shaarli.WithInsecure(a.opts.insecure),
		shaarli.WithTimeout(a.opts.timeout),
		shaarli.WithLogger(log),
		shaarli.WithUserAgent("shaarli-client-go/"+a.version),
	)
	if err != nil {
		return err
	}

	resp, err := client.Request(cmd.Context(), d.Name, resource, params)
	if err != nil {
		return err
	}

	w, err := output.NewWriter(cmd.OutOrStdout(), output.Config{
		Format:   format,
		FilePath: a.opts.outfile,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.WriteResponse(resp.Body); err != nil {
		return err
	}

	log.Debugf("stats: %v", client.Stats().Summary())
	return nil
}
