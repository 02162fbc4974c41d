package client

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/dashkeys/internal/adapter"
	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/tui"
)

// ErrKeyNotSet is returned by commands that need a stored key when the
// service has none.
var ErrKeyNotSet = errors.New("no key stored")

func (a *App) createSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <service>",
		Short: "Encrypt and store the API key of a service",
		Long:  "Reads the key from the terminal without echo, or one line from stdin when it is piped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(args)
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "API key: ")
			if err != nil {
				return err
			}
			if err = cred.Store(cmd.Context(), secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s %s\n", cred.Service(), cred.MaskedKey())
			return nil
		},
	}
}

func (a *App) createUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <service>",
		Short: "Replace the stored API key of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(args)
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "New API key: ")
			if err != nil {
				return err
			}
			if err = cred.Update(cmd.Context(), secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", cred.Service(), cred.MaskedKey())
			return nil
		},
	}
}

func (a *App) createGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <service>",
		Short: "Decrypt and print the API key of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(args)
			if err != nil {
				return err
			}
			plaintext, ok, err := cred.Retrieve(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %q", ErrKeyNotSet, cred.Service())
			}
			fmt.Fprintln(cmd.OutOrStdout(), plaintext)
			return nil
		},
	}
}

func (a *App) createRemoveCommand() *cobra.Command {
	removeCmd := &cobra.Command{
		Use:     "rm <service>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove the stored API key of a service",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(args)
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("yes")
			if err != nil {
				return err
			}
			if !force && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Remove the key of %q?", cred.Service())) {
				fmt.Fprintln(cmd.OutOrStdout(), "removal cancelled")
				return nil
			}
			if err = cred.Remove(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cred.Service())
			return nil
		},
	}
	removeCmd.Flags().BoolP("yes", "y", false, "remove without confirmation")
	return removeCmd
}

func (a *App) createStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [service...]",
		Short: "Show whether keys are stored, without decrypting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				var err error
				if names, err = a.services.Credentials.List(cmd.Context()); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tSTATUS\tKEY")
			for _, name := range names {
				cred, err := a.services.Credentials.For(name)
				if err != nil {
					return err
				}
				state := cred.Load(cmd.Context())
				fmt.Fprintf(w, "%s\t%s\t%s\n", state.Service, state.Status, state.MaskedKey)
			}
			return w.Flush()
		},
	}
}

func (a *App) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.services.Credentials.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no keys stored")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *App) createMaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mask <service>",
		Short: "Decrypt the key of a service and print it masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.credential(args)
			if err != nil {
				return err
			}
			_, ok, err := cred.Retrieve(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %q", ErrKeyNotSet, cred.Service())
			}
			fmt.Fprintln(cmd.OutOrStdout(), cred.MaskedKey())
			return nil
		},
	}
}

func (a *App) createFingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the device fingerprint keys are bound to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.services.Keychain.Fingerprint())
			return nil
		},
	}
}

// probeReport is the YAML document printed by the probe command.
type probeReport struct {
	UserAgent      string `yaml:"user_agent"`
	Language       string `yaml:"language"`
	Screen         string `yaml:"screen"`
	TimezoneOffset int    `yaml:"timezone_offset_minutes"`
	CPUCount       int    `yaml:"cpu_count"`
	Platform       string `yaml:"platform"`
	Hostname       string `yaml:"hostname"`
	MachineID      string `yaml:"machine_id"`
	Fingerprint    string `yaml:"fingerprint"`
}

func (a *App) createProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the device attributes the fingerprint is built from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			probe, err := crypto.DeviceProbe(a.cfg.Crypto.Device, a.probe)
			if err != nil {
				return err
			}
			env := probe.Probe()

			out, err := yaml.Marshal(probeReport{
				UserAgent:      env.UserAgent,
				Language:       env.Language,
				Screen:         fmt.Sprintf("%dx%d", env.ScreenWidth, env.ScreenHeight),
				TimezoneOffset: env.TimezoneOffset,
				CPUCount:       env.CPUCount,
				Platform:       env.Platform,
				Hostname:       env.Hostname,
				MachineID:      env.MachineID,
				Fingerprint:    crypto.Fingerprint(env),
			})
			if err != nil {
				return fmt.Errorf("marshal probe: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (a *App) createCallCommand() *cobra.Command {
	var (
		placement string
		param     string
	)

	callCmd := &cobra.Command{
		Use:   "call <service> <url>",
		Short: "Send a GET request authenticated with the stored key of a service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := func(name string) (adapter.CredentialSource, error) {
				return a.services.Credentials.For(name)
			}
			client := adapter.NewKeyedHTTPClient(a.cfg.Adapter, lookup, a.logger)

			resp, err := client.Get(cmd.Context(), adapter.Endpoint{
				Service:   args[0],
				BaseURL:   args[1],
				Placement: adapter.KeyPlacement(strings.ToLower(placement)),
				Param:     param,
			}, "")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(resp.Body)
			return err
		},
	}
	callCmd.Flags().StringVar(&placement, "placement", string(adapter.PlaceBearer), "where the key goes: bearer, header or query")
	callCmd.Flags().StringVar(&param, "param", "", "header or query parameter name for the key")
	return callCmd
}

func (a *App) createUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal credential manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.New(a.services.Credentials, a.storage, a.buildInfo, a.logger).Run(cmd.Context())
		},
	}
}

func (a *App) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSetup: ""},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Build version: %s\n", orNA(a.buildInfo.BuildVersion()))
			fmt.Fprintf(out, "Build date: %s\n", orNA(a.buildInfo.BuildDate()))
			fmt.Fprintf(out, "Build commit: %s\n", orNA(a.buildInfo.BuildCommit()))
		},
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
