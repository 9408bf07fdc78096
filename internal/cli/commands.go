package cli

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// ErrNotFound is returned by get and ttl for a missing key.
var ErrNotFound = errors.New("key not found")

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			v, found, err := a.cache.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", ErrNotFound, args[0])
			}
			printValue(cmd.OutOrStdout(), v)
			return nil
		}),
	}
}

func newSetCmd(a *app) *cobra.Command {
	var (
		ttl    time.Duration
		asJSON bool
		noTTL  bool
	)
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Long: "Store VALUE under KEY. Without --ttl the cache.default_ttl setting applies; " +
			"--persist stores the entry without expiry.",
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var value interface{} = args[1]
			if asJSON {
				if a.raw {
					return errors.New("--json needs serialization, drop --raw")
				}
				if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
					return fmt.Errorf("invalid JSON value: %w", err)
				}
			}

			expiry := a.config.Cache.DefaultTTL
			if cmd.Flags().Changed("ttl") {
				expiry = ttl
			}
			if noTTL {
				expiry = 0
			}
			_, err := a.cache.Set(cmd.Context(), args[0], value, expiry)
			return err
		}),
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expire the entry after this duration")
	cmd.Flags().BoolVar(&noTTL, "persist", false, "store without expiry")
	cmd.Flags().BoolVar(&asJSON, "json", false, "parse VALUE as JSON and store the decoded structure")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY...",
		Aliases: []string{"remove", "del"},
		Short:   "Remove keys",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				if _, err := a.cache.Remove(cmd.Context(), key); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newTTLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ttl KEY",
		Short: "Print the remaining time to live of KEY",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ttl, found, err := a.cache.TTL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", ErrNotFound, args[0])
			}
			if ttl == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no expiry")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ttl.Round(time.Millisecond))
			return nil
		}),
	}
}

func newFlushCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete EVERY key of the backend",
		Long: "Delete every key of the backend, including keys written by other " +
			"applications sharing it. Use purge to delete only this cache's keys.",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("flush deletes every key of the backend, pass --yes to confirm")
			}
			_, err := a.cache.Clear(cmd.Context())
			return err
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the flush")
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete the keys under the key template",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			n, err := a.cache.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d keys removed\n", n)
			return nil
		}),
	}
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if err := a.cache.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PONG")
			return nil
		}),
	}
}
