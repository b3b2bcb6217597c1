package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fsa-go/internal/app"
	"fsa-go/internal/audit"
	"fsa-go/internal/config"
	"fsa-go/internal/encode"
	"fsa-go/internal/hash"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Audit", "Diff").
func newApp(operation string, parameters string, extraIgnore []string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation, parameters, extraIgnore)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:   "fsa",
	Short: "Filesystem audit tool",
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit PATH...",
	Short: "Audit files and record their metadata and content hashes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		algorithm, _ := cmd.Flags().GetString("algorithm")
		ignore, _ := cmd.Flags().GetStringArray("ignore")
		format, _ := cmd.Flags().GetString("string")
		jsonOut, _ := cmd.Flags().GetString("json")
		csvOut, _ := cmd.Flags().GetString("csv")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		roots := args

		if encrypt && jsonOut == "" && csvOut == "" {
			return fmt.Errorf("--encrypt requires --json or --csv")
		}

		var tmpl *encode.Template
		if format != "" {
			var err error
			tmpl, err = encode.ParseTemplate(format)
			if err != nil {
				return fmt.Errorf("parsing format: %w", err)
			}
		}

		a, err := newApp("Audit", strings.Join(roots, " "), ignore)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.Audit(roots, app.AuditOptions{
			Recursive: recursive,
			Algorithm: algorithm,
			OnRecord: func(r *audit.Record) error {
				if tmpl != nil {
					fmt.Println(tmpl.Render(r))
				} else {
					fmt.Println(r.Path)
				}
				return nil
			},
		})
		if err != nil {
			a.MarkFailed()
			return err
		}

		if jsonOut != "" {
			written, err := a.SaveSnapshot(snap, jsonOut, app.FormatJSON, encrypt)
			if err != nil {
				a.MarkFailed()
				return fmt.Errorf("writing JSON snapshot: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Snapshot written to %s\n", written)
		}
		if csvOut != "" {
			written, err := a.SaveSnapshot(snap, csvOut, app.FormatCSV, encrypt)
			if err != nil {
				a.MarkFailed()
				return fmt.Errorf("writing CSV snapshot: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Snapshot written to %s\n", written)
		}

		return nil
	},
}

// diff command
var diffCmd = &cobra.Command{
	Use:   "diff FILE FILE...",
	Short: "Compare snapshot files and group matching versions",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Diff", strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Diff(args, func() (string, error) {
			return promptPassphrase("Passphrase: ")
		})
		if err != nil {
			a.MarkFailed()
			return err
		}

		return encode.WriteDiffTable(os.Stdout, report)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Algorithm:  %s\n", cfg.Audit.Algorithm)
		fmt.Printf("Ignore:     %s\n", strings.Join(cfg.Audit.Ignore, ", "))
		fmt.Printf("Algorithms: %s\n", strings.Join(hash.Algorithms(), ", "))
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("InitKeys", "", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.InitKeys(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage snapshots in the vault",
}

var snapshotPublishCmd = &cobra.Command{
	Use:   "publish FILE",
	Short: "Upload a snapshot file to the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PublishSnapshot", args[0], nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.PublishSnapshot(args[0]); err != nil {
			return err
		}

		fmt.Printf("Published %s\n", args[0])
		return nil
	},
}

var snapshotFetchCmd = &cobra.Command{
	Use:   "fetch NAME [DEST]",
	Short: "Download a snapshot from the vault",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FetchSnapshot", args[0], nil)
		if err != nil {
			return err
		}
		defer a.Close()

		dest := args[0]
		if len(args) > 1 {
			dest = args[1]
		}

		if err := a.FetchSnapshot(args[0], dest); err != nil {
			return err
		}

		fmt.Printf("Fetched %s to %s\n", args[0], dest)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots stored in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListSnapshots", "", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListSnapshots()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No snapshots stored.")
			return nil
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View audit run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory", "", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No audit runs recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-10s  %6d file(s)  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				op.FileCount,
				duration,
			)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	auditCmd.Flags().StringP("algorithm", "a", "", "Hash algorithm (default from config)")
	auditCmd.Flags().StringArrayP("ignore", "i", nil, "Ignore pattern (repeatable)")
	auditCmd.Flags().StringP("string", "s", "", "Per-file output template, e.g. '{path} {hash}'")
	auditCmd.Flags().String("json", "", "Write a JSON snapshot to this file")
	auditCmd.Flags().String("csv", "", "Write a CSV snapshot to this file")
	auditCmd.Flags().Bool("encrypt", false, "Encrypt snapshot output with the configured public key")
	rootCmd.AddCommand(auditCmd)

	rootCmd.AddCommand(diffCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	keysCmd.AddCommand(keysInitCmd)
	rootCmd.AddCommand(keysCmd)

	snapshotCmd.AddCommand(snapshotPublishCmd)
	snapshotCmd.AddCommand(snapshotFetchCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
