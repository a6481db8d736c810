package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"revault/internal/app"
	"revault/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readContent returns the --content flag value, or all of stdin when
// the flag was not set.
func readContent(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	if cmd.Flags().Changed("content") {
		return content, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading content from stdin: %w", err)
	}
	return string(data), nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
// When confirm is true it is read twice and both entries must match.
func promptPassphrase(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}

var rootCmd = &cobra.Command{
	Use:   "rv",
	Short: "Per-user revisioned text store with a tamper-evident audit trail",
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

		instanceID := uuid.New().String()
		cfg := config.NewConfig(instanceID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Instance ID: %s\n", instanceID)
		fmt.Printf("Root Dir: %s\n", cfg.RootDir)
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
		fmt.Printf("Instance ID:  %s\n", cfg.InstanceID)
		fmt.Printf("Root Dir:     %s\n", cfg.RootDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Lock Timeout: %dms\n", cfg.LockTimeoutMS)
		return nil
	},
}

// seal command
var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Manage audit export keys",
}

var sealInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair for sealed audit exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupSeal")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := promptPassphrase(true)
		if err != nil {
			return err
		}

		if err := a.SetupSeal(passphrase); err != nil {
			return fmt.Errorf("initializing seal keys: %w", err)
		}

		fmt.Println("Seal keys initialized")
		return nil
	},
}

// resource commands
var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("CreateResource")
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := readContent(cmd)
		if err != nil {
			return err
		}

		rev, err := a.CreateResource(user, args[0], content)
		if err != nil {
			return fmt.Errorf("creating resource: %w", err)
		}

		fmt.Printf("Created %s (rev %s)\n", args[0], rev)
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print a resource's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		rev, _ := cmd.Flags().GetString("rev")

		a, err := newApp("ReadResource")
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.ReadResource(user, args[0], rev)
		if err != nil {
			return fmt.Errorf("reading resource: %w", err)
		}

		fmt.Print(text)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Append a new revision to a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("UpdateResource")
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := readContent(cmd)
		if err != nil {
			return err
		}

		rev, err := a.UpdateResource(user, args[0], content)
		if err != nil {
			return fmt.Errorf("updating resource: %w", err)
		}

		fmt.Printf("Updated %s (rev %s)\n", args[0], rev)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a resource and all its revisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("DeleteResource")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteResource(user, args[0]); err != nil {
			return fmt.Errorf("deleting resource: %w", err)
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List a user's resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("ListResources")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListResources(user)
		if err != nil {
			return fmt.Errorf("listing resources: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No resources.")
			return nil
		}
		fmt.Println(strings.Join(names, "\n"))
		return nil
	},
}

var revsCmd = &cobra.Command{
	Use:   "revs NAME",
	Short: "List a resource's revision ids in creation order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("ListRevisions")
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ListRevisions(user, args[0])
		if err != nil {
			return fmt.Errorf("listing revisions: %w", err)
		}

		fmt.Println(strings.Join(ids, "\n"))
		return nil
	},
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the audit log's hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VerifyAudit")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.VerifyAudit()
		if err != nil {
			return fmt.Errorf("verifying audit log: %w", err)
		}
		if !ok {
			return fmt.Errorf("audit log verification FAILED: chain is broken")
		}

		fmt.Println("Audit log OK")
		return nil
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a sealed copy of the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("ExportAudit")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportAudit(out); err != nil {
			return fmt.Errorf("exporting audit log: %w", err)
		}

		fmt.Printf("Exported audit log to %s\n", out)
		return nil
	},
}

var auditOpenCmd = &cobra.Command{
	Use:   "open FILE",
	Short: "Decrypt a sealed audit export to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("OpenAudit")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := promptPassphrase(false)
		if err != nil {
			return err
		}

		if err := a.OpenAudit(passphrase, args[0], os.Stdout); err != nil {
			return fmt.Errorf("opening audit export: %w", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	sealCmd.AddCommand(sealInitCmd)
	rootCmd.AddCommand(sealCmd)

	for _, cmd := range []*cobra.Command{createCmd, catCmd, updateCmd, rmCmd, lsCmd, revsCmd} {
		cmd.Flags().String("user", "", "user id owning the resource")
		cmd.MarkFlagRequired("user")
		rootCmd.AddCommand(cmd)
	}
	createCmd.Flags().String("content", "", "resource content (stdin when omitted)")
	updateCmd.Flags().String("content", "", "new content (stdin when omitted)")
	catCmd.Flags().String("rev", "", "revision id (latest when omitted)")

	auditExportCmd.Flags().String("out", "audit.log.age", "output path for the sealed export")
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditOpenCmd)
	rootCmd.AddCommand(auditCmd)
}
