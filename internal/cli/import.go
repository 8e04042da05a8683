package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wraith/internal/config"
	"github.com/rileyhilliard/wraith/internal/errors"
	"github.com/rileyhilliard/wraith/internal/server"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import hosts from ~/.ssh/config",
	Long: `Import concrete host entries from your SSH client configuration.

Wildcard patterns are skipped. Hosts whose alias already exists in the
inventory are skipped too, so re-running import is safe.

Examples:
  wraith import
  wraith import --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport()
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show what would be imported without saving")
	rootCmd.AddCommand(importCmd)
}

func runImport() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, "cannot determine home directory")
	}
	records, err := parseSSHConfig(filepath.Join(home, ".ssh", "config"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No importable hosts found in ~/.ssh/config.")
		return nil
	}

	cfg, savePath, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(cfg.Servers))
	for _, e := range cfg.Servers {
		existing[e.Name] = true
	}

	added := 0
	for _, rec := range records {
		if existing[rec.Name] {
			continue
		}
		if importDryRun {
			fmt.Printf("would import %s (%s)\n", rec.Name, rec.ConnectionString())
			added++
			continue
		}
		cfg.Servers = append(cfg.Servers, config.EntryFor(rec))
		fmt.Printf("imported %s (%s)\n", rec.Name, rec.ConnectionString())
		added++
	}

	if importDryRun {
		fmt.Printf("%d host(s) would be imported\n", added)
		return nil
	}
	if added == 0 {
		fmt.Println("Nothing new to import.")
		return nil
	}
	if err := config.Save(cfg, savePath); err != nil {
		return err
	}
	fmt.Printf("Imported %d host(s) into %s\n", added, savePath)
	return nil
}

// parseSSHConfig reads an SSH client config and converts its concrete host
// entries to server records. A missing file is not an error.
func parseSSHConfig(path string) ([]server.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read "+path, "Check file permissions")
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot parse "+path, "Check the SSH config syntax")
	}

	var records []server.Record
	seen := make(map[string]bool)
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true

			hostname, _ := cfg.Get(alias, "HostName")
			if hostname == "" {
				hostname = alias
			}
			port := server.DefaultSSHPort
			if p, _ := cfg.Get(alias, "Port"); p != "" {
				if n, err := strconv.Atoi(p); err == nil && n > 0 && n <= 65535 {
					port = n
				}
			}
			user, _ := cfg.Get(alias, "User")

			rec := server.NewRecord(alias, hostname, port, user)
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" && identity != ssh_config.Default("IdentityFile") {
				rec.Auth = server.AuthKeyFile
				rec.KeyPath = identity
			}
			rec.Tags = []string{"imported"}
			records = append(records, rec)
		}
	}
	return records, nil
}
