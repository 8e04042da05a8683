package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/wraith/internal/config"
	"github.com/rileyhilliard/wraith/internal/errors"
	"github.com/rileyhilliard/wraith/internal/server"
	"github.com/rileyhilliard/wraith/internal/ui"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the server inventory",
}

var serverAddFlags = struct {
	name, host, username, auth, keyPath, tags, description string
	port                                                   int
}{}

var serverAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server",
	Long: `Add a server to the inventory.

Without flags an interactive form collects the details. With --name and
--host the server is added non-interactively.

Examples:
  wraith server add
  wraith server add --name web --host web.example.com --username deploy --auth key-file --key-path ~/.ssh/id_ed25519`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverAdd()
	},
}

var serverEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverEdit(args[0])
	},
}

var serverRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a server",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverRemove(args[0])
	},
}

var serverListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverList()
	},
}

func init() {
	f := serverAddCmd.Flags()
	f.StringVar(&serverAddFlags.name, "name", "", "display name")
	f.StringVar(&serverAddFlags.host, "host", "", "hostname or IP address")
	f.IntVar(&serverAddFlags.port, "port", server.DefaultSSHPort, "SSH port")
	f.StringVar(&serverAddFlags.username, "username", "", "SSH username")
	f.StringVar(&serverAddFlags.auth, "auth", "agent", "auth method: key-file, agent, password, interactive")
	f.StringVar(&serverAddFlags.keyPath, "key-path", "", "private key path (key-file auth)")
	f.StringVar(&serverAddFlags.tags, "tags", "", "comma-separated tags")
	f.StringVar(&serverAddFlags.description, "description", "", "free-text description")

	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverEditCmd)
	serverCmd.AddCommand(serverRemoveCmd)
	serverCmd.AddCommand(serverListCmd)
	rootCmd.AddCommand(serverCmd)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func serverAdd() error {
	cfg, savePath, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}

	rec := server.NewRecord(serverAddFlags.name, serverAddFlags.host, serverAddFlags.port, serverAddFlags.username)
	rec.Auth = server.ParseAuthMethod(serverAddFlags.auth)
	rec.KeyPath = serverAddFlags.keyPath
	rec.Description = serverAddFlags.description
	if serverAddFlags.tags != "" {
		rec.Tags = splitTags(serverAddFlags.tags)
	}

	if rec.Name == "" || rec.Host == "" {
		if !interactive() {
			return errors.New(errors.ErrConfig,
				"--name and --host are required in non-interactive mode",
				"Pass both flags, or run from a terminal for the interactive form")
		}
		if err := runServerForm(&rec); err != nil {
			return err
		}
	}

	for _, e := range cfg.Servers {
		if e.Name == rec.Name {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Server '%s' already exists", rec.Name),
				"Choose a different name, or use 'wraith server edit' to change it")
		}
	}

	cfg.Servers = append(cfg.Servers, config.EntryFor(rec))
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, savePath); err != nil {
		return err
	}

	class := server.Assess(rec.Auth, rec.Port)
	fmt.Printf("%s Added %s (%s), security: %s\n",
		ui.SymbolSecure, rec.Name, rec.ConnectionString(), class)
	if class == server.ClassVulnerable {
		fmt.Println("  password auth on port 22 is easy to brute-force; prefer key-file or agent auth")
	}
	return nil
}

func serverEdit(name string) error {
	cfg, savePath, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	idx := findServer(cfg, name)
	if idx < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' not found", name),
			"Use 'wraith server list' to see the inventory")
	}
	if !interactive() {
		return errors.New(errors.ErrConfig,
			"'server edit' needs a terminal",
			"Edit the config file directly for scripted changes")
	}

	rec := cfg.Servers[idx].ToRecord()
	if err := runServerForm(&rec); err != nil {
		return err
	}
	cfg.Servers[idx] = config.EntryFor(rec)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, savePath); err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", rec.Name)
	return nil
}

func serverRemove(name string) error {
	cfg, savePath, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	idx := findServer(cfg, name)
	if idx < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Server '%s' not found", name),
			"Use 'wraith server list' to see the inventory")
	}
	cfg.Servers = append(cfg.Servers[:idx], cfg.Servers[idx+1:]...)
	if err := config.Save(cfg, savePath); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", name)
	return nil
}

func serverList() error {
	cfg, _, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}
	if len(cfg.Servers) == 0 {
		fmt.Println("No servers configured. Add one with 'wraith server add'.")
		return nil
	}

	muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	for _, e := range cfg.Servers {
		rec := e.ToRecord()
		class := server.Assess(rec.Auth, rec.Port)
		line := fmt.Sprintf("%-18s %-30s %-12s %s",
			rec.Name, rec.ConnectionString(), rec.Auth, class)
		if len(rec.Tags) > 0 {
			line += "  " + muted.Render(strings.Join(rec.Tags, ","))
		}
		fmt.Println(line)
	}
	return nil
}

// findServer returns the index of the entry with the given name, or -1.
func findServer(cfg *config.Config, name string) int {
	for i, e := range cfg.Servers {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// runServerForm collects or edits record fields interactively.
func runServerForm(rec *server.Record) error {
	port := strconv.Itoa(rec.Port)
	auth := string(rec.Auth)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Display name in the dashboard").
				Placeholder("web-1").
				Value(&rec.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Host").
				Placeholder("web.example.com or 10.0.0.5").
				Value(&rec.Host).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("port must be 1-65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Username").
				Placeholder("deploy").
				Value(&rec.Username),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Authentication").
				Options(
					huh.NewOption("SSH agent", string(server.AuthAgent)),
					huh.NewOption("Key file", string(server.AuthKeyFile)),
					huh.NewOption("Password", string(server.AuthPassword)),
					huh.NewOption("Keyboard-interactive", string(server.AuthInteractive)),
				).
				Value(&auth),
			huh.NewInput().
				Title("Key path").
				Description("Only used with key-file auth").
				Placeholder("~/.ssh/id_ed25519").
				Value(&rec.KeyPath),
			huh.NewInput().
				Title("Description (optional)").
				Value(&rec.Description),
		),
	)
	if err := form.Run(); err != nil {
		return errors.Wrap(err, "form cancelled")
	}

	rec.Port, _ = strconv.Atoi(port)
	rec.Auth = server.ParseAuthMethod(auth)
	return nil
}
