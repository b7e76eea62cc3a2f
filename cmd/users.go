// Package cmd provides command-line interface commands for CTIScope.
package cmd

import (
	"fmt"
	"strings"

	"ctiscope/config"
	"ctiscope/core"
	"ctiscope/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags for users commands
var (
	noColor bool
)

// NewUsersCmd creates the root users command with all subcommands.
func NewUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage analyst accounts",
		Long: `Manage analyst accounts without going through the HTTP API.

Useful for bootstrapping a deployment or recovering access when the
admin credentials are unavailable.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	usersCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	usersCmd.AddCommand(newUsersListCmd())
	usersCmd.AddCommand(newUsersCreateCmd())
	usersCmd.AddCommand(newUsersDeleteCmd())
	usersCmd.AddCommand(newUsersResetPasswordCmd())

	return usersCmd
}

// initUserStore loads the configuration and opens the user store.
func initUserStore() (*storage.UserStore, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return storage.NewUserStore(cfg.DataDir, cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, cfg.Auth.BcryptCost), nil
}

// newUsersListCmd creates the 'list' subcommand
func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initUserStore()
			if err != nil {
				return err
			}

			users, err := store.List()
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			renderUsersTable(users)
			return nil
		},
	}
}

// newUsersCreateCmd creates the 'create' subcommand
func newUsersCreateCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initUserStore()
			if err != nil {
				return err
			}

			user, err := store.Create(args[0], args[1], role)
			if err != nil {
				errorColor.Printf("Failed to create user: %v\n", err)
				return err
			}

			successColor.Printf("Created user %q with id %s\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", core.RoleAnalyst, "Account role (admin or analyst)")

	return cmd
}

// newUsersDeleteCmd creates the 'delete' subcommand
func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == core.AdminUserID {
				return fmt.Errorf("the static admin cannot be deleted")
			}

			store, err := initUserStore()
			if err != nil {
				return err
			}

			if err := store.Delete(args[0]); err != nil {
				errorColor.Printf("Failed to delete user: %v\n", err)
				return err
			}

			successColor.Printf("Deleted user %s\n", args[0])
			return nil
		},
	}
}

// newUsersResetPasswordCmd creates the 'reset-password' subcommand
func newUsersResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <id> <new-password>",
		Short: "Reset an account password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == core.AdminUserID {
				return fmt.Errorf("the static admin password is set via configuration")
			}

			store, err := initUserStore()
			if err != nil {
				return err
			}

			if err := store.SetPassword(args[0], args[1]); err != nil {
				errorColor.Printf("Failed to reset password: %v\n", err)
				return err
			}

			successColor.Printf("Password reset for user %s\n", args[0])
			return nil
		},
	}
}

// renderUsersTable displays accounts in a formatted table
func renderUsersTable(users []core.User) {
	if len(users) == 0 {
		warningColor.Println("No accounts configured")
		return
	}

	headerColor.Println("USERS")
	headerColor.Println(strings.Repeat("=", 48))
	fmt.Printf("%-8s %-25s %-10s\n", "ID", "Username", "Role")
	fmt.Println(strings.Repeat("-", 48))

	for _, user := range users {
		username := user.Username
		if len(username) > 24 {
			username = username[:21] + "..."
		}
		fmt.Printf("%-8s %-25s %-10s\n", user.ID, username, user.Role)
	}

	fmt.Println(strings.Repeat("=", 48))
}
