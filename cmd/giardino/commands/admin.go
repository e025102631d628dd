package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diewo77/giardino/internal/db"
	"github.com/diewo77/giardino/internal/models"
)

var (
	// Admin flags
	adminEmail    string
	adminPassword string
	adminName     string
	adminRole     string
)

// adminCmd groups account commands
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage back-office accounts",
}

// adminCreateCmd creates an account
var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a back-office account",
	Long: `Create a back-office account with a bcrypt hashed password.

Examples:
  giardino admin create --email anna@example.com --password s3cret --role admin
  giardino admin create --email luca@example.com --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := models.Role(adminRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q (admin or staff)", adminRole)
		}
		if len(adminPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		_, log, gdb, err := setup()
		if err != nil {
			return err
		}
		u, err := db.CreateAdmin(gdb, adminEmail, adminPassword, adminName, role)
		if err != nil {
			return err
		}
		log.Info("account created")
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", u.Email, u.Role, u.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Account email (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Account password (required)")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "Display name")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", string(models.RoleStaff), "Role: admin or staff")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
