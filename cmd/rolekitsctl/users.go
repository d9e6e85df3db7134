package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/husainf4l/rolekits/pkg/client"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var username, displayName string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username required")
			}
			var display *string
			if displayName != "" {
				display = &displayName
			}
			c := client.New(apiFlag, tokenFlag)
			user, err := c.CreateUser(cmd.Context(), username, display)
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
	createCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	createCmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name")
	_ = createCmd.MarkFlagRequired("username")
	usersCmd.AddCommand(createCmd)

	rootCmd.AddCommand(usersCmd)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}
