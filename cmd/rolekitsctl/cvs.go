package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/husainf4l/rolekits/pkg/client"
)

func init() {
	cvsCmd := &cobra.Command{Use: "cvs", Short: "CV operations (require --token)"}

	// create
	var createJSON string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a CV from a JSON field document",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{}
			if createJSON != "" {
				if err := json.Unmarshal([]byte(createJSON), &fields); err != nil {
					return fmt.Errorf("invalid --data JSON: %w", err)
				}
			}
			cv, err := client.New(apiFlag, tokenFlag).CreateCV(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return printJSON(cv)
		},
	}
	createCmd.Flags().StringVarP(&createJSON, "data", "d", "", `Initial fields as JSON, e.g. '{"fullName":"Ahmad"}'`)
	cvsCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get CV_ID",
		Short: "Get a CV by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := client.New(apiFlag, tokenFlag).GetCV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cv)
		},
	}
	cvsCmd.AddCommand(getCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the authenticated user's CVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cvs, err := client.New(apiFlag, tokenFlag).ListCVs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cvs)
		},
	}
	cvsCmd.AddCommand(listCmd)

	// update
	var patchJSON string
	updateCmd := &cobra.Command{
		Use:   "update CV_ID",
		Short: "Apply a partial update to a CV",
		Long:  "Apply a partial update. Fields absent from the JSON are preserved; fields set to null are cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]any{}
			if err := json.Unmarshal([]byte(patchJSON), &patch); err != nil {
				return fmt.Errorf("invalid --data JSON: %w", err)
			}
			cv, err := client.New(apiFlag, tokenFlag).UpdateCV(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cv)
		},
	}
	updateCmd.Flags().StringVarP(&patchJSON, "data", "d", "", `Patch as JSON, e.g. '{"phone":null,"email":"a@b.co"}' (required)`)
	_ = updateCmd.MarkFlagRequired("data")
	cvsCmd.AddCommand(updateCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete CV_ID",
		Short: "Delete a CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(apiFlag, tokenFlag).DeleteCV(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
	cvsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(cvsCmd)
}
