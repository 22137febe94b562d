package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func (c *cli) personCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage the badge identity directory",
	}
	cmd.AddCommand(c.personRegisterCmd())
	return cmd
}

func (c *cli) personRegisterCmd() *cobra.Command {
	var req types.RegisterRequest
	var department, designation, phone, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create or update the person holding a badge",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Registration replaces the record; omitted optionals are cleared.
			req.Department, req.Designation = &department, &designation
			req.Phone, req.Email = &phone, &email
			res, err := c.client().Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s) on badge %s\n",
				res.Message, res.Person.Name, res.Person.EmployeeID, res.Person.TagID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.TagID, "tag", "", "badge id")
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.EmployeeID, "employee-id", "", "employee id, unique across badges")
	cmd.Flags().StringVar(&department, "department", "", "department")
	cmd.Flags().StringVar(&designation, "designation", "", "job title")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}
