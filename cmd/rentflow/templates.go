package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/model"
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage recurring obligation templates",
		Long:  `List, add, and deactivate the recurring templates that drive schedule generation.`,
	}

	cmd.AddCommand(listTemplatesCmd())
	cmd.AddCommand(addTemplateCmd())
	cmd.AddCommand(deactivateTemplateCmd())

	return cmd
}

func listTemplatesCmd() *cobra.Command {
	var includeInactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			templates, err := store.ListTemplates(ctx, currentOwner(), !includeInactive)
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println("No templates found. Use 'rentflow templates add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tableHeaderStyle.Render("ID"),
				tableHeaderStyle.Render("Description"),
				tableHeaderStyle.Render("Frequency"),
				tableHeaderStyle.Render("Amount"),
				tableHeaderStyle.Render("Property"),
				tableHeaderStyle.Render("Active"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 8),
				strings.Repeat("-", 30),
				strings.Repeat("-", 11),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 6))

			for _, tmpl := range templates {
				property := "-"
				if tmpl.PropertyID != nil {
					property = *tmpl.PropertyID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%s\t%t\n",
					shortID(tmpl.ID),
					tmpl.Description,
					tmpl.Frequency,
					tmpl.Amount,
					property,
					tmpl.IsActive)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInactive, "all", false, "include deactivated templates")

	return cmd
}

func addTemplateCmd() *cobra.Command {
	var (
		property   string
		account    string
		category   string
		direction  string
		frequency  string
		amount     float64
		startDate  string
		endDate    string
		dayOfWeek  int
		dayOfMonth int
		amountTol  float64
		dateTol    int
		alertDelay int
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a new recurring template",
		Long: `Declare a recurring obligation, for example:

  rentflow templates add "Rent - 12 Harbour St" \
    --property prop-1 --category Rent --direction income \
    --frequency monthly --day-of-month 1 --amount 650 --start 2024-01-01

Weekly and fortnightly templates anchor to a day of week; monthly,
quarterly and annual templates anchor to a day of month.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			freq, err := model.ParseFrequency(frequency)
			if err != nil {
				return err
			}

			start, err := parseDateFlag(startDate)
			if err != nil {
				return err
			}

			tmpl := &model.RecurringTemplate{
				OwnerID:           currentOwner(),
				Description:       args[0],
				Category:          category,
				Direction:         model.TransactionDirection(direction),
				Frequency:         freq,
				Amount:            amount,
				AmountTolerance:   amountTol,
				DateToleranceDays: dateTol,
				AlertDelayDays:    alertDelay,
				StartDate:         start,
				IsActive:          true,
			}
			if property != "" {
				tmpl.PropertyID = &property
			}
			if account != "" {
				tmpl.AccountID = &account
			}
			if endDate != "" {
				end, endErr := parseDateFlag(endDate)
				if endErr != nil {
					return endErr
				}
				tmpl.EndDate = &end
			}
			if cmd.Flags().Changed("day-of-week") {
				tmpl.AnchorDayOfWeek = &dayOfWeek
			}
			if cmd.Flags().Changed("day-of-month") {
				tmpl.AnchorDayOfMonth = &dayOfMonth
			}

			if err := store.CreateTemplate(ctx, tmpl); err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}

			fmt.Printf("Created template %s (%s %s, $%.2f)\n",
				shortID(tmpl.ID), tmpl.Frequency, tmpl.Description, tmpl.Amount)

			return nil
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "property this obligation belongs to")
	cmd.Flags().StringVar(&account, "account", "", "bank account the money moves through")
	cmd.Flags().StringVar(&category, "category", "", "obligation category (Rent, Strata, Insurance, ...)")
	cmd.Flags().StringVar(&direction, "direction", "income", "money direction (income, expense, transfer)")
	cmd.Flags().StringVar(&frequency, "frequency", "", "weekly, fortnightly, monthly, quarterly or annually")
	cmd.Flags().Float64Var(&amount, "amount", 0, "expected amount per occurrence")
	cmd.Flags().StringVar(&startDate, "start", "", "first date the obligation applies (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "last date the obligation applies (YYYY-MM-DD)")
	cmd.Flags().IntVar(&dayOfWeek, "day-of-week", 0, "anchor day of week, 0 = Sunday")
	cmd.Flags().IntVar(&dayOfMonth, "day-of-month", 0, "anchor day of month, 1-31")
	cmd.Flags().Float64Var(&amountTol, "amount-tolerance", 0, "absolute amount tolerance for matching")
	cmd.Flags().IntVar(&dateTol, "date-tolerance", 0, "date tolerance in days for matching")
	cmd.Flags().IntVar(&alertDelay, "alert-delay", 0, "grace days before an unpaid occurrence is missed")

	_ = cmd.MarkFlagRequired("frequency")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func deactivateTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <template-id>",
		Short: "Deactivate a template",
		Long:  `Stop generating occurrences for a template. Existing occurrences are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetTemplateActive(ctx, args[0], false); err != nil {
				return fmt.Errorf("failed to deactivate template: %w", err)
			}

			fmt.Printf("Deactivated template %s\n", shortID(args[0]))
			return nil
		},
	}
}

// shortID trims UUIDs for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
