package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/render"
	"github.com/jesses-code-adventures/billing/internal/service"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

func newQuotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage quotes",
		Long:  "Create, edit, list and export quotes, and convert accepted quotes into invoices.",
	}

	cmd.AddCommand(
		newQuotesCreateCmd(a),
		newQuotesListCmd(a),
		newQuotesGetCmd(a),
		newQuotesEditCmd(a),
		newQuotesDeleteCmd(a),
		newQuotesConvertCmd(a),
		newQuotesPDFCmd(a),
		newQuotesExportCmd(a),
	)

	return cmd
}

func newQuotesCreateCmd(a *app) *cobra.Command {
	var in service.QuoteInput
	var phone, address, category, discount string
	var services, materials []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a quote",
		Long:  `Create a quote. Services and materials are given as "name:price[:quantity]".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ClientPhone = changedString(cmd, "phone", phone)
			in.ClientAddress = changedString(cmd, "address", address)
			in.Category = models.QuoteCategory(category)
			in.Services = parseItems(services)
			in.Materials = parseItems(materials)
			in.Discount = discount
			in.Date = dateOrToday(in.Date)

			q, err := a.docs.CreateQuote(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("Created quote %s (Total: $%s)\n", q.Number, q.TotalPrice.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.ClientName, "client", "c", "", "Client name")
	cmd.Flags().StringVar(&phone, "phone", "", "Client phone")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Site address")
	cmd.Flags().StringVarP(&in.PostalCode, "post-code", "p", "", "Client post code")
	cmd.Flags().StringVar(&category, "category", "", "Residential, Commercial or Industrial")
	cmd.Flags().StringArrayVarP(&services, "service", "s", nil, "Service as name:price[:quantity], repeatable")
	cmd.Flags().StringArrayVarP(&materials, "material", "m", nil, "Material as name:price[:quantity], repeatable")
	cmd.Flags().StringVar(&discount, "discount", "", "Flat discount amount")
	cmd.Flags().StringVarP(&in.Date, "date", "d", "", "Business date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&in.ValidUntil, "valid-until", "", "Last day the quote can be accepted (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free text notes")

	return cmd
}

func newQuotesListCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all quotes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := a.docs.ListQuotes(cmd.Context())
			if err != nil {
				return err
			}

			if len(quotes) == 0 {
				fmt.Println("No quotes found.")
				return nil
			}
			for _, q := range quotes {
				printQuote(q, verbose)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full quote details")
	return cmd
}

func newQuotesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <number>",
		Short: "Show one quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.docs.GetQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printQuote(q, true)
			return nil
		},
	}
}

func newQuotesEditCmd(a *app) *cobra.Command {
	var byID bool
	var version int64
	var name, phone, address, postCode, category, discount, status, validUntil, notes string
	var services, materials []string

	cmd := &cobra.Command{
		Use:   "edit <number>",
		Short: "Edit a quote",
		Long:  "Edit a quote. Only the flags you pass are changed; --service and --material replace their lists.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := service.QuoteUpdate{
				ExpectedVersion: changedVersion(cmd, version),
				ClientName:      changedString(cmd, "client", name),
				ClientPhone:     changedString(cmd, "phone", phone),
				ClientAddress:   changedString(cmd, "address", address),
				PostalCode:      changedString(cmd, "post-code", postCode),
				Services:        changedItems(cmd, "service", services),
				Materials:       changedItems(cmd, "material", materials),
				Discount:        changedAmount(cmd, "discount", discount),
				ValidUntil:      changedString(cmd, "valid-until", validUntil),
				Notes:           changedString(cmd, "notes", notes),
			}
			if cmd.Flags().Changed("category") {
				update.Category = utils.ToPtr(models.QuoteCategory(category))
			}
			if cmd.Flags().Changed("status") {
				update.Status = utils.ToPtr(models.QuoteStatus(status))
			}

			edit := a.docs.EditQuoteByNumber
			if byID {
				edit = a.docs.EditQuote
			}
			q, err := edit(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			fmt.Printf("Updated quote %s (version %d)\n", q.Number, q.Version)
			printQuote(q, false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&byID, "id", false, "Treat the argument as a quote id")
	cmd.Flags().Int64Var(&version, "version", 0, "Expected current version")
	cmd.Flags().StringVarP(&name, "client", "c", "", "Client name")
	cmd.Flags().StringVar(&phone, "phone", "", "Client phone (empty clears it)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Site address (empty clears it)")
	cmd.Flags().StringVarP(&postCode, "post-code", "p", "", "Client post code")
	cmd.Flags().StringVar(&category, "category", "", "Residential, Commercial or Industrial")
	cmd.Flags().StringArrayVarP(&services, "service", "s", nil, "Service as name:price[:quantity], repeatable")
	cmd.Flags().StringArrayVarP(&materials, "material", "m", nil, "Material as name:price[:quantity], repeatable")
	cmd.Flags().StringVar(&discount, "discount", "", "Flat discount amount")
	cmd.Flags().StringVar(&status, "status", "", "DRAFT, SENT, ACCEPTED or DECLINED")
	cmd.Flags().StringVar(&validUntil, "valid-until", "", "Last day the quote can be accepted (empty clears it)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free text notes")

	return cmd
}

func newQuotesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.docs.DeleteQuote(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted quote %s\n", args[0])
			return nil
		},
	}
}

func newQuotesConvertCmd(a *app) *cobra.Command {
	var in service.ConvertInput
	var address string

	cmd := &cobra.Command{
		Use:   "convert <number>",
		Short: "Create an invoice from a quote",
		Long:  "Create an invoice carrying the quote's services and materials and its discount. The quote is not changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ClientAddress = changedString(cmd, "address", address)

			inv, err := a.docs.ConvertQuote(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			fmt.Printf("Created invoice %s from quote %s (Total: $%s)\n", inv.Number, args[0], inv.TotalPrice.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.PaymentOption, "payment-option", "", "How the client will pay")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Billing address (default: the quote's site address)")
	cmd.Flags().StringVarP(&in.Date, "date", "d", "", "Invoice business date (YYYY-MM-DD, default today)")

	return cmd
}

func newQuotesPDFCmd(a *app) *cobra.Command {
	var output string
	var upload bool

	cmd := &cobra.Command{
		Use:   "pdf <number>",
		Short: "Render a quote as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			number := args[0]

			if upload {
				location, err := a.docs.ArchiveQuotePDF(ctx, number)
				if err != nil {
					return err
				}
				fmt.Printf("Archived quote: %s\n", location)
				return nil
			}

			if output == "" {
				output = render.FileName("quote", number)
			}
			w, closeFn, err := openOutput(output)
			if err != nil {
				return err
			}
			if err := a.docs.RenderQuotePDF(ctx, number, w); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Printf("Generated quote: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: quote_<number>.pdf)")
	cmd.Flags().BoolVar(&upload, "archive", false, "Upload to the archive bucket instead of writing a file")
	return cmd
}

func newQuotesExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export quotes to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeFn()

			return a.docs.ExportQuotesCSV(cmd.Context(), w)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
