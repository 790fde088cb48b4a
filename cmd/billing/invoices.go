package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/billing/internal/render"
	"github.com/jesses-code-adventures/billing/internal/service"
)

func newInvoicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices",
		Long:  "Create, edit, pay, list and export invoices.",
	}

	cmd.AddCommand(
		newInvoicesCreateCmd(a),
		newInvoicesListCmd(a),
		newInvoicesGetCmd(a),
		newInvoicesEditCmd(a),
		newInvoicesPayCmd(a),
		newInvoicesPaymentsCmd(a),
		newInvoicesDeleteCmd(a),
		newInvoicesPDFCmd(a),
		newInvoicesExportCmd(a),
	)

	return cmd
}

func newInvoicesCreateCmd(a *app) *cobra.Command {
	var in service.InvoiceInput
	var phone, discount, paid string
	var services []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice",
		Long:  `Create an invoice. Services are given as "name:price[:quantity]"; quantity defaults to 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ClientPhone = changedString(cmd, "phone", phone)
			in.Services = parseItems(services)
			in.Discount = discount
			in.PaidAmount = paid
			in.Date = dateOrToday(in.Date)

			inv, err := a.docs.CreateInvoice(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("Created invoice %s (Total: $%s)\n", inv.Number, inv.TotalPrice.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.ClientName, "client", "c", "", "Client name")
	cmd.Flags().StringVar(&phone, "phone", "", "Client phone")
	cmd.Flags().StringVarP(&in.ClientAddress, "address", "a", "", "Client address")
	cmd.Flags().StringVarP(&in.PostalCode, "post-code", "p", "", "Client post code")
	cmd.Flags().StringVar(&in.PaymentOption, "payment-option", "", "How the client will pay")
	cmd.Flags().StringVar(&in.Category, "category", "", "Job category")
	cmd.Flags().StringArrayVarP(&services, "service", "s", nil, "Service as name:price[:quantity], repeatable")
	cmd.Flags().StringVar(&discount, "discount", "", "Flat discount amount")
	cmd.Flags().StringVar(&paid, "paid", "", "Amount already paid")
	cmd.Flags().StringVarP(&in.Date, "date", "d", "", "Business date (YYYY-MM-DD, default today)")

	return cmd
}

func newInvoicesListCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all invoices, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			invoices, err := a.docs.ListInvoices(cmd.Context())
			if err != nil {
				return err
			}

			if len(invoices) == 0 {
				fmt.Println("No invoices found.")
				return nil
			}
			for _, inv := range invoices {
				printInvoice(inv, verbose)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full invoice details")
	return cmd
}

func newInvoicesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <number>",
		Short: "Show one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.docs.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInvoice(inv, true)
			return nil
		},
	}
}

func newInvoicesEditCmd(a *app) *cobra.Command {
	var byID bool
	var version int64
	var name, phone, address, postCode, paymentOption, category string
	var discount, paid, reference, paidDate string
	var services []string

	cmd := &cobra.Command{
		Use:   "edit <number>",
		Short: "Edit an invoice",
		Long: `Edit an invoice. Only the flags you pass are changed; --service replaces every service.
Pass --version to refuse the edit if someone else changed the invoice first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := service.InvoiceUpdate{
				ExpectedVersion: changedVersion(cmd, version),
				ClientName:      changedString(cmd, "client", name),
				ClientPhone:     changedString(cmd, "phone", phone),
				ClientAddress:   changedString(cmd, "address", address),
				PostalCode:      changedString(cmd, "post-code", postCode),
				PaymentOption:   changedString(cmd, "payment-option", paymentOption),
				Category:        changedString(cmd, "category", category),
				Services:        changedItems(cmd, "service", services),
				Discount:        changedAmount(cmd, "discount", discount),
				PaidAmount:      changedAmount(cmd, "paid", paid),
				ReferenceNumber: changedString(cmd, "reference", reference),
				PaidDate:        changedString(cmd, "paid-date", paidDate),
			}

			edit := a.docs.EditInvoiceByNumber
			if byID {
				edit = a.docs.EditInvoice
			}
			inv, err := edit(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			fmt.Printf("Updated invoice %s (version %d)\n", inv.Number, inv.Version)
			printInvoice(inv, false)
			return nil
		},
	}

	cmd.Flags().BoolVar(&byID, "id", false, "Treat the argument as an invoice id")
	cmd.Flags().Int64Var(&version, "version", 0, "Expected current version")
	cmd.Flags().StringVarP(&name, "client", "c", "", "Client name")
	cmd.Flags().StringVar(&phone, "phone", "", "Client phone (empty clears it)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Client address")
	cmd.Flags().StringVarP(&postCode, "post-code", "p", "", "Client post code")
	cmd.Flags().StringVar(&paymentOption, "payment-option", "", "How the client will pay")
	cmd.Flags().StringVar(&category, "category", "", "Job category")
	cmd.Flags().StringArrayVarP(&services, "service", "s", nil, "Service as name:price[:quantity], repeatable")
	cmd.Flags().StringVar(&discount, "discount", "", "Flat discount amount")
	cmd.Flags().StringVar(&paid, "paid", "", "Total amount paid so far")
	cmd.Flags().StringVar(&reference, "reference", "", "Payment reference")
	cmd.Flags().StringVar(&paidDate, "paid-date", "", "Date the invoice was paid (YYYY-MM-DD)")

	return cmd
}

func newInvoicesPayCmd(a *app) *cobra.Command {
	var in service.PaymentInput
	var amount, reference string

	cmd := &cobra.Command{
		Use:   "pay <number>",
		Short: "Record a payment against an invoice",
		Long: `Add a payment to an invoice. The payment that clears the balance records the reference and
paid date. Pass --key to make retries safe: a second payment with the same key is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Amount = amount
			in.ReferenceNumber = changedString(cmd, "reference", reference)

			inv, err := a.docs.ApplyPayment(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			fmt.Printf("Invoice %s: paid $%s, remaining $%s (%s)\n",
				inv.Number, inv.PaidAmount.StringFixed(2), inv.RemainingAmount.StringFixed(2), inv.PaymentStatus)
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "m", "", "Amount paid")
	cmd.Flags().StringVar(&reference, "reference", "", "Payment reference")
	cmd.Flags().StringVar(&in.PaidDate, "paid-date", "", "Date paid (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&in.IdempotencyKey, "key", "k", "", "Idempotency key for safe retries")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newInvoicesPaymentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "payments <number>",
		Short: "List the payments recorded against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payments, err := a.docs.ListPayments(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(payments) == 0 {
				fmt.Println("No payments found.")
				return nil
			}
			for _, p := range payments {
				line := fmt.Sprintf("%s | $%s", p.PaidOn.Format("2006-01-02"), p.Amount.StringFixed(2))
				if p.ReferenceNumber != nil {
					line += " | " + *p.ReferenceNumber
				}
				if p.IdempotencyKey != nil {
					line += " | key " + *p.IdempotencyKey
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newInvoicesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete an invoice and its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.docs.DeleteInvoice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted invoice %s\n", args[0])
			return nil
		},
	}
}

func newInvoicesPDFCmd(a *app) *cobra.Command {
	var output string
	var upload bool

	cmd := &cobra.Command{
		Use:   "pdf <number>",
		Short: "Render an invoice as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			number := args[0]

			if upload {
				location, err := a.docs.ArchiveInvoicePDF(ctx, number)
				if err != nil {
					return err
				}
				fmt.Printf("Archived invoice: %s\n", location)
				return nil
			}

			if output == "" {
				output = render.FileName("invoice", number)
			}
			w, closeFn, err := openOutput(output)
			if err != nil {
				return err
			}
			if err := a.docs.RenderInvoicePDF(ctx, number, w); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Printf("Generated invoice: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: invoice_<number>.pdf)")
	cmd.Flags().BoolVar(&upload, "archive", false, "Upload to the archive bucket instead of writing a file")
	return cmd
}

func newInvoicesExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export invoices to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeFn()

			return a.docs.ExportInvoicesCSV(cmd.Context(), w)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
