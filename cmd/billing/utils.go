package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/pricing"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

// parseItems reads "name:price[:quantity]" flag values. A name may itself contain colons when
// both price and quantity are given.
func parseItems(values []string) []pricing.RawItem {
	items := make([]pricing.RawItem, 0, len(values))
	for _, value := range values {
		parts := strings.Split(value, ":")
		switch {
		case len(parts) == 1:
			items = append(items, pricing.RawItem{Name: parts[0]})
		case len(parts) == 2:
			items = append(items, pricing.RawItem{Name: parts[0], Price: parts[1]})
		default:
			n := len(parts)
			items = append(items, pricing.RawItem{
				Name:     strings.Join(parts[:n-2], ":"),
				Price:    parts[n-2],
				Quantity: parts[n-1],
			})
		}
	}
	return items
}

// changedString returns the flag's value only when the user set it, so edits leave other
// fields alone.
func changedString(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return utils.ToPtr(value)
}

// changedAmount is changedString for amounts, which the service takes untyped.
func changedAmount(cmd *cobra.Command, name, value string) any {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return value
}

func changedItems(cmd *cobra.Command, name string, values []string) *[]pricing.RawItem {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	items := parseItems(values)
	return &items
}

func changedVersion(cmd *cobra.Command, version int64) *int64 {
	if !cmd.Flags().Changed("version") {
		return nil
	}
	return utils.ToPtr(version)
}

func dateOrToday(date string) string {
	if date == "" {
		return time.Now().Format(models.DateLayout)
	}
	return date
}

// openOutput returns stdout for "" or "-", otherwise a created file.
func openOutput(output string) (io.Writer, func() error, error) {
	if output == "" || output == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}

func printInvoice(inv *models.Invoice, verbose bool) {
	fmt.Printf("%s | %s | %s | $%s | %s\n",
		inv.Number,
		inv.IssuedOn.Format(models.DateLayout),
		inv.ClientName,
		inv.TotalPrice.StringFixed(2),
		inv.PaymentStatus)

	if !verbose {
		return
	}

	fmt.Printf("  ID: %s (version %d)\n", inv.ID, inv.Version)
	fmt.Printf("  Address: %s %s\n", inv.ClientAddress, inv.PostalCode)
	if inv.ClientPhone != nil {
		fmt.Printf("  Phone: %s\n", *inv.ClientPhone)
	}
	fmt.Printf("  Category: %s | Payment: %s\n", inv.Category, inv.PaymentOption)
	for _, item := range inv.Services {
		fmt.Printf("  → %s: %s x $%s\n", item.Name, item.Quantity.String(), item.UnitPrice.StringFixed(2))
	}
	fmt.Printf("  Subtotal: $%s | Discount: $%s | Total: $%s\n",
		inv.Subtotal.StringFixed(2), inv.Discount.StringFixed(2), inv.TotalPrice.StringFixed(2))
	fmt.Printf("  Paid: $%s | Remaining: $%s\n", inv.PaidAmount.StringFixed(2), inv.RemainingAmount.StringFixed(2))
	if inv.ReferenceNumber != nil {
		fmt.Printf("  Reference: %s\n", *inv.ReferenceNumber)
	}
	if inv.PaidDate != nil {
		fmt.Printf("  Paid on: %s\n", inv.PaidDate.Format(models.DateLayout))
	}
}

func printQuote(q *models.Quote, verbose bool) {
	fmt.Printf("%s | %s | %s | $%s | %s\n",
		q.Number,
		q.IssuedOn.Format(models.DateLayout),
		q.ClientName,
		q.TotalPrice.StringFixed(2),
		q.Status)

	if !verbose {
		return
	}

	fmt.Printf("  ID: %s (version %d)\n", q.ID, q.Version)
	fmt.Printf("  Address: %s %s\n", utils.FromPtr(q.ClientAddress), q.PostalCode)
	if q.ClientPhone != nil {
		fmt.Printf("  Phone: %s\n", *q.ClientPhone)
	}
	fmt.Printf("  Category: %s\n", q.Category)
	for _, item := range q.Services {
		fmt.Printf("  → %s: %s x $%s\n", item.Name, item.Quantity.String(), item.UnitPrice.StringFixed(2))
	}
	for _, item := range q.Materials {
		fmt.Printf("  → (material) %s: %s x $%s\n", item.Name, item.Quantity.String(), item.UnitPrice.StringFixed(2))
	}
	fmt.Printf("  Subtotal: $%s | Discount: $%s | Total: $%s\n",
		q.Subtotal.StringFixed(2), q.Discount.StringFixed(2), q.TotalPrice.StringFixed(2))
	if q.ValidUntil != nil {
		fmt.Printf("  Valid until: %s\n", q.ValidUntil.Format(models.DateLayout))
	}
	if q.Notes != "" {
		fmt.Printf("  Notes: %s\n", q.Notes)
	}
}
