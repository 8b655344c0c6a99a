package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"salesdesk/internal/logger"
	"salesdesk/pkg/billing"
	"salesdesk/pkg/client"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "salesctl",
		Usage: "work with the salesdesk sales API from a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   client.DefaultBaseURL,
				Usage:   "sales API base URL",
				EnvVars: []string{"SALESCTL_API"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   defaultStoreDir(),
				Usage:   "directory holding the session and local lists",
				EnvVars: []string{"SALESCTL_STORE"},
			},
			&cli.BoolFlag{Name: "verbose", Usage: "log requests and token refreshes"},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and keep the tokens in the store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"SALESCTL_PASSWORD"}},
				},
				Action: login,
			},
			{
				Name:   "logout",
				Usage:  "revoke the refresh token and clear the store",
				Action: logout,
			},
			{
				Name:   "customers",
				Usage:  "list customers",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "search", Aliases: []string{"s"}}},
				Action: listCustomers,
			},
			{
				Name:  "challans",
				Usage: "delivery challans",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "customer"}},
						Action: listChallans,
					},
					{
						Name:      "create",
						Usage:     "create a challan from a JSON file",
						ArgsUsage: "<file.json>",
						Action:    createChallan,
					},
				},
			},
			{
				Name:  "pay",
				Usage: "record a payment settling every unpaid invoice of a customer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "customer", Required: true},
					&cli.StringFlag{Name: "mode", Value: "CASH"},
					&cli.StringFlag{Name: "reference"},
					&cli.StringFlag{Name: "pattern", Usage: "YEAR, YEAR_MONTH, DATE_DDMMYYYY or YEAR_SLASH_MONTH"},
				},
				Action: recordFullPayment,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".salesctl"
	}
	return filepath.Join(home, ".salesctl")
}

// newClient opens the store, restores the session and builds the client.
func newClient(c *cli.Context) (*client.Client, error) {
	store, err := client.OpenLocalStore(c.String("store"))
	if err != nil {
		return nil, err
	}
	session := client.NewSession(store)
	if err := session.Init(); err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if c.Bool("verbose") {
		log = logger.New(logger.Config{Level: "debug", Format: "console", Output: "stderr"})
	}
	return client.New(session,
		client.WithBaseURL(c.String("api")),
		client.WithLogger(log),
		client.WithOnLogout(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `salesctl login` again")
		}),
	), nil
}

func login(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	if err := api.Login(c.Context, c.String("username"), c.String("password")); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func logout(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	return api.Logout(c.Context)
}

func listCustomers(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	customers, err := api.ListCustomers(c.Context, c.String("search"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL")
	for _, cu := range customers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cu.ID, cu.Name, cu.CompanyName, cu.Email)
	}
	return w.Flush()
}

func listChallans(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	challans, err := api.ListDeliveryChallans(c.Context, c.String("customer"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSTATUS\tGRAND TOTAL")
	for _, d := range challans {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Number(), d.Status, d.GrandTotal)
	}
	return w.Flush()
}

// challanFile is the JSON accepted by `challans create`.
type challanFile struct {
	CustomerID    string            `json:"customer_id"`
	NumberPattern string            `json:"number_pattern"`
	Sequence      string            `json:"sequence"`
	ChallanType   string            `json:"challan_type"`
	ChallanDate   string            `json:"challan_date"`
	ReferenceNo   string            `json:"reference_no"`
	TaxKind       string            `json:"tax_kind"`
	TaxOptionID   string            `json:"tax_option_id"`
	Adjustment    string            `json:"adjustment"`
	CustomerNotes string            `json:"customer_notes"`
	Items         []billing.ItemRow `json:"items"`
}

func createChallan(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one JSON file", 2)
	}
	raw, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	var in challanFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("invalid challan file: %w", err)
	}
	kind, ok := billing.ParseTaxKind(in.TaxKind)
	if !ok {
		return fmt.Errorf("tax_kind must be TDS, TCS or empty")
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}
	form := client.NewDocumentForm(c.Context, api, client.DeliveryChallan, nil)
	defer form.Close()
	if err := form.Load(); err != nil {
		return err
	}

	form.CustomerID = in.CustomerID
	form.Pattern = billing.NumberPattern(in.NumberPattern)
	form.Sequence = in.Sequence
	form.Fields["challan_type"] = in.ChallanType
	form.Fields["challan_date"] = in.ChallanDate
	form.Fields["reference_no"] = in.ReferenceNo
	form.Fields["customer_notes"] = in.CustomerNotes

	form.Rows = nil
	for i, item := range in.Items {
		form.AddRow()
		form.UpdateRow(i, billing.FieldDescription, item.Description)
		form.UpdateRow(i, billing.FieldQuantity, item.Quantity)
		form.UpdateRow(i, billing.FieldRate, item.Rate)
		form.UpdateRow(i, billing.FieldDiscount, item.DiscountPercent)
	}
	form.SelectTax(kind, in.TaxOptionID)
	form.SetAdjustment(in.Adjustment)

	totals := form.Totals().Rounded()
	fmt.Printf("suggested %s, grand total %s\n", form.SuggestNumber(), billing.FormatAmount(totals.GrandTotal))

	doc, err := form.Submit()
	if err != nil {
		return err
	}
	fmt.Printf("created %s (grand total %s)\n", doc.Number(), doc.GrandTotal)
	return nil
}

func recordFullPayment(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	form := client.NewPaymentForm(c.Context, api, nil)
	defer form.Close()

	if err := form.SelectCustomer(c.String("customer")); err != nil {
		return err
	}
	if len(form.Rows) == 0 {
		fmt.Println("nothing to pay")
		return nil
	}
	form.PaymentMode = c.String("mode")
	form.ReferenceNo = c.String("reference")
	form.Pattern = billing.NumberPattern(c.String("pattern"))
	form.SetFullAmount(true)

	payment, err := form.Submit()
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s: %s received\n", payment.PaymentNo, payment.AmountReceived)
	for _, a := range payment.Allocations {
		fmt.Printf("  %s  used %s  remaining %s  %s\n", a.InvoiceNo, a.AmountUsed, a.RemainingDue, a.InvoiceStatus)
	}
	return nil
}

