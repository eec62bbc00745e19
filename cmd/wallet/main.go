package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/evgeny-myasishchev/money-manager/config"
	"github.com/evgeny-myasishchev/money-manager/pkg/app"
	"github.com/evgeny-myasishchev/money-manager/pkg/client"
	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/request"
	"github.com/evgeny-myasishchev/money-manager/pkg/types"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	cmd         string
	owner       string
	idToken     string
	window      string
	id          string
	trxType     string
	amount      string
	description string
	category    string
	division    string
	toDivision  string
}

func init() {
	flag.StringVar(&cliArgs.cmd, "cmd", "", "Command to run. Available commands: list, summary, add, transfer, edit, delete")
	flag.StringVar(&cliArgs.owner, "owner", "", "Owner of transactions. Defaults to wallet/owner config")
	flag.StringVar(&cliArgs.idToken, "id-token", "", "ID token to identify the owner with instead of -owner")
	flag.StringVar(&cliArgs.window, "window", "", "Time window: ALL, WEEKLY, MONTHLY")
	flag.StringVar(&cliArgs.id, "id", "", "Transaction id to edit or delete")
	flag.StringVar(&cliArgs.trxType, "type", "EXPENSE", "Transaction type: INCOME or EXPENSE")
	flag.StringVar(&cliArgs.amount, "amount", "", "Amount, a positive decimal")
	flag.StringVar(&cliArgs.description, "description", "", "Description")
	flag.StringVar(&cliArgs.category, "category", "", "Category, General if empty")
	flag.StringVar(&cliArgs.division, "division", "", "Division, Personal if empty. Also narrows list and summary")
	flag.StringVar(&cliArgs.toDivision, "to-division", "", "Destination division of a transfer")

	flag.Parse()
}

func showHelpAndExit() {
	flag.PrintDefaults()
	os.Exit(1)
}

func newAPI(appCfg *config.AppConfig) (client.API, error) {
	opts := []client.APIOpt{
		client.WithSendOpts(request.WithClient(&http.Client{Timeout: appCfg.Wallet.Timeout.Value()})),
	}
	if cliArgs.idToken != "" {
		opts = append(opts, client.WithIDToken(types.IDToken(cliArgs.idToken)))
		return client.NewAPI(appCfg.Wallet.API.Value(), opts...)
	}
	owner := cliArgs.owner
	if owner == "" {
		owner = appCfg.Wallet.Owner.Value()
	}
	opts = append(opts, client.WithOwner(owner))
	return client.NewAPI(appCfg.Wallet.API.Value(), opts...)
}

// isSet tells if the flag was given explicitly
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func input(trxType ledger.Type) ledger.Input {
	return ledger.Input{
		Type:        trxType,
		Amount:      ledger.NewRawAmount(cliArgs.amount),
		Description: cliArgs.description,
		Category:    cliArgs.category,
		Division:    cliArgs.division,
		ToDivision:  cliArgs.toDivision,
	}
}

func patch() ledger.Patch {
	var p ledger.Patch
	if isSet("type") {
		trxType := ledger.Type(cliArgs.trxType)
		p.Type = &trxType
	}
	if isSet("amount") {
		p.Amount = ledger.NewRawAmount(cliArgs.amount)
	}
	if isSet("description") {
		p.Description = &cliArgs.description
	}
	if isSet("category") {
		p.Category = &cliArgs.category
	}
	if isSet("division") {
		p.Division = &cliArgs.division
	}
	return p
}

func printRows(rows []ledger.Row) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tDIVISION\tCATEGORY\tDESCRIPTION\tSTATUS")
	for _, row := range rows {
		division := row.Division
		if row.IsTransfer() {
			division = row.Division + " -> " + row.ToDivision
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
			row.ID,
			row.CreatedAt.Local().Format("2006-01-02 15:04"),
			row.Type,
			row.Amount.StringFixed(2),
			division,
			row.Category,
			row.Description,
			row.EditStatus,
		)
	}
	return w.Flush()
}

func printSummary(summary *ledger.Summary) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Income\t%v\n", summary.Income.StringFixed(2))
	fmt.Fprintf(w, "Expense\t%v\n", summary.Expense.StringFixed(2))
	fmt.Fprintf(w, "Balance\t%v\n", summary.Balance.StringFixed(2))
	divisions := make([]string, 0, len(summary.Divisions))
	for division := range summary.Divisions {
		divisions = append(divisions, division)
	}
	sort.Strings(divisions)
	for _, division := range divisions {
		fmt.Fprintf(w, "  %v\t%v\n", division, summary.Divisions[division].StringFixed(2))
	}
	return w.Flush()
}

func run(ctx context.Context, ledgerAPI client.API) error {
	query := client.Query{Window: ledger.Window(cliArgs.window), Division: cliArgs.division}
	switch cliArgs.cmd {
	case "list":
		rows, err := ledgerAPI.ListTransactions(ctx, query)
		if err != nil {
			return err
		}
		return printRows(rows)
	case "summary":
		summary, err := ledgerAPI.Summary(ctx, query)
		if err != nil {
			return err
		}
		return printSummary(summary)
	case "add":
		trx, err := ledgerAPI.CreateTransaction(ctx, input(ledger.Type(cliArgs.trxType)))
		if err != nil {
			return err
		}
		fmt.Println("Created", trx.ID)
	case "transfer":
		transfer, err := ledgerAPI.CreateTransfer(ctx, input(ledger.TypeTransfer))
		if err != nil {
			return err
		}
		fmt.Println("Transferred", transfer.Debit.TransferID)
	case "edit":
		if cliArgs.id == "" {
			showHelpAndExit()
		}
		row, err := ledgerAPI.UpdateTransaction(ctx, cliArgs.id, patch())
		if err != nil {
			return err
		}
		return printRows([]ledger.Row{*row})
	case "delete":
		if cliArgs.id == "" {
			showHelpAndExit()
		}
		if err := ledgerAPI.DeleteTransaction(ctx, cliArgs.id); err != nil {
			return err
		}
		fmt.Println("Deleted", cliArgs.id)
	default:
		showHelpAndExit()
	}
	return nil
}

func main() {
	if cliArgs.cmd == "" {
		showHelpAndExit()
	}
	ctx := context.Background()

	appCfg, err := app.LoadConfig()
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
		setup.SetLogMode(appCfg.Log.Mode.Value())
	})

	ledgerAPI, err := newAPI(appCfg)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to create ledger api")
		os.Exit(1)
	}
	if err := run(ctx, ledgerAPI); err != nil {
		logger.WithError(err).Error(ctx, "Failed to run %v", cliArgs.cmd)
		os.Exit(1)
	}
}
