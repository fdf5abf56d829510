// Command pantrycore is a small JSON-emitting CLI over the pantry service.
// Storage and document backends are selected through environment variables
// (PANTRYCORE_STORAGE_DRIVER, PANTRYCORE_BLOB_DRIVER and friends).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"pantrycore/internal/blob"
	"pantrycore/internal/core"
	"pantrycore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: pantrycore <command> [flags]

commands:
  add        add an item to the shopping list
  list       list shopping list items
  buy        mark an item bought
  remove     remove an item from the list
  receipt    process a receipt JSON file against the list
  summary    spending summary for a period
  compare    compare an item's prices across stores
  bulk       compare a standard pack against a bulk pack
  suggest    shopping suggestions
  route      plan a shopping route for the open list
  budget     show budget status for a month
  set-budget set the monthly budget
  export     write a full JSON snapshot to the document store`)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	ctx := context.Background()
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		fmt.Fprintln(stderr, "open store:", err)
		return 1
	}
	opts := []core.Option{
		core.WithLogger(core.NewJSONLogger(stderr)),
		core.WithMetrics(core.NewExpvarMetricsRecorder("")),
	}
	if args[0] == "export" {
		docs, err := blob.Open(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "open document store:", err)
			return 1
		}
		opts = append(opts, core.WithDocumentStore(docs))
	}
	svc := core.NewService(store, opts...)

	out, err := dispatch(ctx, svc, args[0], args[1:], stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "encode output:", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, svc *core.Service, command string, args []string, stderr io.Writer) (any, error) {
	switch command {
	case "add":
		return runAdd(ctx, svc, args)
	case "list":
		return runList(ctx, svc, args)
	case "buy":
		return runBuy(ctx, svc, args)
	case "remove":
		return runRemove(ctx, svc, args)
	case "receipt":
		return runReceipt(ctx, svc, args)
	case "summary":
		return runSummary(ctx, svc, args)
	case "compare":
		return runCompare(ctx, svc, args)
	case "bulk":
		return runBulk(ctx, svc, args)
	case "suggest":
		return svc.Suggestions(ctx)
	case "route":
		return svc.PlanShoppingRoute(ctx)
	case "budget":
		return runBudget(ctx, svc, args)
	case "set-budget":
		return runSetBudget(ctx, svc, args)
	case "export":
		return svc.ExportSnapshot(ctx)
	default:
		usage(stderr)
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func runAdd(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "item name (required)")
	qty := fs.Float64("qty", 0, "quantity")
	unit := fs.String("unit", "", "unit of measure")
	category := fs.String("category", "", "category (guessed when empty)")
	storeName := fs.String("store", "", "preferred store")
	price := fs.Float64("price", 0, "estimated price")
	priority := fs.String("priority", "", "low|medium|high")
	notes := fs.String("notes", "", "free-form notes")
	addedBy := fs.String("by", "", "who added the item")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	input := core.AddItemInput{
		Name:     *name,
		Unit:     *unit,
		Category: *category,
		Store:    *storeName,
		Priority: core.Priority(*priority),
		Notes:    *notes,
		AddedBy:  *addedBy,
	}
	if *qty > 0 {
		input.Quantity = domain.NumericQuantity(*qty)
	}
	if *price > 0 {
		input.EstimatedPrice = price
	}
	item, _, err := svc.AddItem(ctx, input)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func runList(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	status := fs.String("status", "", "to_buy|bought|still_needed")
	storeName := fs.String("store", "", "filter by store")
	category := fs.String("category", "", "filter by category")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return svc.ListItems(ctx, core.ListFilter{
		Store:    *storeName,
		Category: *category,
		Status:   core.ItemStatus(*status),
	})
}

func runBuy(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("buy", flag.ContinueOnError)
	id := fs.String("id", "", "item id (required)")
	qty := fs.Float64("qty", 0, "actual quantity bought")
	price := fs.Float64("price", 0, "actual price paid")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	var qtyPtr, pricePtr *float64
	if *qty > 0 {
		qtyPtr = qty
	}
	if *price > 0 {
		pricePtr = price
	}
	item, _, err := svc.MarkBought(ctx, *id, qtyPtr, pricePtr)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func runRemove(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "item id (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	item, _, err := svc.RemoveItem(ctx, *id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func runReceipt(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("receipt", flag.ContinueOnError)
	file := fs.String("file", "", "receipt JSON file, - for stdin (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	var r io.Reader
	if *file == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(*file)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var input core.ReceiptInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	result, _, err := svc.ProcessReceipt(ctx, input)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func runSummary(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	period := fs.String("period", "", "weekly|monthly|yearly (default monthly)")
	limit := fs.Float64("limit", 0, "budget limit for the period")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	var limitPtr *float64
	if *limit > 0 {
		limitPtr = limit
	}
	return svc.SpendingSummary(ctx, *period, limitPtr)
}

func runCompare(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	item := fs.String("item", "", "item name (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return svc.ComparePrices(ctx, *item)
}

func runBulk(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("bulk", flag.ContinueOnError)
	item := fs.String("item", "", "item name (required)")
	stdQty := fs.Float64("std-qty", 0, "standard pack quantity (required)")
	stdPrice := fs.Float64("std-price", 0, "standard pack price (required)")
	stdUnit := fs.String("std-unit", "", "standard pack unit, e.g. oz, lb, l, count (required)")
	bulkQty := fs.Float64("bulk-qty", 0, "bulk pack quantity (required)")
	bulkPrice := fs.Float64("bulk-price", 0, "bulk pack price (required)")
	bulkUnit := fs.String("bulk-unit", "", "bulk pack unit (required)")
	usage := fs.Float64("monthly-usage", 0, "monthly usage in standard units (estimated from history when omitted)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	input := core.BulkComparisonInput{
		ItemName:         *item,
		StandardQuantity: *stdQty,
		StandardPrice:    *stdPrice,
		StandardUnit:     *stdUnit,
		BulkQuantity:     *bulkQty,
		BulkPrice:        *bulkPrice,
		BulkUnit:         *bulkUnit,
	}
	if *usage > 0 {
		input.MonthlyUsage = usage
	}
	return svc.BulkBuyingAnalysis(ctx, input)
}

func runBudget(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	month := fs.String("month", "", "YYYY-MM (default current month)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return svc.BudgetStatus(ctx, *month)
}

func runSetBudget(ctx context.Context, svc *core.Service, args []string) (any, error) {
	fs := flag.NewFlagSet("set-budget", flag.ContinueOnError)
	limit := fs.Float64("limit", 0, "monthly limit (required)")
	month := fs.String("month", "", "YYYY-MM (default current month)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	budget, _, err := svc.SetBudget(ctx, *limit, nil, *month)
	if err != nil {
		return nil, err
	}
	return budget, nil
}
