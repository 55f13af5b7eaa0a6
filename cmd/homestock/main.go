// Command homestock manages a shared household shopping list and stock list
// from the terminal. State lives in a local store (sqlite by default) and can
// be exported, imported, backed up, and shared as JSON documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"homestock/internal/adapters/share"
	"homestock/internal/blob"
	"homestock/internal/config"
	"homestock/internal/core"
	"homestock/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: homestock <command> [flags]

commands:
  list                     show the shopping list
  stock                    show the stock list
  add <name>               add a shopping item (-category)
  toggle <id>              toggle a shopping item's checked state
  remove <id>              delete a shopping item
  stock-add <name>         add a stock item (-category, -status, -note)
  stock-set <id> <status>  set a stock item's status (sufficient|low|none)
  stock-remove <id>        delete a stock item
  buy <stock-id>           put a stock item onto the shopping list
  category-add <name>      add a category
  category-remove <name>   remove a category
  categories               list categories
  actor <name>             set the actor name stamped on saves
  export [file]            export the snapshot as JSON
  import <file>            stage, summarize, and commit an import
  backup                   create a backup
  backups                  list backups
  restore <key>            restore a backup
  share <file>             publish an exported document to the blob backend`)
}

func run(args []string) int {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if len(args) == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(os.Getenv("HOMESTOCK_CONFIG"))
	if err != nil {
		log.Error("load config", "error", err)
		return 1
	}
	cfg.Apply()

	store, err := core.OpenSnapshotStore()
	if err != nil {
		log.Error("open store", "error", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	svc, err := core.NewService(store, core.WithLogger(log))
	if err != nil {
		log.Error("load snapshot", "error", err)
		return 1
	}
	if cfg.Actor != "" && svc.Actor() == "" {
		if err := svc.SetActor(cfg.Actor); err != nil {
			log.Warn("set actor from config", "error", err)
		}
	}

	cmd, rest := args[0], args[1:]
	if err := dispatch(svc, log, cmd, rest); err != nil {
		log.Error(cmd, "error", err)
		return 1
	}
	return 0
}

func dispatch(svc *core.Service, log *slog.Logger, cmd string, args []string) error {
	switch cmd {
	case "list":
		return cmdList(svc, args)
	case "stock":
		return cmdStock(svc, args)
	case "add":
		return cmdAdd(svc, args)
	case "toggle":
		return withID(args, func(id string) error {
			item, ok, err := svc.ToggleShoppingItem(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no such item")
				return nil
			}
			fmt.Printf("%s checked=%v\n", item.Name, item.Checked)
			return nil
		})
	case "remove":
		return withID(args, svc.DeleteShoppingItem)
	case "stock-add":
		return cmdStockAdd(svc, args)
	case "stock-set":
		return cmdStockSet(svc, args)
	case "stock-remove":
		return withID(args, svc.DeleteStockItem)
	case "buy":
		return withID(args, func(id string) error {
			item, ok, err := svc.AddStockToShopping(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no such stock item")
				return nil
			}
			fmt.Printf("added %s to shopping list\n", item.Name)
			return nil
		})
	case "category-add":
		return withID(args, svc.AddCategory)
	case "category-remove":
		return withID(args, svc.RemoveCategory)
	case "categories":
		for _, cat := range svc.Categories() {
			fmt.Printf("%s\t%s\n", cat, svc.CategoryColor(cat))
		}
		return nil
	case "actor":
		return withID(args, svc.SetActor)
	case "export":
		return cmdExport(svc, args)
	case "import":
		return cmdImport(svc, args)
	case "backup":
		key, err := svc.CreateBackup()
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("nothing to back up")
			return nil
		}
		fmt.Println(key)
		return nil
	case "backups":
		infos, err := svc.ListBackups()
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%s\t%s\n", info.Key, core.FormatDisplayDate(info.CreatedAt))
		}
		return nil
	case "restore":
		return withID(args, svc.RestoreBackup)
	case "share":
		return cmdShare(svc, log, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func withID(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument")
	}
	return fn(args[0])
}

func viewFlags(fs *flag.FlagSet) *core.ViewState {
	view := &core.ViewState{}
	fs.StringVar(&view.Search, "search", "", "substring name filter")
	fs.StringVar(&view.Category, "category", "", "category filter")
	return view
}

func cmdList(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	view := viewFlags(fs)
	sortMode := fs.String("sort", "recent", "sort order: recent|category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view.Sort = core.SortMode(*sortMode)
	for _, item := range svc.Shopping(*view) {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		fmt.Printf("[%s] %s\t%s\t%s\n", mark, item.ID, item.Name, item.Category)
	}
	return nil
}

func cmdStock(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	view := viewFlags(fs)
	status := fs.String("status", "", "status filter: sufficient|low|none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view.Status = domain.StockStatus(*status)
	for _, item := range svc.Stock(*view) {
		fmt.Printf("%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Status, item.Category)
	}
	return nil
}

func cmdAdd(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	category := fs.String("category", "", "item category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	item, err := svc.AddShoppingItem(name, *category)
	if err != nil {
		return err
	}
	fmt.Println(item.ID)
	return nil
}

func cmdStockAdd(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("stock-add", flag.ContinueOnError)
	category := fs.String("category", "", "item category")
	status := fs.String("status", "", "initial status (default sufficient)")
	note := fs.String("note", "", "free-form note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	item, err := svc.AddStockItem(name, *category, domain.StockStatus(*status), *note)
	if err != nil {
		return err
	}
	fmt.Println(item.ID)
	return nil
}

func cmdStockSet(svc *core.Service, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <id> <status>")
	}
	item, ok, err := svc.SetStockStatus(args[0], domain.StockStatus(args[1]))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no such stock item")
		return nil
	}
	fmt.Printf("%s %s\n", item.Name, item.Status)
	return nil
}

func cmdExport(svc *core.Service, args []string) error {
	data, name, err := svc.Export()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		name = args[0]
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	fmt.Println(name)
	return nil
}

func cmdImport(svc *core.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	summary, err := svc.StageImport(data)
	if err != nil {
		return err
	}
	fmt.Printf("importing %d shopping, %d stock, %d categories (last saved %s by %s)\n",
		summary.ShoppingCount, summary.StockCount, summary.CategoryCount,
		core.FormatDisplayDate(summary.UpdatedAt), summary.UpdatedBy)
	return svc.CommitImport()
}

func cmdShare(svc *core.Service, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <file>")
	}
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	worker := share.NewWorker(store, share.NewMemoryAuditLogger())
	worker.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := worker.Stop(stopCtx); err != nil {
			log.Warn("share worker stop", "error", err)
		}
	}()
	delivery, err := worker.EnqueueShare(ctx, svc.Actor(), args[0], core.ExportContentType, payload)
	if err != nil {
		return err
	}
	for {
		d, ok := worker.GetDelivery(delivery.ID)
		if !ok {
			return fmt.Errorf("delivery %s lost", delivery.ID)
		}
		switch d.Status {
		case share.StatusSucceeded:
			fmt.Println(d.URL)
			return nil
		case share.StatusFailed:
			return fmt.Errorf("share failed: %s", d.Error)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
