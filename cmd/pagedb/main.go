// pagedb is a small driver for index files and page caches.
// Usage: pagedb [-config pagedb.ini] <command> [args]
//
//	create <index> <int|float|string|bool> [n]
//	insert <index> <key> <page.slot>
//	find   <index> <key>
//	delete <index> <key>
//	scan   <index>
//	dump   <index>
//	drop   <index>
//	pool   [-strategy lru] [-capacity 16] <page>...
//
// Keys are literals such as i10, f2.5, sabc or btrue.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pagedb/btree"
	"pagedb/buffer"
	"pagedb/common"
	"pagedb/config"
	"pagedb/disk"
	"pagedb/index"
	"pagedb/types"
)

func main() {
	configPath := flag.String("config", "", "ini file with storage, buffer, index and logs sections")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	common.SetLogLevel(cfg.LogLevel)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		common.Logger().WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, cmd string, args []string) error {
	if cmd == "pool" {
		return replayPool(cfg, args, os.Stdout)
	}
	if len(args) < 1 {
		return errors.Errorf("%s needs an index name", cmd)
	}

	m, err := index.NewManager(cfg)
	if err != nil {
		return err
	}
	name := args[0]

	switch cmd {
	case "create":
		if len(args) < 2 {
			return errors.New("create needs a key type")
		}
		keyType, err := types.ParseDataType(args[1])
		if err != nil {
			return err
		}
		n := cfg.DefaultN
		if len(args) > 2 {
			if n, err = strconv.Atoi(args[2]); err != nil {
				return errors.Wrap(err, "n")
			}
		}
		return m.CreateBtree(name, keyType, n)
	case "drop":
		return m.DeleteBtree(name)
	}

	h, err := m.OpenBtree(name)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			common.Logger().WithError(err).Error("closing index")
		}
	}()

	switch cmd {
	case "insert":
		if len(args) < 3 {
			return errors.New("insert needs a key and a rid")
		}
		key, err := types.Parse(args[1])
		if err != nil {
			return err
		}
		rid, err := parseRID(args[2])
		if err != nil {
			return err
		}
		return h.InsertKey(key, rid)
	case "find":
		key, err := keyArg(args)
		if err != nil {
			return err
		}
		rid, err := h.FindKey(key)
		if err != nil {
			return err
		}
		fmt.Println(rid)
	case "delete":
		key, err := keyArg(args)
		if err != nil {
			return err
		}
		return h.DeleteKey(key)
	case "scan":
		sc, err := h.OpenTreeScan()
		if err != nil {
			return err
		}
		defer sc.Close()
		for {
			k, rid, err := sc.NextKeyEntry()
			if errors.Is(err, common.ErrNoMoreEntries) {
				break
			}
			if err != nil {
				return err
			}
			fmt.Printf("%v\t%v\n", k, rid)
		}
	case "dump":
		fmt.Print(h.Dump())
		fmt.Printf("nodes=%d entries=%d\n", h.NumNodes(), h.NumEntries())
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
	return nil
}

func keyArg(args []string) (types.Value, error) {
	if len(args) < 2 {
		return types.Value{}, errors.New("missing key")
	}
	return types.Parse(args[1])
}

func parseRID(s string) (btree.RID, error) {
	page, slot, ok := strings.Cut(s, ".")
	if !ok {
		return btree.RID{}, errors.Errorf("rid %q is not page.slot", s)
	}
	p, err := strconv.ParseInt(page, 10, 32)
	if err != nil {
		return btree.RID{}, errors.Wrap(err, "rid page")
	}
	sl, err := strconv.ParseInt(slot, 10, 32)
	if err != nil {
		return btree.RID{}, errors.Wrap(err, "rid slot")
	}
	return btree.RID{Page: int32(p), Slot: int32(sl)}, nil
}

// replayPool pins and unpins the given pages on a scratch file in the data directory
// and prints the pool after every request. Strategy and capacity default to the
// [buffer] section of the config.
func replayPool(cfg *config.Config, args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("pool", flag.ContinueOnError)
	strategyName := fs.String("strategy", cfg.Strategy, "fifo, lru, clock or lfu")
	capacity := fs.Int("capacity", cfg.PoolCapacity, "number of frames")
	if err := fs.Parse(args); err != nil {
		return err
	}
	strategy, err := buffer.ParseStrategy(*strategyName)
	if err != nil {
		return err
	}

	file := cfg.Path(uuid.New().String() + ".bin")
	if err := disk.CreatePageFile(file); err != nil {
		return err
	}
	defer func() { _ = disk.DestroyPageFile(file) }()

	bp, err := buffer.NewBufferPool(file, *capacity, strategy)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := bp.Shutdown(); err == nil {
			err = shutdownErr
		}
	}()

	for _, a := range fs.Args() {
		pageNum, err := strconv.Atoi(a)
		if err != nil {
			return errors.Wrapf(err, "page %q", a)
		}
		if _, err := bp.Pin(pageNum); err != nil {
			return err
		}
		bp.Unpin(pageNum)
		fmt.Fprintln(out, bp.String())
	}
	fmt.Fprintf(out, "reads=%d writes=%d empty=%d\n", bp.NumReadIO(), bp.NumWriteIO(), bp.EmptyFrameSize())
	return nil
}
