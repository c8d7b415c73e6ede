package main

import (
	"fmt"
	"os"

	"github.com/bigwhoman/wasm-micro-runtime/log"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var (
	fImage  = pflag.StringP("image", "i", "", "raw linear memory image")
	fModule = pflag.StringP("module", "m", "", "wasm module whose data segments form the image")
	fKind   = pflag.StringP("kind", "k", "", "structure to decode: "+kindList())
	fAddr   = pflag.Uint32P("addr", "a", 0, "guest address of the structure")
	fCount  = pflag.IntP("count", "n", 1, "element count for arrays")
	fTrace  = pflag.Bool("trace", false, "enable trace logging")
)

func main() {
	pflag.Parse()

	if *fTrace {
		log.EnableDebug()
	}

	if err := run(); err != nil {
		log.L.Error("walidump failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		mem *memory.Linear
		err error
	)

	switch {
	case *fModule != "":
		mem, err = moduleImage(*fModule, os.Stdout)
	case *fImage != "":
		mem, err = rawImage(*fImage)
	default:
		return errors.New("one of --image or --module is required")
	}

	if err != nil {
		return err
	}

	log.L.Trace("loaded image", "size", mem.Size())

	if *fKind == "" {
		return nil
	}

	v, err := decode(mem, *fKind, memory.Addr(*fAddr), *fCount)
	if err != nil {
		return err
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true}
	fmt.Printf("\n[%s @ %#x]\n", *fKind, *fAddr)
	cfg.Dump(v)

	return nil
}
