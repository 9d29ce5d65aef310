// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ezrec/uvm/emulator"
	"github.com/ezrec/uvm/image"
	"github.com/ezrec/uvm/um"
)

// debugEnv reports whether the UVM_DEBUG environment variable is truthy.
func debugEnv() bool {
	value := strings.ToLower(os.Getenv("UVM_DEBUG"))

	return value != "" && value != "0" && value != "false"
}

func main() {
	var compile string
	var save string
	var input string
	var output string
	var timeout time.Duration
	var verbose bool

	flag.StringVar(&compile, "c", "", ".uasm file to compile")
	flag.StringVar(&save, "s", "", "Save compiled image to file, do not execute")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.DurationVar(&timeout, "t", 0, "Execution timeout (0 for none)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	verbose = verbose || debugEnv()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	var words []uint32

	switch {
	case len(compile) != 0:
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}

		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &um.Assembler{}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}

		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		words = emu.Program.Binary()
	case flag.NArg() == 1:
		var err error
		words, err = image.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
	default:
		log.Fatalf("%v: no image or source given", os.Args[0])
	}

	if len(save) != 0 {
		err := image.WriteFile(save, words)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	emu.Load(words)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := emu.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
}
