// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/id16/cpu"
	"github.com/ezrec/id16/emulator"
	"github.com/ezrec/id16/internal"
	"github.com/ezrec/id16/io"
	"github.com/ezrec/id16/memory"
	"github.com/ezrec/id16/translate"
)

var f = translate.From

var (
	colorTitle = color.New(color.Bold)
	colorFatal = color.New(color.FgRed, color.Bold)
)

func usage() {
	out := flag.CommandLine.Output()
	name := filepath.Base(os.Args[0])
	colorTitle.Fprintln(out, f("id16 - 16-bit machine emulator"))
	fmt.Fprintln(out)
	translate.Fprintln(out, "Usage: %v -m memory.json [-c program.s] [options]", name)
	translate.Fprintln(out, "       %v -c program.s -o image.bin", name)
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

func fatalf(format string, args ...any) {
	colorFatal.Fprintf(os.Stderr, "%v: ", filepath.Base(os.Args[0]))
	translate.Fprintln(os.Stderr, format, args...)
	os.Exit(1)
}

// assemble a program, with the defines of the emulator when one is given.
func assemble(path string, emu *emulator.Emulator, log logrus.FieldLogger, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Log: log, Verbose: verbose}
	if emu != nil {
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
	}

	prog, err = asm.Parse(inf)

	return
}

// writeImage writes the memory image of a program as a state file.
func writeImage(path string, prog *cpu.Program) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	err = memory.WriteWords(ouf, prog.Binary())
	err = errors.Join(err, ouf.Close())

	return
}

// run the emulator until interrupted, then save its memory.
func run(emu *emulator.Emulator, layout memory.Layout, store memory.Storage, kb *io.Keyboard, con *io.Console, tm *io.Terminal) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// Keyboard reads block, so the feeder is not waited for.
	go func() {
		err := kb.Feed(ctx, tm)
		if err != nil {
			cancel(err)
		}
	}()

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return emu.Run(gctx)
	})

	grp.Go(func() error {
		<-gctx.Done()
		err := emu.Save(layout, store)
		con.Flush()
		return err
	})

	emu.Start()

	err = grp.Wait()

	cause := context.Cause(ctx)
	if !errors.Is(cause, context.Canceled) && !errors.Is(cause, io.ErrInterrupted) {
		err = errors.Join(cause, err)
	}

	return
}

func main() {
	var mmap string
	var delay int
	var logs bool
	var help bool
	var compile string
	var output string

	flag.StringVar(&mmap, "m", "", "memory map JSON file")
	flag.StringVar(&mmap, "mmap", "", "memory map JSON file")
	flag.IntVar(&delay, "d", 0, "delay between instructions, in milliseconds")
	flag.IntVar(&delay, "delay", 0, "delay between instructions, in milliseconds")
	flag.BoolVar(&logs, "l", false, "log execution to stderr")
	flag.BoolVar(&logs, "logs", false, "log execution to stderr")
	flag.BoolVar(&help, "h", false, "show this help")
	flag.BoolVar(&help, "help", false, "show this help")
	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&output, "o", "", "write the assembled image to this file, do not execute")

	flag.Usage = usage
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if flag.NArg() != 0 {
		fatalf("unknown arguments: %v", flag.Args())
	}

	log := internal.Discard()
	if logs {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		log = logger
	}

	// Assemble only.
	if len(compile) != 0 && len(output) != 0 && len(mmap) == 0 {
		prog, err := assemble(compile, nil, log, logs)
		if err != nil {
			fatalf("%v: %v", compile, err)
		}
		err = writeImage(output, prog)
		if err != nil {
			fatalf("%v: %v", output, err)
		}
		return
	}

	if len(mmap) == 0 {
		flag.Usage()
		fatalf("memory map required, use -m")
	}

	layout, store, err := memory.OpenLayout(mmap)
	if err != nil {
		fatalf("%v: %v", mmap, err)
	}

	mm, err := layout.Build(store, log)
	if err != nil {
		fatalf("%v: %v", mmap, err)
	}

	tm, err := io.OpenTerminal(os.Stdin, os.Stdout)
	if err != nil {
		fatalf("terminal: %v", err)
	}
	defer tm.Close()

	kb := io.NewKeyboard(0)
	con := &io.Console{Output: tm, Log: log}

	emu := emulator.NewEmulator(mm, kb, con)
	emu.SetLogger(log)
	emu.SetDelay(delay)

	// Assemble with the machine defines, then write the image, or load it.
	if len(compile) != 0 {
		prog, err := assemble(compile, emu, log, logs)
		if err != nil {
			tm.Close()
			fatalf("%v: %v", compile, err)
		}

		if len(output) != 0 {
			tm.Close()
			err = writeImage(output, prog)
			if err != nil {
				fatalf("%v: %v", output, err)
			}
			return
		}

		for ip, word := range prog.Words() {
			mm.Write(ip, word)
		}
		emu.Program = prog
	}

	err = run(emu, layout, store, kb, con, tm)
	if err != nil {
		tm.Close()
		fatalf("%v", err)
	}
}
