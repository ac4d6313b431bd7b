// Command acycles estimates the cycle cost of a short 68k assembly loop
// body under either the 68020 in-order pipeline or the 68060 dual-issue
// scheduler.
package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	m68k "github.com/68k-cycles/acycles"
)

// modelFlagRe recognizes the model-number shorthand as its own
// argument, e.g. -68060, -060, -60 -- not cobra/pflag's usual --flag=value
// shape, so it's peeled off of os.Args before cobra ever sees it.
var modelFlagRe = regexp.MustCompile(`^-(\d{2,5})$`)

func main() {
	var unroll int
	var watch bool
	modelNumber := 68060

	args := os.Args[1:]
	if len(args) > 0 {
		if m := modelFlagRe.FindStringSubmatch(args[0]); m != nil {
			n, _ := strconv.Atoi(m[1])
			modelNumber = n
			args = args[1:]
		}
	}

	root := &cobra.Command{
		Use:   "acycles [-68020|-68060] <source-file>",
		Short: "Static cycle-accuracy estimator for 68020/68060 assembly loops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return run(cmdArgs[0], modelNumber, unroll, watch)
		},
	}
	root.Flags().IntVar(&unroll, "unroll", 0, "loop unroll factor (N means the body is logically repeated N+1 times)")
	root.Flags().BoolVar(&watch, "watch", false, "interactively single-step the 68060 scheduler instead of printing a listing")
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("acycles failed")
		os.Exit(1)
	}
}

func run(path string, modelNumber, unroll int, watch bool) error {
	kind, err := m68k.ParseModelNumber(modelNumber)
	if err != nil {
		log.WithFields(log.Fields{"model": modelNumber}).WithError(err).Error("unsupported CPU model")
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithFields(log.Fields{"file": path}).WithError(err).Error("could not open source file")
		return err
	}
	defer f.Close()

	insts, err := m68k.NewParser(f).All()
	if err != nil {
		logParseErr(path, err)
		return err
	}

	if watch {
		if kind != m68k.Model060 {
			err := fmt.Errorf("watch mode requires the 68060 model")
			log.WithError(err).Error("cannot start watch mode")
			return err
		}
		return runWatch(insts)
	}

	model := m68k.NewModel(kind, insts)
	if _, err := model.Simulate(unroll, true, os.Stdout); err != nil {
		log.WithFields(log.Fields{"file": path, "model": kind}).WithError(err).Error("simulation failed")
		return err
	}
	if kind == m68k.Model060 {
		// Steady-state cycles/iteration: one pass with a large unroll so
		// cross-iteration stalls are amortized in.
		avg, err := model.Simulate(100, false, io.Discard)
		if err != nil {
			return err
		}
		words := 0
		for _, i := range insts {
			words += i.NumWords()
		}
		fmt.Printf("Instruction words in loop: %d, %g cycles/iteration\n", words, avg)
	}
	return nil
}

func logParseErr(path string, err error) {
	fields := log.Fields{"file": path}
	if pe, ok := err.(*m68k.ParseError); ok {
		fields["line"] = pe.Line
		fields["col"] = pe.Column
	}
	log.WithFields(fields).WithError(err).Error("parse failed")
}
