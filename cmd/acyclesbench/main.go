// Command acyclesbench walks a directory of assembly listings and prints,
// per file, the 020 and 060 cycle totals side by side.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	m68k "github.com/68k-cycles/acycles"
)

func main() {
	root := &cobra.Command{
		Use:   "acyclesbench <directory>",
		Short: "Run both CPU models over every assembly listing in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(args[0])
		},
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(dir string) error {
	var lastFile string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		lastFile = path

		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()

		insts, parseErr := m68k.NewParser(f).All()
		if parseErr != nil {
			return parseErr
		}

		res020, err := m68k.NewModel(m68k.Model020, insts).Simulate(0, false, io.Discard)
		if err != nil {
			return err
		}
		res060, err := m68k.NewModel(m68k.Model060, insts).Simulate(0, false, io.Discard)
		if err != nil {
			return err
		}

		fmt.Printf("%s\t%g\t%g\n", filepath.Base(path), res020, res060)
		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{"file": lastFile}).WithError(err).Error("acyclesbench aborted")
		fmt.Fprintf(os.Stderr, "error while processing %s\n", lastFile)
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
