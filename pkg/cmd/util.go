// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/search"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/termio"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetFloat gets an expected floating point value, or panic if an error arises.
func GetFloat(cmd *cobra.Command, flag string) float64 {
	r, err := cmd.Flags().GetFloat64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array, or panic if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetDuration gets an expected duration, or panic if an error arises.
func GetDuration(cmd *cobra.Command, flag string) time.Duration {
	r, err := cmd.Flags().GetDuration(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Configure the log level from the verbose flag.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// Inputs common to every command which operates on a mapped dataflow graph.
type inputs struct {
	graph  *dfg.Graph
	config *array.Config
	table  *vf.Table
	// Modes recorded in the configuration file (if any)
	modes vf.Assignment
	// Configuration as originally written, or as generated by automatic
	// placement.
	raw []byte
}

// Read the dataflow graph, its mapping and the characterisation table as
// specified on the command line.  The mapping is read from the given file or,
// if none is given, the graph is placed automatically.
func readInputs(cmd *cobra.Command, args []string) *inputs {
	var (
		in  inputs
		err error
	)
	//
	in.graph = readGraph(cmd)
	in.table = readTable(cmd)
	//
	if len(args) > 0 {
		in.raw = readFile(args[0])
		in.config, in.modes, err = array.Read(in.raw, in.graph)
	} else if in.config, err = array.AutoMap(in.graph, GetUint(cmd, "width")); err == nil {
		in.raw, err = in.config.MarshalJSON()
	}
	//
	exitOnError(err)
	//
	return &in
}

// Read the dataflow graph, either from a file or from the built-in library.
func readGraph(cmd *cobra.Command) *dfg.Graph {
	var (
		filename = GetString(cmd, "dfg")
		toy      = GetString(cmd, "toy")
		g        *dfg.Graph
		err      error
	)
	//
	switch {
	case filename != "" && toy != "":
		err = fmt.Errorf("cannot use both --dfg and --toy")
	case filename != "":
		g, err = dfg.ReadJSON(readFile(filename))
	case toy != "":
		g, err = dfg.Toy(toy)
	default:
		err = fmt.Errorf("no dataflow graph given (use --dfg or --toy)")
	}
	//
	exitOnError(err)
	//
	return g
}

// Read the characterisation table from a file, or use the default.
func readTable(cmd *cobra.Command) *vf.Table {
	var filename = GetString(cmd, "table")
	//
	if filename == "" {
		return vf.Default()
	}
	//
	table, err := vf.LoadTable(readFile(filename))
	exitOnError(err)
	//
	return table
}

func readFile(filename string) []byte {
	bytes, err := os.ReadFile(filename)
	exitOnError(err)
	//
	return bytes
}

// Simulation options as configured on the command line.
func simOptions(cmd *cobra.Command) sim.Options {
	var opts = sim.DefaultOptions()
	//
	opts.QueueDepth = GetUint(cmd, "queue-depth")
	opts.EagerFork = GetFlag(cmd, "eager-fork")
	//
	if n := GetUint(cmd, "iterations"); n > 0 {
		opts = opts.Iterations(n)
	}
	//
	return opts
}

// Power model options as configured on the command line.
func powerOptions(cmd *cobra.Command) power.Options {
	var opts = power.DefaultOptions()
	//
	opts.ClockRatio = GetFloat(cmd, "clock-ratio")
	//
	return opts
}

// Search options as configured on the command line.
func searchOptions(cmd *cobra.Command) search.Options {
	var (
		opts        = search.DefaultOptions()
		target, err = search.ParseTarget(GetString(cmd, "target"))
	)
	//
	exitOnError(err)
	//
	opts.Sim = simOptions(cmd)
	opts.Power = powerOptions(cmd)
	opts.Target = target
	opts.Timeout = GetDuration(cmd, "timeout")
	//
	if GetUint(cmd, "iterations") == 0 {
		// Compare every candidate over the same number of iterations
		opts.Sim.Window = opts.Sim.MaxIterations
	}
	//
	if n := GetUint(cmd, "concurrency"); n > 0 {
		opts.Concurrency = n
	}
	//
	return opts
}

// Register the flags shared by the search commands.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "energy", "optimisation target (performance or energy)")
	cmd.Flags().Uint("concurrency", 0, "number of candidates evaluated at once (0 for one per cpu)")
	cmd.Flags().Duration("timeout", 10*time.Second, "time budget for evaluating a single candidate")
}

// Write output to a file, or to stdout if no file is given.
func writeOutput(filename string, bytes []byte) {
	if filename == "" {
		fmt.Println(string(bytes))
		return
	}
	//
	exitOnError(os.WriteFile(filename, bytes, 0644))
}

// Print a table, with colour only when writing to a terminal.
func printTable(table *termio.TablePrinter) {
	table.AnsiEscapes(termio.IsTerminal(os.Stdout))
	exitOnError(table.Write(os.Stdout))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}
