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
	"context"
	"fmt"
	"os"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/termio"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [flags] [config_file]",
	Short: "simulate a dataflow graph mapped onto an array.",
	Long: `Simulate a dataflow graph mapped onto an array, reporting its
	throughput, latency, power and energy.  The vf mode of each pe is taken
	from the configuration (if recorded there) unless overridden.  Without a
	configuration file, each node is placed on its own pe.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var (
			in    = readInputs(cmd, args)
			modes = simulationModes(cmd, in)
			stats = util.NewPerfStats()
		)
		//
		r, err := sim.Run(context.Background(), in.graph, in.config, in.table, modes, simOptions(cmd))
		exitOnError(err)
		//
		stats.Log("Simulation")
		//
		m, err := power.Evaluate(in.config, in.table, modes, r, in.graph.Len(), powerOptions(cmd))
		exitOnError(err)
		//
		if GetFlag(cmd, "pes") {
			printPEs(in, r, m)
		}
		//
		fmt.Printf("iterations: %d (steady: %t)\n", r.Iterations, r.Steady)
		fmt.Printf("throughput: %.4f iterations/ns (%.3f GOPS)\n", m.Throughput, m.GOPS)
		fmt.Printf("latency:    %.2f ns (first iteration %.2f ns)\n", m.Latency, r.IterationLatency)
		fmt.Printf("power:      %.2f mW (pe %.2f, clock %.2f, sram %.2f)\n", m.Power, m.TilePower, m.ClockPower,
			m.SRAMPower)
		fmt.Printf("energy:     %.1f pJ (edp %.1f pJ.ns)\n", m.Energy, m.EDP)
	},
}

// Determine the modes to simulate with.  An explicit mode applies to every pe,
// otherwise any modes recorded in the configuration are used, with nominal
// for the rest.
func simulationModes(cmd *cobra.Command, in *inputs) vf.Assignment {
	var (
		name  = GetString(cmd, "mode")
		modes = vf.Uniform(in.config.Ids(), vf.Nominal)
	)
	//
	if name != "" {
		mode, err := vf.ParseMode(name)
		exitOnError(err)
		//
		return vf.Uniform(in.config.Ids(), mode)
	}
	//
	for _, pe := range in.modes.PEs() {
		mode, _ := in.modes.Mode(pe)
		modes = modes.With(pe, mode)
	}
	//
	return modes
}

// Print a breakdown of activity and power for each pe.
func printPEs(in *inputs, r *sim.Result, m power.Metrics) {
	var table = termio.NewTablePrinter(8, uint(len(m.PEs))+1)
	//
	table.SetRow(0, "pe", "op", "mode", "ops", "stall (ns)", "static (mW)", "dynamic (mW)", "sram (mW)")
	table.SetRowEscape(0, termio.BoldAnsiEscape())
	//
	for i, p := range m.PEs {
		var (
			pe, _ = in.config.PE(p.PE)
			op    = "route"
		)
		//
		if !pe.Routing {
			op = pe.Op.String()
		}
		//
		table.SetRow(uint(i+1), fmt.Sprintf("%d", p.PE), op, p.Mode.String(), fmt.Sprintf("%d", r.Ops[p.PE]),
			fmt.Sprintf("%.2f", r.Stalls[p.PE]), fmt.Sprintf("%.3f", p.Static), fmt.Sprintf("%.3f", p.Dynamic),
			fmt.Sprintf("%.3f", p.SRAM))
		//
		if p.Mode == vf.Sprint {
			table.SetEscape(2, uint(i+1), termio.NewAnsiEscape().FgColour(termio.TERM_RED))
		} else if p.Mode == vf.Rest {
			table.SetEscape(2, uint(i+1), termio.NewAnsiEscape().FgColour(termio.TERM_BLUE))
		}
	}
	//
	printTable(table)
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("mode", "", "run every pe in the given vf mode (rest, nominal or sprint)")
	simulateCmd.Flags().Bool("pes", false, "print a breakdown for each pe")
}
