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
	"encoding/json"
	"fmt"
	"os"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/termio"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/spf13/cobra"
)

var characterizeCmd = &cobra.Command{
	Use:   "characterize [flags]",
	Short: "print the vf characterisation table.",
	Long: `Print the timing and power of each class of hardware block in each
	vf mode.  The table is either read from a file (--table), or derived from a
	first-order model whose parameters can be adjusted.  Writing the table as
	JSON gives a starting point for a custom characterisation.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var table *vf.Table
		//
		if GetString(cmd, "table") != "" {
			table = readTable(cmd)
		} else {
			var (
				params = vf.DefaultParameters()
				err    error
			)
			//
			params.MulEnergy = GetFloat(cmd, "mul-energy")
			params.Gamma = GetFloat(cmd, "gamma")
			params.Beta = GetFloat(cmd, "beta")
			table, err = vf.Characterize(params)
			exitOnError(err)
		}
		//
		if GetFlag(cmd, "json") {
			bytes, err := json.MarshalIndent(table, "", "    ")
			exitOnError(err)
			writeOutput("", bytes)
		} else {
			printCharacterisation(table)
		}
	},
}

func printCharacterisation(table *vf.Table) {
	var (
		height = uint(len(vf.Classes)*len(vf.Modes)) + 1
		tp     = termio.NewTablePrinter(6, height)
		row    = uint(1)
	)
	//
	tp.SetRow(0, "class", "mode", "period (ns)", "voltage (V)", "static (mW)", "dynamic (pJ/op)")
	tp.SetRowEscape(0, termio.BoldAnsiEscape())
	//
	for _, class := range vf.Classes {
		for _, mode := range vf.Modes {
			if entry, err := table.Lookup(class, mode); err == nil {
				tp.SetRow(row, class.String(), mode.String(), fmt.Sprintf("%.3f", entry.Period),
					fmt.Sprintf("%.2f", entry.Voltage), fmt.Sprintf("%.3f", entry.StaticPower),
					fmt.Sprintf("%.3f", entry.DynamicPowerPerOp))
			} else {
				tp.SetRow(row, class.String(), mode.String(), "-", "-", "-", "-")
			}
			//
			row++
		}
	}
	//
	printTable(tp)
}

func init() {
	rootCmd.AddCommand(characterizeCmd)
	characterizeCmd.Flags().Float64("mul-energy", vf.DefaultParameters().MulEnergy,
		"dynamic energy (pJ) of a multiply at nominal voltage")
	characterizeCmd.Flags().Float64("gamma", vf.DefaultParameters().Gamma,
		"fraction of tile power which is static leakage at nominal voltage")
	characterizeCmd.Flags().Float64("beta", vf.DefaultParameters().Beta, "ratio of sram leakage to tile leakage")
	characterizeCmd.Flags().Bool("json", false, "print the table as JSON")
}
