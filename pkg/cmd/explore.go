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
	"encoding/json"
	"fmt"
	"os"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/search"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/spf13/cobra"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [flags] [config_file]",
	Short: "exhaustively search vf modes for the critical pes.",
	Long: `Evaluate every assignment of vf modes to the pes on the critical
	recurrence (or critical path) of a mapped dataflow graph, with all other
	pes held at nominal.  Results are printed as a table, or written as JSON
	with performance and energy efficiency normalised to all-nominal.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var (
			in       = readInputs(cmd, args)
			opts     = searchOptions(cmd)
			problem  = search.NewProblem(in.graph, in.config, in.table)
			output   = GetString(cmd, "output")
			modes, e = vf.ParseModes(GetStringArray(cmd, "modes"))
		)
		//
		exitOnError(e)
		//
		opts.Budget = uint64(GetUint(cmd, "budget"))
		//
		exploration, err := search.Explore(context.Background(), problem, modes, opts)
		exitOnError(err)
		//
		if GetFlag(cmd, "json") || output != "" {
			bytes, err := json.MarshalIndent(exploration, "", "    ")
			exitOnError(err)
			writeOutput(output, bytes)
		} else {
			printTable(exploration.Table())
		}
		//
		if len(exploration.Failed) > 0 {
			fmt.Printf("%d assignments timed out\n", len(exploration.Failed))
		}
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	addSearchFlags(exploreCmd)
	exploreCmd.Flags().StringSlice("modes", []string{"rest", "nominal", "sprint"}, "vf modes to enumerate")
	exploreCmd.Flags().Uint("budget", 1<<16, "largest number of assignments to enumerate")
	exploreCmd.Flags().Bool("json", false, "print results as JSON")
	exploreCmd.Flags().StringP("output", "o", "", "write JSON results to a file")
}
