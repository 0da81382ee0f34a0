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
	"errors"
	"fmt"
	"os"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/search"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] [config_file]",
	Short: "choose vf modes for every pe heuristically.",
	Long: `Choose the vf mode of every pe in a mapped dataflow graph.  Starting
	from all nominal, pes on the critical recurrence are promoted to sprint
	whilst this improves the target, then pes with slack are demoted to rest
	whenever this saves energy without affecting throughput.  The configuration
	is written back with a "dvfs" field recording the mode of each pe.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var (
			in         = readInputs(cmd, args)
			opts       = searchOptions(cmd)
			problem    = search.NewProblem(in.graph, in.config, in.table)
			divergence *search.DivergenceError
		)
		//
		opts.MaxSteps = GetUint(cmd, "max-steps")
		opts.Tolerance = GetFloat(cmd, "tolerance")
		//
		if GetFlag(cmd, "energy") {
			opts.Target = search.Energy
		}
		//
		result, err := search.Optimize(context.Background(), problem, opts)
		if errors.As(err, &divergence) {
			log.Warn(divergence.Error())
		} else {
			exitOnError(err)
		}
		//
		augmented, err := array.WriteAugmented(in.raw, result.Best.Modes)
		exitOnError(err)
		writeOutput(GetString(cmd, "output"), augmented)
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	addSearchFlags(optimizeCmd)
	optimizeCmd.Flags().Bool("energy", false, "optimise energy-delay product (same as --target=energy)")
	optimizeCmd.Flags().Uint("max-steps", 1000, "largest number of candidates evaluated when promoting pes")
	optimizeCmd.Flags().Float64("tolerance", 1e-9, "relative change in throughput considered insignificant")
	optimizeCmd.Flags().StringP("output", "o", "", "write the augmented configuration to a file")
}
