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
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "uecgra",
	Short: "A performance and energy model for ultra-elastic CGRAs.",
	Long: `A performance and energy model for ultra-elastic CGRAs, where each
	processing element runs in its own voltage and frequency mode.  Dataflow
	graphs mapped onto an array can be simulated, and the modes of each
	processing element chosen either exhaustively or heuristically.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("uecgra ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		} else {
			fmt.Println(cmd.UsageString())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	// Inputs
	rootCmd.PersistentFlags().String("dfg", "", "read the dataflow graph from a JSON file")
	rootCmd.PersistentFlags().String("toy", "", "use one of the built-in dataflow graphs (toy1, toy2, toy3, toy4)")
	rootCmd.PersistentFlags().String("table", "", "read the vf characterisation table from a JSON file")
	rootCmd.PersistentFlags().Uint("width", 4, "grid width used when no configuration is given")
	// Simulation
	rootCmd.PersistentFlags().Uint("iterations", 0, "simulate exactly this many iterations (0 to stop at steady state)")
	rootCmd.PersistentFlags().Uint("queue-depth", 2, "capacity of each pe input queue")
	rootCmd.PersistentFlags().Bool("eager-fork", true, "forward to each destination as soon as it has space")
	// Power model
	rootCmd.PersistentFlags().Float64("clock-ratio", 0.1, "clock network power as a fraction of pe power")
}
