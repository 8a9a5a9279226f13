// Command weenixctl boots the simulated kernel (package kernel) and
// drives it from the outside: inspecting process state (ps) and running
// the end-to-end scenarios spec.md §8 describes (demo). Grounded on
// GoogleCloudPlatform-gcsfuse's cmd/root.go for the cobra+pflag+viper
// wiring shape (SPEC_FULL.md's component table names that file
// explicitly as this command's model).
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
