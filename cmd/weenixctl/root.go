package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"klog"
	"stats"
)

var (
	verbose     bool
	metricsBind string
)

var rootCmd = &cobra.Command{
	Use:   "weenixctl",
	Short: "Drive the simulated Weenix kernel: inspect process state and run demo scenarios",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose || viper.GetBool("verbose") {
			klog.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level kernel logging")
	rootCmd.PersistentFlags().StringVar(&metricsBind, "metrics", "", "address to serve Prometheus /metrics on, e.g. :9090 (unset disables it)")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("weenixctl")
	viper.AutomaticEnv()

	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(demoCmd)
}

// maybeServeMetrics starts the /metrics HTTP server in the background if
// --metrics was given, mirroring the prometheus client_golang pattern
// used throughout the retrieval pack's daemons (Talismancer-gvisor-ligolo).
func maybeServeMetrics() {
	if metricsBind == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", stats.Handler())
	go func() {
		if err := http.ListenAndServe(metricsBind, mux); err != nil {
			fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}()
}
