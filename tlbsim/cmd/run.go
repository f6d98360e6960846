package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/disi33/mupen64plus-core/datarecording"
	"github.com/disi33/mupen64plus-core/mem/vm"
	"github.com/disi33/mupen64plus-core/monitoring"
	"github.com/disi33/mupen64plus-core/sim/hooking"
)

type runOptions struct {
	record       string
	trace        string
	checkFastMap bool
	monitor      bool
	monitorPort  int
	open         bool
}

var runCmd = &cobra.Command{
	Use:   "run SCENARIO",
	Short: "Replay a scenario file.",
	Long: "Replay the steps of a TOML scenario on a freshly reset CP0 and " +
		"TLB, printing the outcome of every step. The command fails on the " +
		"first step that does not meet its expectation.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenario(cmd, args[0], resolveRunOptions(cmd, cfg))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("record", "",
		"Record TLB events into the given SQLite file (without extension). "+
			"Defaults to "+envRecord+".")
	runCmd.Flags().String("trace", "",
		"Write a CSV trace of TLB events to the given file. "+
			"Defaults to "+envTrace+".")
	runCmd.Flags().Bool("check-fastmap", false,
		"Cross-check every translation against a shadow fast map. "+
			"Defaults to "+envCheckFastMap+".")
	runCmd.Flags().Bool("monitor", false,
		"Serve the final TLB state over HTTP until interrupted. "+
			"Setting "+envMonitorPort+" also enables it.")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitor; 0 picks a free one.")
	runCmd.Flags().Bool("open", false,
		"Open the monitor in a browser.")
}

// resolveRunOptions applies the flags the user set over the configured
// defaults.
func resolveRunOptions(cmd *cobra.Command, c config) runOptions {
	o := runOptions{
		record:       c.Record,
		trace:        c.Trace,
		checkFastMap: c.CheckFastMap,
		monitor:      c.Monitor,
		monitorPort:  c.MonitorPort,
	}

	flags := cmd.Flags()

	if flags.Changed("record") {
		o.record, _ = flags.GetString("record")
	}

	if flags.Changed("trace") {
		o.trace, _ = flags.GetString("trace")
	}

	if flags.Changed("check-fastmap") {
		o.checkFastMap, _ = flags.GetBool("check-fastmap")
	}

	if flags.Changed("monitor") {
		o.monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("monitor-port") {
		o.monitorPort, _ = flags.GetInt("monitor-port")
		o.monitor = true
	}

	o.open, _ = flags.GetBool("open")

	return o
}

func runScenario(cmd *cobra.Command, path string, o runOptions) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}

	hooks, closeHooks, err := makeHooks(o)
	if err != nil {
		return err
	}
	defer closeHooks()

	r := newReplayer(cmd.OutOrStdout(), o.checkFastMap, hooks)

	var monitor *monitoring.Monitor
	if o.monitor {
		monitor = monitoring.NewMonitor().WithPortNumber(o.monitorPort)
		monitor.RegisterTLB(r.cp0.TLB())
		r.bar = monitor.CreateProgressBar(scenario.Name,
			uint64(len(scenario.Steps)))
	}

	logrus.WithFields(logrus.Fields{
		"scenario": scenario.Name,
		"steps":    len(scenario.Steps),
	}).Info("replaying")

	replayErr := r.run(scenario)
	if replayErr != nil {
		logrus.WithError(replayErr).Error("scenario failed")
	} else {
		logrus.Info("scenario passed")
	}

	if monitor != nil {
		serveUntilInterrupted(monitor, o.open)
	}

	return replayErr
}

// makeHooks prepares the recording and tracing hooks asked for by o. The
// returned function flushes and closes what they write to.
func makeHooks(
	o runOptions,
) (func(hooking.TimeTeller) []hooking.Hook, func(), error) {
	var traceFile *os.File

	if o.trace != "" {
		f, err := os.Create(o.trace)
		if err != nil {
			return nil, nil, fmt.Errorf("creating trace file: %w", err)
		}

		traceFile = f
	}

	var recorder datarecording.DataRecorder
	if o.record != "" {
		recorder = datarecording.New(o.record)
	}

	buildHooks := func(timeTeller hooking.TimeTeller) []hooking.Hook {
		var hooks []hooking.Hook

		if traceFile != nil {
			hooks = append(hooks, vm.NewTLBTracer(traceFile, timeTeller))
		}

		if recorder != nil {
			hooks = append(hooks, vm.NewTLBRecorder(recorder, timeTeller))
		}

		return hooks
	}

	closeHooks := func() {
		if recorder != nil {
			recorder.Flush()
		}

		if traceFile != nil {
			if err := traceFile.Close(); err != nil {
				logrus.WithError(err).Warn("closing trace file")
			}
		}
	}

	return buildHooks, closeHooks, nil
}

func serveUntilInterrupted(monitor *monitoring.Monitor, open bool) {
	url := monitor.StartServer()
	logrus.Infof("Monitoring TLB state with %s", url)

	if open {
		if err := browser.OpenURL(url); err != nil {
			logrus.WithError(err).Warn("failed to open browser")
		}
	}

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	<-interrupted
}
