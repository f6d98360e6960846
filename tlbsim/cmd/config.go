package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that provide defaults for command-line flags.
const (
	envRecord       = "TLBSIM_RECORD"
	envTrace        = "TLBSIM_TRACE"
	envMonitorPort  = "TLBSIM_MONITOR_PORT"
	envLogLevel     = "TLBSIM_LOG_LEVEL"
	envCheckFastMap = "TLBSIM_CHECK_FASTMAP"
)

type config struct {
	Record       string
	Trace        string
	Monitor      bool
	MonitorPort  int
	LogLevel     string
	CheckFastMap bool
}

// loadConfig reads the TLBSIM_* variables after loading envFile into the
// environment. Variables already set in the environment win over the file.
// A missing envFile is not an error.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	c := config{
		Record:   os.Getenv(envRecord),
		Trace:    os.Getenv(envTrace),
		LogLevel: "info",
	}

	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv(envMonitorPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", envMonitorPort, err)
		}

		c.Monitor = true
		c.MonitorPort = port
	}

	if v := os.Getenv(envCheckFastMap); v != "" {
		check, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", envCheckFastMap, err)
		}

		c.CheckFastMap = check
	}

	return c, nil
}
