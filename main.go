/*
 * DPS8 - Main program
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/DPS8/command/reader"
	config "github.com/rcornwell/DPS8/config/configparser"
	"github.com/rcornwell/DPS8/config/cpuconfig"
	"github.com/rcornwell/DPS8/config/debugconfig"
	"github.com/rcornwell/DPS8/emu/cpu"
	core "github.com/rcornwell/DPS8/emu/core"
	master "github.com/rcornwell/DPS8/emu/master"
	"github.com/rcornwell/DPS8/emu/timer"
	telnet "github.com/rcornwell/DPS8/telnet"
	logger "github.com/rcornwell/DPS8/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "DPS8.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optTrace := getopt.ListLong("trace", 't', "Debug options, module:option")
	optCPUs := getopt.IntLong("cpus", 'n', 0, "Number of processors")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Can't create log file: "+err.Error())
			os.Exit(1)
		}
		defer file.Close()
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	var out io.Writer
	if file != nil {
		out = file
	}
	Logger = slog.New(logger.NewHandler(out, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("DPS8 Started")

	_, err := os.Stat(*optConfig)
	switch {
	case err == nil:
		err = config.LoadConfigFile(*optConfig)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	case os.IsNotExist(err) && getopt.IsSet("config"):
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	default:
		Logger.Info("No configuration file, using defaults")
	}

	for _, opt := range *optTrace {
		if err := debugconfig.Enable(opt); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if *optCPUs != 0 {
		if err := cpuconfig.AddCPUs(*optCPUs); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	masterChannel := make(chan master.Packet)

	// Create processors, each runs the address tracer.
	sim := core.New(cpuconfig.Current(), masterChannel, func() cpu.Executor {
		return core.NewTracer()
	})
	Logger.Info(fmt.Sprintf("%d processors, %dK words of memory", sim.NumCPUs(), sim.Memory().GetSize()/1024))

	clock := timer.NewTimer(masterChannel)

	// Start main emulator.
	go sim.Start()
	clock.Start()

	// Remote monitor ports from MONITOR lines.
	if err := telnet.Start(sim); err != nil {
		Logger.Error("Unable to start monitor server: " + err.Error())
	}

	msg := make(chan string, 1)
	go func() {
		reader.ConsoleReader(sim)
		msg <- ""
	}()

	// Wait on shutdown option
	<-msg

	telnet.Stop()
	clock.Shutdown()
	sim.Stop()
	Logger.Info("Simulator stopped.")
}
