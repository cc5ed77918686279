package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"tmcstep/core"
	"tmcstep/host/bench"
	"tmcstep/host/config"
	"tmcstep/host/logger"
	"tmcstep/host/serial"
	"tmcstep/host/spidev"
)

var (
	configPath = flag.String("config", "tmc-bench.yaml", "Bench configuration file")
	device     = flag.String("device", "", "Serial device for UART drivers (overrides the config)")
	verbose    = flag.Bool("verbose", false, "Log register traffic")
	logFile    = flag.String("log", "", "Also log to this file (rotated)")
	execCmds   = flag.String("exec", "", "Run ';'-separated commands and exit")
	tick       = flag.Duration("tick", 10*time.Millisecond, "Timer scheduler tick")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if *verbose {
		level = logger.DebugLevel
	}
	logger.InitLogger(logger.Options{
		Level:      level,
		File:       cfg.Log.File,
		Color:      cfg.Log.Color,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	core.SetDebugWriter(logger.DebugSink)
	core.SetDebugEnabled(*verbose)

	var spiUsed, uartUsed bool
	for _, d := range cfg.Drivers {
		spiUsed = spiUsed || d.Transport == config.TransportSPI
		uartUsed = uartUsed || d.Transport == config.TransportUART
	}

	if spiUsed {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("periph host init: %w", err)
		}
		spi := spidev.NewSPI()
		defer spi.Close()
		core.SetSPIDriver(spi)
		core.SetGPIODriver(spidev.NewGPIO())
	}

	var uart io.ReadWriter
	if uartUsed {
		sc := serial.DefaultConfig(cfg.Serial.Device)
		sc.Baud = cfg.Serial.Baud
		sc.ReadTimeout = cfg.Serial.ReadTimeoutMs
		sc.Echo = cfg.Serial.Echo
		port, err := serial.Open(sc)
		if err != nil {
			return err
		}
		defer port.Close()
		port.Flush()
		uart = port
	}

	b, err := bench.New(cfg, uart, os.Stdout)
	if err != nil {
		return err
	}

	if *execCmds != "" {
		for _, line := range strings.Split(*execCmds, ";") {
			if err := b.Exec(line); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go b.Run(ctx, *tick)

	fmt.Println("TMC bench: type 'help' for commands, 'quit' to exit")
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "quit" || line == "exit" {
				return nil
			}
			if err := b.Exec(line); err != nil {
				fmt.Println(err)
			}
		}
	}
}
