package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/tomz197/voidminer/internal/audio"
	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/loop/client"
	"github.com/tomz197/voidminer/internal/loop/engine"
	"github.com/tomz197/voidminer/internal/store"
	"github.com/tomz197/voidminer/internal/telemetry"
)

func main() {
	var (
		tuningPath = flag.String("tuning", config.GetEnv("GAME_TUNING", ""), "YAML tuning overrides")
		dumpPath   = flag.String("dump-tuning", "", "write the effective tuning to this file and exit")
		ledgerPath = flag.String("stats", config.GetEnv("GAME_LEDGER", ""), "append sector results to this CSV file")
		dbPath     = flag.String("db", config.GetEnv("GAME_DB", ""), "SQLite pilot records")
		logPath    = flag.String("log", config.GetEnv("GAME_LOG", ""), "log file (the terminal is busy drawing)")
		pilot      = flag.String("pilot", config.GetEnv("USER", ""), "pilot name")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		mute       = flag.Bool("mute", false, "disable audio")
		volume     = flag.Float64("volume", 0.6, "master volume, 0-1")
		mouse      = flag.Bool("mouse", true, "aim with the mouse")
	)
	flag.Parse()

	logOut := io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(logOut, "voidminer")

	tun, err := config.Load(*tuningPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *dumpPath != "" {
		if err := tun.WriteYAML(*dumpPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	var records *store.Store
	if *dbPath != "" {
		records, err = store.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer records.Close()
	}

	ledger, err := telemetry.Open(*ledgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	var sink engine.AudioSink
	if !*mute {
		player := audio.NewPlayer(*volume)
		if err := audio.Start(player, logger); err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer audio.Stop()
			sink = player
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	c := client.New(bufio.NewReader(os.Stdin), os.Stdout, client.Options{
		Engine: engine.Options{
			Tuning: tun,
			Seed:   *seed,
			Audio:  sink,
			Logger: logger,
		},
		Store:  records,
		Ledger: ledger,
		Pilot:  *pilot,
		Mouse:  *mouse,
		Logger: logger,
	})
	logger.Info("starting", "pilot", *pilot, "seed", *seed)
	if err := c.Run(ctx); err != nil {
		logger.Error("game error", "err", err)
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
