package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/spool"
)

// ///////////////////////////////////////////////
// PID Management
// ///////////////////////////////////////////////

// pidToken returns a random 16-character hex token that proves ownership of
// the PID file, so [removePID] only deletes a file this process wrote.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID opens the PID file, locks it and writes "PID:TOKEN". The handle
// must stay open while watching to keep the lock; pass it to [removePID].
func writePID(dp DataPaths, token string) (*os.File, error) {
	f, err := os.OpenFile(dp.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	fail := func(err error) (*os.File, error) {
		_ = unlockFile(f)
		f.Close()
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		return fail(fmt.Errorf("truncate PID file: %w", err))
	}
	if _, err := f.WriteString(fmt.Sprintf("%d:%s", os.Getpid(), token)); err != nil {
		return fail(fmt.Errorf("write PID file: %w", err))
	}
	return f, nil
}

// removePID unlocks and closes f, then deletes the PID file if it still
// holds token.
func removePID(dp DataPaths, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(dp.PID())
	if err != nil {
		return
	}
	if _, tok, ok := strings.Cut(string(data), ":"); ok && tok == token {
		os.Remove(dp.PID())
	}
}

// checkStalePID reports whether another watch process holds the PID file
// lock, and its pid when readable. A PID file nobody holds is stale and is
// removed.
func checkStalePID(dp DataPaths) (alive bool, pid int) {
	f, err := os.OpenFile(dp.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(dp.PID())
		f.Close()
		head, _, _ := strings.Cut(string(data), ":")
		if p, convErr := strconv.Atoi(head); convErr == nil {
			return true, p
		}
		return true, 0
	}

	_ = unlockFile(f)
	f.Close()
	os.Remove(dp.PID())
	return false, 0
}

// ///////////////////////////////////////////////
// watch
// ///////////////////////////////////////////////

// cmdWatch renders job files until SIGINT or SIGTERM. Only one watch process
// may run per data directory.
func cmdWatch(e *env, args []string) error {
	set := flag.NewFlagSet("watch", flag.ContinueOnError)
	set.SetOutput(e.stderr)
	once := set.Bool("once", false, "Process pending jobs and exit")
	if err := set.Parse(args); err != nil {
		return err
	}

	if alive, pid := checkStalePID(e.paths); alive {
		return fmt.Errorf("already running (pid %d)", pid)
	}
	token := pidToken()
	pidFile, err := writePID(e.paths, token)
	if err != nil {
		return err
	}
	defer removePID(e.paths, token, pidFile)

	r, _, err := e.renderer()
	if err != nil {
		return err
	}
	jobsDir := e.paths.Resolve(e.cfg.Watch.JobsDir)
	outDir := e.paths.Resolve(e.cfg.Watch.OutDir)
	proc := spool.NewProcessor(r, jobsDir, outDir, e.cfg.MatchesJob, e.log)
	if err := proc.Prepare(); err != nil {
		return err
	}

	if *once {
		done, failed, err := proc.Drain()
		fmt.Fprintf(e.stdout, "%d done, %d failed\n", done, failed)
		return err
	}

	interval := time.Duration(e.cfg.Watch.PollIntervalSeconds) * time.Second
	watcher, err := spool.NewWatcher(jobsDir, e.cfg.MatchesJob, interval, e.log)
	if err != nil {
		return err
	}
	defer watcher.Close()
	if watcher.Polling() {
		e.log.Info("using polling mode for the jobs directory", "interval", interval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	e.log.Info("watching for jobs", "version", resolveVersion(), "jobs_dir", jobsDir, "out_dir", outDir)
	err = proc.Run(ctx, watcher.Events())
	if errors.Is(err, context.Canceled) {
		e.log.Info("received shutdown signal")
		return nil
	}
	return err
}
