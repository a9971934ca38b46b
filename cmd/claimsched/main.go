// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// claimsched is a thin polling client: it wakes up on a cron schedule,
// asks the pool node whether the reward claim gate is open and triggers a
// claim when it is. It holds no state of its own, so running several
// instances is safe; a second trigger in the same interval is a no-op.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/robfig/cron/v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/openstake/stakepool/client"
	"github.com/openstake/stakepool/log"
	"github.com/openstake/stakepool/stakepool"
)

var (
	urlFlag = cli.StringFlag{
		Name:  "url",
		Value: "http://localhost:8669",
		Usage: "URL of the pool node API",
	}
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "pool admin address to claim on behalf of",
	}
	scheduleFlag = cli.StringFlag{
		Name:  "schedule",
		Value: "*/5 * * * *",
		Usage: "cron schedule for claim polling",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "claimsched"
	app.Usage = "Reward claim scheduler for the staking pool"
	app.Copyright = "2025 The OpenStake developers"
	app.Flags = []cli.Flag{
		urlFlag,
		callerFlag,
		scheduleFlag,
		verbosityFlag,
	}
	app.Action = run
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name))))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)))

	caller, err := stakepool.ParseAddress(ctx.String(callerFlag.Name))
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}
	schedule, err := cron.ParseStandard(ctx.String(scheduleFlag.Name))
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	c := client.New(ctx.String(urlFlag.Name))
	logger := log.WithContext("pkg", "claimsched")

	exitCtx, cancel := signalContext()
	defer cancel()

	logger.Info("claim scheduler started",
		"url", ctx.String(urlFlag.Name),
		"caller", caller,
		"schedule", ctx.String(scheduleFlag.Name),
	)

	for {
		next := schedule.Next(time.Now())
		select {
		case <-exitCtx.Done():
			logger.Info("exited")
			return nil
		case <-time.After(time.Until(next)):
		}

		claimable, err := c.Claimable()
		if err != nil {
			logger.Warn("claimable poll failed", "err", err)
			continue
		}
		if !claimable {
			logger.Debug("claim gate closed")
			continue
		}

		claimed, err := c.ClaimRewards(*caller)
		if err != nil {
			logger.Warn("claim failed", "err", err)
			continue
		}
		logger.Info("claim triggered", "claimed", claimed)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
