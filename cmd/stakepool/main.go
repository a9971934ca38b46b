// Copyright (c) 2025 The OpenStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/openstake/stakepool/api"
	"github.com/openstake/stakepool/log"
	"github.com/openstake/stakepool/metrics"
	"github.com/openstake/stakepool/pool"
	"github.com/openstake/stakepool/slot"
	"github.com/openstake/stakepool/stakepool"
	"github.com/openstake/stakepool/state"
	"github.com/openstake/stakepool/token"
	"github.com/openstake/stakepool/validator"
)

var (
	version   = "1.0"
	gitCommit string
	release   = "dev"
)

// well-known accounts of the solo instance
var (
	poolAccount   = stakepool.BytesToAddress([]byte("pool-account"))
	tokenRegistry = stakepool.BytesToAddress([]byte("token-registry"))
)

func fullVersion() string {
	return fmt.Sprintf("%s-%s-commit%s", release, version, gitCommit)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "stakepool"
	app.Usage = "Liquid staking pool node"
	app.Copyright = "2025 The OpenStake developers"
	app.Flags = []cli.Flag{
		configFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		enableAPILogsFlag,
		enableMetricsFlag,
		pprofFlag,
		verbosityFlag,
		jsonLogsFlag,
		compoundRewardsFlag,
	}
	app.Action = soloAction
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	st := state.New()
	issuer, err := token.Initialize(slot.NewContext(tokenRegistry, st))
	if err != nil {
		return err
	}

	p := pool.New(
		poolAccount,
		st,
		issuer,
		validator.NewSolo(),
		pool.SystemClock(),
		nil,
		pool.Options{
			CompoundRewards:     ctx.Bool(compoundRewardsFlag.Name),
			RewardClaimInterval: cfg.RewardClaimInterval,
			UnstakingPeriod:     cfg.UnstakingPeriod,
		},
	)

	if err := fundAccounts(issuer, cfg); err != nil {
		return err
	}

	admin, err := cfg.adminAddress()
	if err != nil {
		return err
	}
	val, err := cfg.validatorAddress()
	if err != nil {
		return err
	}
	if err := p.Initialize(*admin, *val, []byte(cfg.Operator)); err != nil {
		return err
	}

	apiHandler := api.New(p, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	srv, apiURL, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}

	log.Info("pool is up",
		"version", fullVersion(),
		"api", apiURL,
		"admin", admin,
		"validator", val,
	)

	exitCtx := handleExitSignal()

	var goes errgroup.Group
	goes.Go(func() error {
		<-exitCtx.Done()
		log.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return goes.Wait()
}

func fundAccounts(issuer *token.Issuer, cfg *Config) error {
	mintCap := issuer.Capabilities(token.Base).Mint
	for _, account := range cfg.Accounts {
		addr, balance, err := account.parse()
		if err != nil {
			return err
		}
		if balance.Sign() == 0 {
			continue
		}
		asset, err := issuer.Mint(mintCap, balance)
		if err != nil {
			return err
		}
		if err := issuer.Deposit(*addr, asset); err != nil {
			return err
		}
		log.Info("account funded", "address", addr, "balance", balance)
	}
	return nil
}
