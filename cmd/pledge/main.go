// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pledge/admin"
	"github.com/vechain/pledge/api"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/logdb"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/metrics"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/runtime"
	"github.com/vechain/pledge/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Pledge",
		Usage:     "Commitment vault node",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "keygen",
				Usage:  "generate a new signing key",
				Flags:  []cli.Flag{keyFileFlag},
				Action: keygenAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir = "Memory"
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene.ID()); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = openLogDB(instanceDir); err != nil {
				mainDB.Close()
				return err
			}
		}
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = logdb.NewMem(); err != nil {
				mainDB.Close()
				return err
			}
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	if logDB != nil {
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	st := state.New(mainDB)
	if err := applyGenesis(gene, st, logDB); err != nil {
		return err
	}

	rt := runtime.New(st, logDB)
	defer func() { logger.Info("closing runtime..."); rt.Close() }()

	reqLogger := &atomic.Bool{}
	reqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, closeAPI := api.New(rt, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      reqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		GenesisID:            gene.ID(),
	})
	defer closeAPI()

	servers := []*server{{name: "API", addr: ctx.String(apiAddrFlag.Name), handler: requestBodyLimit(handler)}}
	if ctx.Bool(enableMetricsFlag.Name) {
		servers = append(servers, &server{name: "metrics", addr: ctx.String(metricsAddrFlag.Name), handler: metrics.HTTPHandler()})
	}
	if ctx.Bool(enableAdminFlag.Name) {
		servers = append(servers, &server{name: "admin", addr: ctx.String(adminAddrFlag.Name), handler: admin.New(rt, reqLogger).Handler()})
	}

	group, groupCtx := errgroup.WithContext(exitSignal)
	for i, srv := range servers {
		if err := srv.listen(); err != nil {
			for _, started := range servers[:i] {
				started.listener.Close()
			}
			return err
		}
	}
	for _, srv := range servers {
		group.Go(srv.serve)
	}
	group.Go(func() error {
		<-groupCtx.Done()
		for _, srv := range servers {
			logger.Info("stopping server...", "name", srv.name)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			srv.shutdown(shutdownCtx)
			cancel()
		}
		return nil
	})

	printStartupMessage(gene.ID(), rt.Head(), instanceDir, servers)

	return group.Wait()
}

func keygenAction(ctx *cli.Context) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	addr := pledge.Address(crypto.PubkeyToAddress(key.PublicKey))
	if path := ctx.String(keyFileFlag.Name); path != "" {
		if err := crypto.SaveECDSA(path, key); err != nil {
			return err
		}
		fmt.Println("address:", addr)
		fmt.Println("key saved to", path)
		return nil
	}
	fmt.Println("address:    ", addr)
	fmt.Printf("private key: %x\n", crypto.FromECDSA(key))
	return nil
}
