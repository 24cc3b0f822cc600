// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/pkg/errors"
	pb "gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/fleek-platform/fleek-contracts/api"
	"github.com/fleek-platform/fleek-contracts/cmd/fleekd/httpserver"
	"github.com/fleek-platform/fleek-contracts/health"
	"github.com/fleek-platform/fleek-contracts/log"
	"github.com/fleek-platform/fleek-contracts/logdb"
	"github.com/fleek-platform/fleek-contracts/lvldb"
	"github.com/fleek-platform/fleek-contracts/metrics"
	"github.com/fleek-platform/fleek-contracts/node"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "Fleek",
		Usage:     "Custodial staking ledger daemon",
		Copyright: "2025 Fleek Platform",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			memFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			auditScheduleFlag,
			clockToleranceFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "export-journal",
				Usage: "export the operation journal to a backup file",
				Flags: []cli.Flag{
					networkFlag,
					dataDirFlag,
					journalFileFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: exportJournalAction,
			},
			{
				Name:  "import-journal",
				Usage: "append operations from a backup file to the journal",
				Flags: []cli.Flag{
					networkFlag,
					dataDirFlag,
					journalFileFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: importJournalAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	gene := selectGenesis(ctx)

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
		cacheMB     int
	)
	if ctx.Bool(memFlag.Name) {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
		cacheMB = ctx.Int(cacheFlag.Name)
	} else {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB, cacheMB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(ctx, instanceDir)
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing journal database..."); logDB.Close() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		log.Info("metrics server started", "url", url)
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	h := new(health.Health)
	nd, err := node.New(gene, mainDB, logDB, h, node.Options{
		CacheMB:        cacheMB / 2,
		ClockTolerance: ctx.Duration(clockToleranceFlag.Name),
		AuditSchedule:  ctx.String(auditScheduleFlag.Name),
	})
	if err != nil {
		return errors.Wrap(err, "initialize node")
	}

	logAPIRequests := new(atomic.Bool)
	logAPIRequests.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiCloser := api.New(nd, h, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:      ctx.Uint64(apiLogsLimitFlag.Name),
		LogRequests:    logAPIRequests,
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, gene.ID())
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.NewAdmin(ctx.String(adminAddrFlag.Name), logLevel, logAPIRequests).Start()
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		log.Info("admin server started", "url", url)
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(gene, nd, instanceDir, apiURL)

	return nd.Run(handleExitSignal())
}

func exportJournalAction(ctx *cli.Context) error {
	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	logDB := openLogDB(ctx, instanceDir)
	defer logDB.Close()

	path := ctx.String(journalFileFlag.Name)
	if path == "" {
		return errors.Errorf("missing -%s flag", journalFileFlag.Name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create backup file")
	}
	defer f.Close()

	maxSeq, err := logDB.MaxSeq()
	if err != nil {
		return errors.Wrap(err, "read journal head")
	}

	bar := pb.New64(int64(maxSeq)).SetMaxWidth(90).Start()
	n, err := logDB.Export(context.Background(), f, func(n uint64) {
		bar.Set64(int64(n))
	})
	bar.Finish()
	if err != nil {
		return errors.Wrap(err, "export journal")
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, "sync backup file")
	}

	log.Info("journal exported", "rows", n, "file", path)
	return nil
}

func importJournalAction(ctx *cli.Context) error {
	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	logDB := openLogDB(ctx, instanceDir)
	defer logDB.Close()

	path := ctx.String(journalFileFlag.Name)
	if path == "" {
		return errors.Errorf("missing -%s flag", journalFileFlag.Name)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open backup file")
	}
	defer f.Close()

	// the stream does not carry a row count up front
	bar := pb.New64(0).SetMaxWidth(90)
	bar.ShowPercent = false
	bar.ShowBar = false
	bar.ShowTimeLeft = false
	bar.Start()
	n, err := logDB.Import(context.Background(), f, func(n uint64) {
		bar.Set64(int64(n))
	})
	bar.Finish()
	if err != nil {
		return errors.Wrap(err, "import journal")
	}

	log.Info("journal imported", "rows", n, "file", path)
	return nil
}
