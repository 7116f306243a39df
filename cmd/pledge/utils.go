// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pledge/genesis"
	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/logdb"
	"github.com/vechain/pledge/lvldb"
	"github.com/vechain/pledge/pledge"
	"github.com/vechain/pledge/state"
)

const maxRequestBodySize = 200 * 1024

func initLogger(ctx *cli.Context) {
	log.Init(log.Options{
		Verbosity: ctx.Int(verbosityFlag.Name),
		JSON:      ctx.Bool(jsonLogsFlag.Name),
	})
}

func homeDir() (string, error) {
	// try to get HOME env
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}

	user, err := user.Current()
	if err != nil {
		return "", err
	}
	if user.HomeDir != "" {
		return user.HomeDir, nil
	}

	return os.Getwd()
}

func defaultDataDir() string {
	if home, err := homeDir(); err == nil {
		return filepath.Join(home, ".org.vechain.pledge")
	}
	return ""
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.Load(path)
	if err != nil {
		return nil, err
	}
	return genesis.New(cfg)
}

// makeInstanceDir creates a per genesis directory, so databases of different genesis never mix.
func makeInstanceDir(ctx *cli.Context, genesisID pledge.Bytes32) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", genesisID.Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(instanceDir string) (*lvldb.LevelDB, error) {
	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openLogDB(instanceDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

// applyGenesis deploys the genesis into an empty state. Genesis events are logged as call 0.
func applyGenesis(gene *genesis.Genesis, st *state.State, logDB *logdb.LogDB) error {
	events, applied, err := gene.Apply(st)
	if err != nil {
		return err
	}
	if !applied || logDB == nil {
		return nil
	}
	return logDB.Insert(&logdb.CallInfo{ID: gene.ID()}, events)
}

type server struct {
	name     string
	addr     string
	handler  http.Handler
	listener net.Listener
	srv      *http.Server
}

func (s *server) listen() (err error) {
	if s.listener, err = net.Listen("tcp", s.addr); err != nil {
		return errors.Wrapf(err, "listen %s addr [%v]", s.name, s.addr)
	}
	s.srv = &http.Server{Handler: s.handler, ReadHeaderTimeout: time.Second * 10}
	return nil
}

func (s *server) url() string {
	return "http://" + s.listener.Addr().String() + "/"
}

func (s *server) serve() error {
	if err := s.srv.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, "%s server", s.name)
	}
	return nil
}

func (s *server) shutdown(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", "name", s.name, "err", err)
	}
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		h.ServeHTTP(w, r)
	})
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(genesisID pledge.Bytes32, head uint32, dataDir string, servers []*server) {
	fmt.Printf(`Starting %v
    Genesis         [ %v ]
    Calls           [ %v ]
    Instance dir    [ %v ]
`,
		"Pledge",
		genesisID,
		head,
		dataDir)
	for _, s := range servers {
		fmt.Printf("    %-15s [ %v ]\n", s.name+" portal", s.url())
	}
}
