package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Qthai16/go-listqueue/cmd/qserver/qstat"
	"github.com/Qthai16/go-listqueue/cmd/qserver/service"
	"github.com/Qthai16/go-listqueue/common/queue"
	"github.com/Qthai16/go-listqueue/common/registry"
	"github.com/Qthai16/go-listqueue/common/rpc"
	"github.com/Qthai16/go-listqueue/utils"
	"github.com/sevlyar/go-daemon"
)

var cmdLineOpts = CmdlineOpts{}

type CmdlineOpts struct {
	Addr      string
	LogPath   string
	PidPath   string
	Daemon    bool
	MaxQueues int
	MaxNodes  int
	MaxBytes  int
	Shards    uint
	Hash      string
	Debug     bool
	Color     bool
}

func flagInit() {
	flag.StringVar(&cmdLineOpts.Addr, "addr", ":18100", "server listen addr")
	flag.StringVar(&cmdLineOpts.LogPath, "log", "", "log file path")
	flag.StringVar(&cmdLineOpts.PidPath, "pid", "/tmp/qserver.pid", "pid file used with -daemon")
	flag.BoolVar(&cmdLineOpts.Daemon, "daemon", false, "run as daemon")
	flag.IntVar(&cmdLineOpts.MaxQueues, "max-queues", 0, "max live queues, 0 for unlimited")
	flag.IntVar(&cmdLineOpts.MaxNodes, "max-nodes", 0, "max live elements over all queues, 0 for unlimited")
	flag.IntVar(&cmdLineOpts.MaxBytes, "max-bytes", 0, "max live value bytes over all queues, 0 for unlimited")
	flag.UintVar(&cmdLineOpts.Shards, "shards", registry.DefaultShards, "registry shard count")
	flag.StringVar(&cmdLineOpts.Hash, "hash", "murmur", "registry shard hash: murmur, jenkins or fnv")
	flag.BoolVar(&cmdLineOpts.Debug, "debug", false, "debug logs and a structure check after every mutation")
	flag.BoolVar(&cmdLineOpts.Color, "color", true, "colored log levels")
}

func run() error {
	if len(cmdLineOpts.LogPath) > 0 {
		f, err := utils.RedirectLog(cmdLineOpts.LogPath)
		if err != nil {
			return fmt.Errorf("redirect log to %v: %w", cmdLineOpts.LogPath, err)
		}
		defer f.Close()
	}
	hash, err := registry.HashByName(cmdLineOpts.Hash)
	if err != nil {
		return err
	}
	tracker := queue.NewTracker(cmdLineOpts.MaxNodes, cmdLineOpts.MaxBytes)
	reg := registry.NewConf(registry.Config{
		Shards:    uint32(cmdLineOpts.Shards),
		MaxQueues: cmdLineOpts.MaxQueues,
		Hash:      hash,
		Queue:     queue.Config{Alloc: tracker, Debug: cmdLineOpts.Debug},
	})
	svc := service.New(reg, qstat.New(rpc.Methods...))
	srv := service.NewServer(cmdLineOpts.Addr, svc.Processor(), rpc.DefaultConf())
	if err := srv.Listen(); err != nil {
		reg.Close()
		return fmt.Errorf("listen on %v: %w", cmdLineOpts.Addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ctx)
	}()
	select {
	case err = <-served:
	case sig := <-utils.WaitTerminate():
		utils.LogInfo("got signal %v, stopping", sig)
		cancel()
		srv.Stop()
		err = <-served
	}
	reg.Close()
	utils.LogInfo("stats:\n%v", svc.Stats())
	utils.LogInfo("allocator: %v", tracker)
	if errors.Is(err, service.ErrServerClosed) {
		err = nil
	}
	return err
}

func main() {
	flagInit()
	flag.Parse()
	utils.SetColorPrint(cmdLineOpts.Color)
	utils.SetDebug(cmdLineOpts.Debug)
	if len(cmdLineOpts.Addr) == 0 {
		utils.LogErro("invalid address")
		os.Exit(2)
	}
	if cmdLineOpts.Daemon {
		utils.LogInfo("running process as daemon")
		cntxt := &daemon.Context{
			PidFileName: cmdLineOpts.PidPath,
			PidFilePerm: 0644,
		}
		d, err := cntxt.Reborn()
		if err != nil {
			utils.LogErro("failed to run as daemon: %v", err)
			os.Exit(1)
		}
		if d != nil { // parent process
			return
		}
		defer cntxt.Release()
	}
	if err := run(); err != nil {
		utils.LogErro("server exit: %v", err)
		return
	}
	utils.LogInfo("server exit")
}
