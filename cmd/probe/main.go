// probe runs a single unblock attempt from the command line and prints the
// outcome as JSON. It uses the same config and methods resource as the
// server but keeps no history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unblocker/src/config"
	"unblocker/src/helpers"
	"unblocker/src/logger"
	"unblocker/src/network"
	"unblocker/src/sequencer"
)

func main() {
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	target := flag.String("url", "", "target URL")
	mode := flag.String("method", sequencer.ModeAuto, "method id or 'auto'")
	showContent := flag.Bool("content", false, "include the fetched content")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLoggerTo(os.Stderr, conf.LogLevel, "Probe")

	methods := config.ProxyMethodsOrDefault(conf.Proxy.MethodsFile, log)
	seq, err := sequencer.New(methods, network.NewAsyncNetworkManager(conf.MConfig, log.Named("NetworkManager")), log.Named("Sequencer"))
	if err != nil {
		log.Critical("Failed to build sequencer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := seq.AttemptWithObserver(ctx, *target, *mode, func(ev sequencer.Event) {
		switch ev.Kind {
		case sequencer.EventAttempt:
			log.Info("round %d/%d: trying %s", ev.Round, ev.MaxRounds, ev.Method.Name)
		case sequencer.EventMethodFailed:
			log.Warning("%s failed: %v", ev.Method.Name, ev.Err)
		case sequencer.EventSuccess:
			log.Info("%s succeeded", ev.Method.Name)
		}
	})

	out := map[string]interface{}{
		"url":     *target,
		"success": err == nil,
	}
	if err != nil {
		out["reason"] = helpers.Reason(err)
		out["error"] = err.Error()
	}
	if result != nil {
		out["method"] = result.Method.ID
		out["attempts"] = result.Attempts
		out["round"] = result.Round
		out["bytes"] = len(result.Content)
		if *showContent {
			out["content"] = result.Content
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)

	if err != nil {
		os.Exit(2)
	}
}
