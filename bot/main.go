package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/docopt/docopt-go"

	"github.com/golang/glog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hourbot/hourbot/hourbot"
	"github.com/hourbot/hourbot/ratings"
	"github.com/hourbot/hourbot/store"
)

const Version = "0.1.0"

func main() {
	usage := fmt.Sprintf(
		`Hourbot chat client.

The OAuth token is read from the TWITCH_OAUTH_TOKEN environment variable.
If unset, it is prompted for on stdin.

The default chat url is:
    %s

Usage:
    bot run --config=<config>

Options:
    -h --help            Show this screen.
    --version            Show version.
    -c --config=<config>  Path to the YAML config file.`,
		DefaultChatUrl,
	)

	opts, err := docopt.ParseArgs(usage, os.Args[1:], Version)
	if err != nil {
		panic(err)
	}

	if run_, _ := opts.Bool("run"); run_ {
		run(opts)
	}
}

func run(opts docopt.Opts) {
	configPath := opts["--config"].(string)

	config, err := LoadConfig(configPath)
	if err != nil {
		glog.Errorf("[bot]config error = %s\n", err)
		os.Exit(1)
	}

	token := os.Getenv("TWITCH_OAUTH_TOKEN")
	if token == "" {
		fmt.Print("Enter OAuth token: ")
		tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			panic(err)
		}
		token = string(tokenBytes)
		fmt.Printf("\n")
	}

	cancelCtx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer cancel()

	totals, err := store.New(config.DatabasePath)
	if err != nil {
		glog.Errorf("[bot]store error = %s\n", err)
		os.Exit(1)
	}
	defer totals.Close()

	if 0 < config.MetricsPort {
		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", config.MetricsPort),
			Handler: promhttp.Handler(),
		}
		go func() {
			err := metricsServer.ListenAndServe()
			if err != nil {
				glog.Errorf("[bot]metrics error = %s\n", err)
			}
		}()
		go func() {
			<-cancelCtx.Done()
			metricsServer.Shutdown(context.Background())
		}()
	}

	auth := &hourbot.ClientAuth{
		Nick:       config.Nick,
		OAuthToken: token,
	}
	client := hourbot.NewClientWithDefaults(cancelCtx, config.Url, auth)

	client.AddRoutine(func(ctx context.Context, client *hourbot.Client) {
		client.Join(ctx, config.Room)
	})

	segueSettings := ratings.DefaultSegueSettings()
	if 0 < config.Segue.DecaySeconds {
		segueSettings.Decay = seconds(config.Segue.DecaySeconds)
	}
	if 0 < config.Segue.MinCount {
		segueSettings.MinCount = config.Segue.MinCount
	}
	segue := ratings.NewSegueAverager(config.Room, segueSettings)
	client.AddRoutine(segue.Run)

	roleplaySettings := ratings.DefaultRoleplaySettings()
	if 0 < config.Roleplay.DecaySeconds {
		roleplaySettings.Decay = seconds(config.Roleplay.DecaySeconds)
	}
	if 0 < config.Roleplay.MinCount {
		roleplaySettings.MinCount = config.Roleplay.MinCount
	}
	roleplay := ratings.NewRoleplayTally(config.Room, totals, roleplaySettings)
	client.AddRoutine(roleplay.Run)

	commands := ratings.NewOperatorCommands(config.Room, config.Operators, totals)
	client.AddRoutine(commands.Run)

	fmt.Printf("hourbot %s as %s in #%s\n", Version, config.Nick, config.Room)

	go client.Run()

	select {
	case <-cancelCtx.Done():
	}

	client.Close()

	os.Exit(0)
}
