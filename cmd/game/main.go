package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tomz197/lunardefender/internal/audio"
	"github.com/tomz197/lunardefender/internal/config"
	"github.com/tomz197/lunardefender/internal/logger"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/loop/client"
	lconfig "github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/loop/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lunar defender: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	debug, err := config.GetEnvBool("DEFENDER_DEBUG", false)
	if err != nil {
		return err
	}
	opts := logger.DefaultOptions(config.GetEnv("DEFENDER_LOG", "defender.log"))
	opts.Debug = debug
	log := logger.Init(opts)
	defer logger.Sync()

	tun, err := lconfig.FromEnv()
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}

	srvOpts := server.Options{Tuning: tun}
	if on, err := config.GetEnvBool("DEFENDER_AUDIO", false); err != nil {
		return err
	} else if on {
		spk := audio.NewSpeaker()
		if err := spk.Init(); err != nil {
			// Play on without sound
			log.Warnw("audio disabled", "error", err)
		} else {
			defer spk.Close()
			cues := audio.NewPresenter(spk, 0.6)
			srvOpts.Presenter = func(*server.ClientHandle) loop.Presenter { return cues }
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gs := server.NewServer(srvOpts)
	go gs.Run(ctx)

	c, err := client.NewClient(gs, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", "pilot"),
	})
	if err != nil {
		return err
	}
	log.Infow("local game started", "tuning", tun)
	if err := c.Run(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}
