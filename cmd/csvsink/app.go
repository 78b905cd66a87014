package main

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"csvsink/internal/config"
	"csvsink/internal/logger"
	"csvsink/internal/pipeline"
	"csvsink/internal/telemetry"
	"csvsink/internal/transfer"
	"csvsink/pkg/errors"
)

const version = "1.0.0"

type App struct {
	cfg        *config.Config
	log        logger.Logger
	pipeline   *pipeline.Pipeline
	dispatcher *transfer.Dispatcher

	input  io.Reader
	output io.Writer
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		cfg:    cfg,
		log:    log.With("run_id", uuid.NewString()),
		input:  os.Stdin,
		output: os.Stdout,
	}
}

func (a *App) Initialize() error {
	p, err := pipeline.New(a.cfg, a.log, time.Now())
	if err != nil {
		return err
	}
	a.pipeline = p
	a.dispatcher = transfer.NewDispatcher(a.cfg.SFTP, a.log)
	return nil
}

// Run drives one full pass: telemetry ping in the background, the
// message loop over stdin, the optional transfer, then the checkpoint.
// Checkpoint emission is reached only via normal end-of-stream
// completion.
func (a *App) Run() error {
	if !a.cfg.DisableCollection {
		a.log.Info("Sending version information to the collector. " +
			"To disable sending anonymous usage data, set " +
			`the config parameter "disable_collection" to true`)
		go telemetry.Report(version, a.log)
	}

	checkpoint, err := a.pipeline.Run(a.input)
	if err != nil {
		return err
	}

	if a.dispatcher.Enabled() {
		if err := a.dispatcher.Dispatch(a.pipeline.Manifest()); err != nil {
			return err
		}
	}

	if err := a.emitCheckpoint(checkpoint); err != nil {
		return err
	}

	a.log.Infow("Run complete",
		"streams", len(a.pipeline.Manifest()),
		"records", a.pipeline.Written(),
	)
	return nil
}

// emitCheckpoint writes the final checkpoint line to stdout and flushes
// immediately. A nil payload means there is nothing to emit.
func (a *App) emitCheckpoint(checkpoint json.RawMessage) error {
	if checkpoint == nil {
		return nil
	}

	a.log.Debugw("Emitting checkpoint", "value", string(checkpoint))

	w := bufio.NewWriter(a.output)
	if _, err := w.Write(append(checkpoint, '\n')); err != nil {
		return errors.ErrFileIO.WithMessage("unable to emit checkpoint").WithCause(err)
	}
	if err := w.Flush(); err != nil {
		return errors.ErrFileIO.WithMessage("unable to flush checkpoint").WithCause(err)
	}
	return nil
}
