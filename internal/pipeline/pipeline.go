package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"csvsink/internal/config"
	"csvsink/internal/constants"
	"csvsink/internal/logger"
	"csvsink/internal/message"
	"csvsink/internal/schema"
	"csvsink/internal/sink"
	"csvsink/internal/state"
	"csvsink/pkg/errors"
)

// Pipeline is the single-threaded message loop: each decoded line
// updates the schema registry, the stream writer, or the checkpoint
// tracker, strictly in arrival order. Input is consumed once with no
// random access and no retry; every error except an unrecognized
// message type aborts the run.
type Pipeline struct {
	log      logger.Logger
	registry *schema.Registry
	writer   *sink.Writer
	tracker  *state.Tracker
}

func New(cfg *config.Config, log logger.Logger, start time.Time) (*Pipeline, error) {
	writer, err := sink.NewWriter(cfg, log, start)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		log:      log,
		registry: schema.NewRegistry(),
		writer:   writer,
		tracker:  state.NewTracker(),
	}, nil
}

// Run consumes the input stream to exhaustion and returns the pending
// checkpoint payload, nil when there is nothing to emit. A fatal error
// mid-stream returns before any checkpoint is surfaced.
func (p *Pipeline) Run(r io.Reader) (json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineBytes)

	for scanner.Scan() {
		msg, err := message.Decode(scanner.Text())
		if err != nil {
			return nil, err
		}

		if err := p.handle(msg); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.ErrDecode.
			WithMessage("unable to read input stream").
			WithCause(err)
	}

	return p.tracker.Pending(), nil
}

func (p *Pipeline) handle(msg message.Message) error {
	switch m := msg.(type) {
	case message.Schema:
		if err := p.registry.Declare(m.Stream, m.Schema, m.KeyProperties); err != nil {
			return err
		}
		p.log.Debugw("Schema declared",
			"stream", m.Stream,
			"key_properties", m.KeyProperties,
		)
		return nil

	case message.Record:
		if err := p.registry.Validate(m.Stream, m.Raw); err != nil {
			return err
		}
		if err := p.writer.Append(m.Stream, m.Fields); err != nil {
			return err
		}
		// A committed record invalidates any pending checkpoint claim
		// until a new STATE arrives.
		p.tracker.Clear()
		return nil

	case message.State:
		p.log.Debugw("Setting state", "value", string(m.Value))
		p.tracker.Set(m.Value)
		return nil

	case message.Unknown:
		p.log.Warnw("Unknown message type",
			"type", m.Type,
			"message", m.Raw,
		)
		return nil
	}

	return nil
}

// Manifest exposes the files written this run for the transfer
// dispatcher.
func (p *Pipeline) Manifest() []sink.ManifestEntry {
	return p.writer.Manifest()
}

// Written reports per-stream row counts.
func (p *Pipeline) Written() map[string]int {
	return p.writer.Written()
}
