package transfer

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"csvsink/internal/config"
	"csvsink/internal/constants"
	"csvsink/internal/logger"
	"csvsink/internal/sink"
	"csvsink/pkg/errors"
)

// Dispatcher pushes the files produced during a run to a remote host
// over SFTP. It runs only after the input stream is fully consumed,
// opens one authenticated session for the whole manifest, and gives up
// on the first failure. Files already copied are not rolled back.
type Dispatcher struct {
	cfg config.SFTPConfig
	log logger.Logger
}

func NewDispatcher(cfg config.SFTPConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, log: log}
}

// Enabled mirrors the configuration gate: all five credentials or
// nothing. A partially configured dispatcher performs no network
// activity at all.
func (d *Dispatcher) Enabled() bool {
	return d.cfg.Enabled()
}

func (d *Dispatcher) Dispatch(manifest []sink.ManifestEntry) error {
	if !d.Enabled() {
		return nil
	}

	port := d.cfg.Port
	if port == 0 {
		port = constants.DefaultSFTPPort
	}
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, port)

	// Host key checking is deliberately disabled: the public key and
	// its format are configuration gate inputs, not pinned trust
	// anchors, matching the upstream contract.
	clientConfig := &ssh.ClientConfig{
		User:            d.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(d.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         constants.SFTPDialTimeout,
	}

	conn, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return errors.ErrTransfer.
			WithMessage("unable to connect to %s", addr).
			WithCause(err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return errors.ErrTransfer.
			WithMessage("unable to open sftp session on %s", addr).
			WithCause(err)
	}
	defer client.Close()

	for _, entry := range manifest {
		if err := d.upload(client, entry); err != nil {
			return err
		}
		d.log.Infow("File pushed to remote host",
			"stream", entry.Stream,
			"filename", entry.Filename,
		)
	}

	return nil
}

func (d *Dispatcher) upload(client *sftp.Client, entry sink.ManifestEntry) error {
	src, err := os.Open(entry.Path)
	if err != nil {
		return errors.ErrTransfer.
			WithMessage("unable to open local file %s", entry.Path).
			WithCause(err)
	}
	defer src.Close()

	dst, err := client.Create(entry.Filename)
	if err != nil {
		return errors.ErrTransfer.
			WithMessage("unable to create remote file %s", entry.Filename).
			WithCause(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.ErrTransfer.
			WithMessage("unable to copy %s to remote host", entry.Filename).
			WithCause(err)
	}

	return nil
}
