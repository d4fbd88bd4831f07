package commands

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/app"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/logging"
	"github.com/tigosprojects/tigos/internal/models"
)

// selectionFlags are the persistent flags that override config defaults
type selectionFlags struct {
	chatModel  string
	imageModel string
	resolution string
	voice      string
	noLogo     bool
	offline    bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.chatModel, "model", "m", "", fmt.Sprintf("Chat model %v", models.AllChatModels()))
	pf.StringVar(&f.imageModel, "image-model", "", fmt.Sprintf("Image model %v", models.AllImageModels()))
	pf.StringVar(&f.resolution, "resolution", "", fmt.Sprintf("Image size %v", models.AllResolutions()))
	pf.StringVar(&f.voice, "voice", "", fmt.Sprintf("Speech voice %v", models.AllVoices()))
	pf.BoolVar(&f.noLogo, "no-logo", false, "Ask for images without the provider watermark")
	pf.BoolVar(&f.offline, "offline", false, "Answer locally without network calls (dry run)")
}

// apply overlays flags that were set on sel
func (f *selectionFlags) apply(cmd *cobra.Command, sel app.Selection) (app.Selection, error) {
	var err error
	if f.chatModel != "" {
		if sel.ChatModel, err = models.ParseChatModel(f.chatModel); err != nil {
			return sel, err
		}
	}
	if f.imageModel != "" {
		if sel.ImageModel, err = models.ParseImageModel(f.imageModel); err != nil {
			return sel, err
		}
	}
	if f.resolution != "" {
		if sel.Resolution, err = models.ParseResolution(f.resolution); err != nil {
			return sel, err
		}
	}
	if f.voice != "" {
		if sel.Voice, err = models.ParseVoice(f.voice); err != nil {
			return sel, err
		}
	}
	if cmd.Flags().Changed("no-logo") {
		sel.NoLogo = f.noLogo
	}
	return sel, nil
}

// session is an opened App plus its log file
type session struct {
	cfg       config.Config
	app       *app.App
	log       zerolog.Logger
	logCloser io.Closer
}

// openSession loads config, starts the session log and opens the App
func openSession(cmd *cobra.Command, deps *Dependencies, flags *selectionFlags) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log, closer := logging.Nop(), io.Closer(nopCloser{})
	if logDir, err := config.GetLogDir(); err == nil {
		var lerr error
		log, closer, lerr = logging.Setup(logDir, cfg.Verbose)
		if lerr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warningLine(fmt.Sprintf("logging disabled: %v", lerr)))
		}
	}

	s, err := openSessionWithLog(cmd, deps, flags, cfg, log)
	if err != nil {
		closer.Close()
		return nil, err
	}
	s.logCloser = closer
	return s, nil
}

func openSessionWithLog(cmd *cobra.Command, deps *Dependencies, flags *selectionFlags, cfg config.Config, log zerolog.Logger) (*session, error) {
	sel, err := app.SelectionFromConfig(cfg.Defaults)
	if err != nil {
		return nil, err
	}
	if sel, err = flags.apply(cmd, sel); err != nil {
		return nil, err
	}

	var gw api.Gateway
	if flags.offline {
		gw = api.OfflineGateway()
	} else if gw, err = deps.NewGateway(cfg, log); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	a, err := app.Open(cfg, gw, deps.Narrator, app.WithLogger(log), app.WithSelection(sel))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, app: a, log: log}, nil
}

// close writes every collection and closes the log
func (s *session) close() error {
	err := s.app.Close()
	s.closeLog()
	return err
}

func (s *session) closeLog() {
	if s.logCloser != nil {
		s.logCloser.Close()
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore opens the collections without a gateway, for history and settings commands
func openStore() (config.Config, *history.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, nil, err
	}
	dir, err := config.GetDataDir(cfg)
	if err != nil {
		return cfg, nil, err
	}
	store, err := history.NewStoreWithFiles(dir, cfg.Files)
	return cfg, store, err
}
