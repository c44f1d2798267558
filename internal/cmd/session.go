package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/sadopc/taskflow/internal/config"
	"github.com/sadopc/taskflow/internal/logging"
	"github.com/sadopc/taskflow/internal/persist"
	"github.com/sadopc/taskflow/internal/storage"
	"github.com/sadopc/taskflow/internal/task"
	"github.com/sadopc/taskflow/internal/tui"
)

const memoryLabel = "(memory)"

// session is everything one invocation needs: config, logger, the open
// store and the task state on top of it.
type session struct {
	cfg     *config.Config
	log     *log.Logger
	kv      storage.KV
	dbLabel string
	store   *task.Store
	syncer  *persist.Syncer
	closers []io.Closer
}

func openSession(opts *rootOptions) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.Open(cfg.Logging)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		log:     logger,
		closers: []io.Closer{logCloser},
	}
	s.kv = s.openKV(opts.ephemeral)

	adapter := storage.NewAdapter(s.kv, cfg.Storage.Key, logger)
	s.syncer = persist.New(adapter, cfg.Persist.Debounce(), logger)
	s.store = task.NewStore(task.WithIDSource(task.NewClockIDs(nil)))
	return s, nil
}

// openKV opens the database. When it cannot be opened the session runs
// against an unavailable store and keeps everything in memory.
func (s *session) openKV(ephemeral bool) storage.KV {
	if ephemeral {
		s.dbLabel = memoryLabel
		kv := storage.NewMemoryKV()
		kv.SetQuota(int(s.cfg.Storage.QuotaBytes))
		return kv
	}

	s.dbLabel = s.cfg.Storage.Path
	kv, err := storage.OpenSQLite(s.cfg.Storage.Path, s.cfg.Storage.QuotaBytes)
	if err != nil {
		s.log.Error("failed to open database", "path", s.cfg.Storage.Path, "err", err)
		return storage.NewUnavailableKV(err)
	}
	s.log.Debug("opened database", "path", s.cfg.Storage.Path)
	s.closers = append(s.closers, kv)
	return kv
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hydrate loads the stored list. One-shot commands refuse to run against
// storage they cannot read, since saving would replace data they never saw.
func (s *session) hydrate() error {
	tasks, err := s.syncer.Hydrate()
	if err != nil {
		return fmt.Errorf("%s: %w", storage.Message(err), err)
	}
	s.store.LoadTasks(tasks)
	s.syncer.MarkSynced()
	return nil
}

func (s *session) save() error {
	if err := s.syncer.ForceSave(s.store.Tasks()); err != nil {
		return fmt.Errorf("%s: %w", storage.Message(err), err)
	}
	return nil
}

// withTasks opens a session, loads the list, runs fn and saves once if fn
// changed it.
func withTasks(opts *rootOptions, fn func(s *session) error) (err error) {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := s.hydrate(); err != nil {
		return err
	}
	before := s.store.State().Revision
	if err := fn(s); err != nil {
		return err
	}
	if s.store.State().Revision == before {
		return nil
	}
	return s.save()
}

func runTUI(opts *rootOptions) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	app := tui.NewApp(tui.Options{
		Store:  s.store,
		Syncer: s.syncer,
		KV:     s.kv,
		Theme:  tui.LoadTheme(s.kv, s.cfg.UI.Theme),
		Info: tui.StorageInfo{
			Path:       s.dbLabel,
			Key:        s.cfg.Storage.Key,
			QuotaBytes: s.cfg.Storage.QuotaBytes,
			Debounce:   s.syncer.Interval(),
		},
		Logger:    s.log,
		ExportDir: exportDir,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
