package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/config"
	"github.com/matchbook-dev/matchbook/internal/gitops"
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/logger"
	"github.com/matchbook-dev/matchbook/internal/model"
	"github.com/matchbook-dev/matchbook/internal/store"
)

// saveQuietInterval is how long the session waits for further mutations
// before a timer-driven save fires. Commands always Flush on finish, so
// this only matters for long multi-file operations.
const saveQuietInterval = 250 * time.Millisecond

// session is the shared lifecycle of every command that touches a book:
// load config, load and validate the working set, run the operation,
// then persist, commit and log through finish.
type session struct {
	root    string
	cfg     *config.Config
	store   store.Store
	closer  io.Closer
	ws      *ledger.WorkingSet
	pending []model.MatchSuggestion
	log     zerolog.Logger
	deb     *store.Debouncer
	audit   []auditlog.Entry
}

// openSession loads the book at bookDir.
func openSession(ctx context.Context, bookDir string) (*session, error) {
	root, err := filepath.Abs(bookDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s is not a matchbook book (missing %s); run matchbook init first", root, config.FileName)
		}
		return nil, err
	}

	st, closer, err := storeFor(ctx, cfg, root)
	if err != nil {
		return nil, err
	}

	ws, pending, err := st.Load(ctx)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("loading book: %w", err)
	}

	s := &session{
		root:    root,
		cfg:     cfg,
		store:   st,
		closer:  closer,
		ws:      ws,
		pending: pending,
		log:     logger.FromContext(ctx),
	}
	s.deb = store.NewDebouncer(saveQuietInterval, func(ctx context.Context) error {
		return s.store.Save(ctx, s.ws, s.pending)
	})
	return s, nil
}

// storeFor picks the persistence backend from config: a GCS bucket when
// one is configured, local CSV files otherwise.
func storeFor(ctx context.Context, cfg *config.Config, root string) (store.Store, io.Closer, error) {
	if cfg.Storage.GCSBucket != "" {
		bucket, prefix, err := store.ParseGCSURI(cfg.Storage.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		gs, err := store.NewGCSStore(ctx, bucket, prefix)
		if err != nil {
			return nil, nil, err
		}
		return gs, gs, nil
	}

	fs := store.NewFileStore(root)
	fs.MaxBytes = cfg.Storage.MaxSnapshotBytes
	return fs, nil, nil
}

// touch marks the book dirty so the pending state reaches the store.
func (s *session) touch() {
	s.deb.Trigger()
}

// record queues a match-log entry; finish stamps the commit hash in.
func (s *session) record(action, txID, receiptID string, origin model.MatchOrigin, rationale string) {
	s.audit = append(s.audit, auditlog.Entry{
		Timestamp:     time.Now().UTC(),
		Action:        action,
		TransactionID: txID,
		ReceiptID:     receiptID,
		Origin:        origin,
		Rationale:     rationale,
	})
}

// finish flushes pending saves, commits the book when git integration is
// on, and appends queued match-log entries carrying the commit hash. A
// save that only shed document references logs a warning and proceeds;
// the snapshot on disk is still consistent. The match log and git are
// best-effort: their failures warn rather than fail the command.
func (s *session) finish(ctx context.Context, message string) error {
	defer s.close()

	if err := s.deb.Flush(ctx); err != nil {
		var quota store.QuotaError
		if errors.As(err, &quota) {
			s.log.Warn().
				Int64("size", quota.Size).
				Int64("budget", quota.Limit).
				Int("shed", quota.Shed).
				Msg("snapshot over budget; document refs shed from persisted form")
		} else {
			return fmt.Errorf("saving book: %w", err)
		}
	}

	hash := ""
	if s.cfg.Git.AutoCommit && gitops.IsRepo(s.root) {
		dirty, err := gitops.HasChanges(s.root)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("git status failed; skipping commit")
		case dirty:
			hash, err = gitops.CommitAll(s.root, message, s.cfg.Git.AuthorName, s.cfg.Git.AuthorEmail)
			if err != nil {
				s.log.Warn().Err(err).Msg("git commit failed")
				hash = ""
			}
		}
	}

	if len(s.audit) > 0 {
		for i := range s.audit {
			s.audit[i].CommitHash = hash
		}
		if err := auditlog.Append(s.root, s.audit); err != nil {
			s.log.Warn().Err(err).Msg("failed to write match log")
		}
		s.audit = nil
	}
	return nil
}

func (s *session) close() {
	if s.closer != nil {
		s.closer.Close()
		s.closer = nil
	}
}
