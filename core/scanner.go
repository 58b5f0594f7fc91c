package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task adalah satu collector yang dijadwalkan Scanner.
// Hasilnya di-commit ke slot tujuan oleh goroutine Scanner, bukan oleh
// goroutine collector, jadi task yang kena timeout tidak bisa menimpa slot.
type Task struct {
	id   string
	name string
	run  func(ctx context.Context) (commit func(), err error)
	fail func(err error)
}

func (t Task) ID() string   { return t.id }
func (t Task) Name() string { return t.name }

// Bind membuat Task yang menyimpan hasil fn ke dst.
func Bind[T any](id, name string, dst *Result[T], fn func(ctx context.Context) Result[T]) Task {
	return Task{
		id:   id,
		name: name,
		run: func(ctx context.Context) (func(), error) {
			r := fn(ctx)
			return func() { *dst = r }, r.Err
		},
		fail: func(err error) { *dst = Fail[T](err) },
	}
}

// BindValue untuk collector yang tidak pernah gagal (mis. OS details).
// Kalau task panic/timeout, dst dibiarkan apa adanya.
func BindValue[T any](id, name string, dst *T, fn func(ctx context.Context) T) Task {
	return Task{
		id:   id,
		name: name,
		run: func(ctx context.Context) (func(), error) {
			v := fn(ctx)
			return func() { *dst = v }, nil
		},
		fail: func(error) {},
	}
}

// Config untuk scanner
type Config struct {
	Timeout     time.Duration // per task
	Workers     int           // 1 = berurutan
	Progress    bool
	ProgressOut io.Writer
}

// Scanner adalah orchestrator utama
type Scanner struct {
	tasks    []Task
	config   Config
	logger   *zap.Logger
	progress *ProgressReporter
	mu       sync.Mutex
}

// NewScanner membuat instance scanner baru
func NewScanner(cfg Config, logger *zap.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var progress *ProgressReporter
	if cfg.Progress {
		progress = NewProgressReporter(cfg.ProgressOut)
	}
	return &Scanner{
		config:   cfg,
		logger:   logger,
		progress: progress,
	}
}

// Register menambahkan task ke scanner
func (s *Scanner) Register(tasks ...Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

// TaskResult adalah ringkasan eksekusi satu task
type TaskResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"` // ok, error, timeout, unsupported
	Kind     Kind          `json:"error_kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Run menjalankan semua task; hasil dikembalikan sesuai urutan registrasi.
func (s *Scanner) Run(ctx context.Context) []TaskResult {
	s.mu.Lock()
	tasks := append([]Task(nil), s.tasks...)
	s.mu.Unlock()

	results := make([]TaskResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	if s.progress != nil {
		s.progress.SetTotal(len(tasks))
		s.progress.Start()
		defer s.progress.Stop()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Workers)

	// commit dilakukan di bawah lock: slot berbeda, tapi Inventory tetap satu struct
	var commitMu sync.Mutex
	for i, t := range tasks {
		eg.Go(func() error {
			results[i] = s.runSingle(egCtx, t, &commitMu)
			if s.progress != nil {
				s.progress.Increment(t.id, results[i].Status)
			}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

type outcome struct {
	commit func()
	err    error
}

// runSingle menjalankan satu task dengan timeout dan panic recovery
func (s *Scanner) runSingle(ctx context.Context, t Task, commitMu *sync.Mutex) TaskResult {
	res := TaskResult{ID: t.id, Name: t.name, Status: "ok"}
	start := time.Now()
	log := s.logger.With(zap.String("task", t.id))

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: Wrap(KindPanic, t.id, fmt.Errorf("panic: %v", r))}
			}
		}()
		commit, err := t.run(ctx)
		done <- outcome{commit: commit, err: err}
	}()

	var err error
	select {
	case o := <-done:
		err = o.err
		commitMu.Lock()
		if o.commit != nil {
			o.commit()
		} else {
			t.fail(err)
		}
		commitMu.Unlock()
	case <-ctx.Done():
		err = Wrap(KindTimeout, t.id, ctx.Err())
		commitMu.Lock()
		t.fail(err)
		commitMu.Unlock()
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.Kind = KindOf(err)
		res.Error = err.Error()
		switch res.Kind {
		case KindTimeout:
			res.Status = "timeout"
		case KindUnsupported:
			res.Status = "unsupported"
		default:
			res.Status = "error"
		}
		log.Warn("collector failed", zap.String("kind", string(res.Kind)), zap.Error(err))
	} else {
		log.Debug("collector finished", zap.Duration("duration", res.Duration))
	}
	return res
}
