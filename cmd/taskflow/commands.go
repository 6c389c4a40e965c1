package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/taskflow/internal/config"
	"git.home.luguber.info/inful/taskflow/internal/daemon"
	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/model"
	"git.home.luguber.info/inful/taskflow/internal/persist"
	"git.home.luguber.info/inful/taskflow/internal/reduce"
	"git.home.luguber.info/inful/taskflow/internal/store"
)

func runInit(configPath string, force bool) error {
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("Created configuration file:", configPath)
	return nil
}

func runServe(configPath string, logLevel *slog.LevelVar) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if !CLI.Verbose {
		level, err := config.ParseLogLevel(cfg.Logging.Level)
		if err != nil {
			return err
		}
		logLevel.Set(level)
	}
	if CLI.Database != "" {
		cfg.Database.Path = CLI.Database
	}

	d, err := daemon.New(cfg,
		daemon.WithLogLevel(logLevel),
		daemon.WithConfigPath(configPath),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

// session is the short-lived store a one-shot command runs against. It
// hydrates from the database on open and flushes debounced writes on close.
type session struct {
	store   *store.Store
	gateway persist.Gateway
	cancel  context.CancelFunc
}

func openSession(cfg *config.Config) (*session, error) {
	gw, err := persist.NewSQLiteGateway(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	st, err := store.New(gw)
	if err != nil {
		gw.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	go func() { _ = st.Run(runCtx) }()

	ctx, cancelWait := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelWait()
	select {
	case <-st.Ready():
	case <-ctx.Done():
		cancel()
		gw.Close()
		return nil, ferrors.RuntimeError("store did not start").Build()
	}

	if err := st.Dispatch(ctx, reduce.Load{}); err != nil {
		cancel()
		gw.Close()
		return nil, err
	}
	// Flush waits for the fetch effect and applies the loaded items.
	if err := st.Flush(ctx); err != nil {
		cancel()
		gw.Close()
		return nil, err
	}

	return &session{store: st, gateway: gw, cancel: cancel}, nil
}

func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	flushErr := s.store.Flush(ctx)
	s.cancel()
	closeErr := s.gateway.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func runAdd(cfg *config.Config, descriptionWords []string) error {
	description := strings.TrimSpace(strings.Join(descriptionWords, " "))
	if description == "" {
		return ferrors.ValidationError("description must not be empty").Build()
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	id := uuid.NewString()
	if err := s.store.Dispatch(ctx, reduce.Add{ID: id}); err != nil {
		return err
	}
	if err := s.store.Dispatch(ctx, reduce.EditDescription{ID: id, Text: description}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	fmt.Println("Added:", description)
	return nil
}

func runList(cfg *config.Config, filter string) error {
	f, err := model.ParseFilter(filter)
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	items := model.FilterItems(s.store.State().Items, f)
	if len(items) == 0 {
		fmt.Println("No items.")
		return nil
	}
	printItems(items)
	return nil
}

func runToggle(cfg *config.Config, number int) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	items := s.store.State().Items
	idx, err := resolveNumber(items, number)
	if err != nil {
		return err
	}

	if err := s.store.Dispatch(ctx, reduce.ToggleComplete{ID: items[idx].ID}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	printItems(s.store.State().Items)
	return nil
}

func runEdit(cfg *config.Config, number int, descriptionWords []string) error {
	description := strings.TrimSpace(strings.Join(descriptionWords, " "))
	if description == "" {
		return ferrors.ValidationError("description must not be empty").Build()
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	items := s.store.State().Items
	idx, err := resolveNumber(items, number)
	if err != nil {
		return err
	}

	if err := s.store.Dispatch(ctx, reduce.EditDescription{ID: items[idx].ID, Text: description}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	fmt.Println("Updated:", description)
	return nil
}

func runRemove(cfg *config.Config, numbers []int) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	items := s.store.State().Items
	indices := make([]int, 0, len(numbers))
	for _, n := range numbers {
		idx, err := resolveNumber(items, n)
		if err != nil {
			return err
		}
		indices = append(indices, idx)
	}

	if err := s.store.Dispatch(ctx, reduce.Delete{Indices: indices}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	fmt.Printf("Removed %d item(s).\n", len(numbers))
	return nil
}

func runMove(cfg *config.Config, from, to int) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	items := s.store.State().Items
	idx, err := resolveNumber(items, from)
	if err != nil {
		return err
	}
	if to < 1 || to > len(items) {
		return ferrors.ValidationError("destination out of range").
			WithContext("to", to).
			Build()
	}

	if err := s.store.Dispatch(ctx, reduce.Reorder{FromIndices: []int{idx}, ToIndex: to - 1}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	printItems(s.store.State().Items)
	return nil
}

func runClear(cfg *config.Config) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	completed := len(model.FilterItems(s.store.State().Items, model.FilterCompleted))

	if err := s.store.Dispatch(ctx, reduce.ClearCompleted{}); err != nil {
		return err
	}
	if err := s.store.Flush(ctx); err != nil {
		return err
	}

	fmt.Printf("Cleared %d completed item(s).\n", completed)
	return nil
}

func resolveNumber(items []model.Item, number int) (int, error) {
	if number < 1 || number > len(items) {
		return 0, ferrors.ValidationError("no such item number").
			WithContext("number", number).
			WithContext("count", len(items)).
			Build()
	}
	return number - 1, nil
}

func printItems(items []model.Item) {
	for i, it := range items {
		fmt.Fprintln(os.Stdout, formatItem(i, it))
	}
}

func formatItem(i int, it model.Item) string {
	mark := " "
	if it.Complete {
		mark = "x"
	}
	return fmt.Sprintf("%2d [%s] %s", i+1, mark, it.Description)
}
