// cmd/armature/main.go
//
// Entry point for the armature host daemon.
//
// Flow:
// 1. Initialize the .armature folder in the project directory
// 2. Load the hardware description and resolve actuator plugins
// 3. Drive the control loop until interrupted, optionally with the
//    HTTP bridge, file watching, and the interactive monitor

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/armature-dev/armature/internal/actuator"
	"github.com/armature-dev/armature/internal/bridge"
	"github.com/armature-dev/armature/internal/config"
	"github.com/armature-dev/armature/internal/hardware"
	"github.com/armature-dev/armature/internal/host"
	"github.com/armature-dev/armature/internal/journal"
	"github.com/armature-dev/armature/internal/logging"
	"github.com/armature-dev/armature/internal/simjoint"
	"github.com/armature-dev/armature/internal/tui"
	"github.com/armature-dev/armature/plugins"
)

const watchDebounce = 500 * time.Millisecond

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	monitor := flag.Bool("monitor", false, "run the interactive joint monitor")
	watch := flag.Bool("watch", false, "reload when the hardware description or plugins change")
	debug := flag.Bool("debug", false, "enable verbose logging")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitArmatureDir(absoluteProject); err != nil {
		die("init .armature: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}

	log, err := logging.New(cfg.LogsDir(), *debug)
	if err != nil {
		die("open log: %v", err)
	}
	defer log.Close()

	jrnl, err := journal.New(cfg.JournalDir())
	if err != nil {
		die("open journal: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan string, 1)
	if *watch {
		go func() {
			paths := []string{cfg.DescriptionPath(), cfg.PluginDir()}
			err := host.Watch(ctx, log, paths, watchDebounce, func(path string) {
				select {
				case reload <- path:
				default:
				}
			})
			if err != nil && ctx.Err() == nil {
				log.Errorw("watch stopped", "error", err)
			}
		}()
	}

	for {
		again, err := runHost(ctx, cfg, log, jrnl, reload, *monitor)
		if err != nil {
			die("%v", err)
		}
		if !again {
			return
		}
		// Reload: re-read config so description or plugin dir changes apply.
		cfg, err = config.NewConfig(absoluteProject)
		if err != nil {
			die("reload config: %v", err)
		}
	}
}

// runHost builds and runs one host instance. It returns again=true when a
// watched file changed and the host should be rebuilt.
func runHost(ctx context.Context, cfg *config.Config, log *logging.Logger, jrnl *journal.Journal, reload <-chan string, monitor bool) (bool, error) {
	h, err := buildHost(cfg, log, jrnl)
	if err != nil {
		return false, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings := bridge.SettingsFromConfig(cfg)
	if settings.Enabled {
		server := bridge.NewServer(settings, h, h, bridge.WithLogger(log))
		if err := server.Start(runCtx); err != nil {
			return false, fmt.Errorf("start bridge: %w", err)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Errorw("bridge shutdown failed", "error", err)
			}
		}()
		fmt.Printf("Bridge listening on http://%s\n", server.BoundAddress())
	}

	done := make(chan error, 1)
	go func() { done <- h.Run(runCtx) }()

	if monitor {
		if err := tui.Run(h, tui.WithJournal(jrnl)); err != nil {
			log.Errorw("monitor exited", "error", err)
		}
		cancel()
		return false, <-done
	}

	fmt.Printf("Host running: %d joint(s), period %s. Ctrl-C to stop.\n", len(h.Joints()), h.Period())
	select {
	case <-ctx.Done():
		cancel()
		return false, <-done
	case path := <-reload:
		fmt.Printf("Change detected in %s, reloading...\n", path)
		jrnl.Info("reload triggered by %s", path)
		cancel()
		if err := <-done; err != nil {
			return false, err
		}
		return true, nil
	case err := <-done:
		return false, err
	}
}

// buildHost loads the hardware description, assembles the actuator registry
// (built-ins plus external definitions), and constructs the host.
func buildHost(cfg *config.Config, log *logging.Logger, jrnl *journal.Journal) (*host.Host, error) {
	desc, err := hardware.LoadDescription(cfg.DescriptionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("hardware description %s not found; create it or set ARMATURE_DESCRIPTION", cfg.DescriptionPath())
		}
		return nil, err
	}

	reg := actuator.NewRegistry()
	if err := simjoint.Register(reg, log); err != nil {
		return nil, err
	}
	count, err := plugins.RegisterDefinitions(reg, cfg.PluginDir(), log)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		log.Infow("external actuators loaded", "count", count, "dir", cfg.PluginDir())
	}

	period, err := cfg.ControlPeriod()
	if err != nil {
		return nil, err
	}
	return host.New(desc, reg, period,
		host.WithLogger(log),
		host.WithJournal(jrnl),
	)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
