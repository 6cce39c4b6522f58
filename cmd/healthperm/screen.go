package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sambigeara/healthperm/pkg/catalog"
	"github.com/sambigeara/healthperm/pkg/jitter"
	"github.com/sambigeara/healthperm/pkg/loop"
	"github.com/sambigeara/healthperm/pkg/session"
)

const refreshJitter = 0.1

func newScreenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Open the permission screen and change grants interactively",
		Args:  cobra.NoArgs,
		Run:   runScreen,
	}
	cmd.Flags().Duration("refresh", 0, "Re-read the catalog this often (overrides config, 0 keeps it)")
	return cmd
}

func runScreen(cmd *cobra.Command, _ []string) {
	env, err := newEnv(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	defer env.close(cmd.ErrOrStderr())
	if v, _ := cmd.Flags().GetDuration("refresh"); v > 0 {
		env.cfg.RefreshInterval = v
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := catalog.FileSource{Path: env.cfg.Catalog}
	if err := interact(ctx, env, src, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
}

// interact runs the control loop until in is exhausted, the user quits or
// ctx is cancelled. Every store mutation and every write to out happens on
// the loop goroutine.
func interact(ctx context.Context, env *env, src catalog.Source, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := loop.New()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Run(gctx) })

	report := func(app string, err error) {
		if err == nil {
			return
		}
		_ = l.Post(func() {
			fmt.Fprintf(out, "could not save grants for %s: %v\n", app, err)
		})
	}
	host := session.NewHost(gctx, env.sessionConfig(report))

	reload := func() {
		catalog.Deliver(gctx, src, env.cfg.FetchTimeout, l, func(c *catalog.Catalog, err error) {
			if err != nil {
				fmt.Fprintf(out, "could not load catalog: %v\n", err)
				return
			}
			sess, err := host.Apply(c)
			if err != nil {
				fmt.Fprintln(out, err)
			}
			if sess != nil {
				sess.Screen().Dirty()
				sess.Screen().Render(out)
			}
		})
	}

	manual := reload
	if env.cfg.RefreshInterval > 0 {
		ticker := jitter.NewTicker(gctx, env.cfg.RefreshInterval, refreshJitter)
		defer ticker.Stop()
		g.Go(func() error {
			for range ticker.C {
				reload()
			}
			return nil
		})
		manual = func() {
			ticker.Bump()
			reload()
		}
	}
	r := &repl{out: out, host: host, reload: manual}

	_ = l.Post(func() { fmt.Fprint(out, helpText) })
	reload()

	// The reader stays outside the group: a blocked Read must not hold up
	// shutdown.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-l.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				var quit bool
				if err := l.Do(gctx, func() { quit = r.exec(line) }); err != nil {
					return nil
				}
				if quit {
					return nil
				}
			}
		}
	})

	err := g.Wait()
	host.Close()
	return err
}
