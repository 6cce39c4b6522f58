package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sambigeara/healthperm/pkg/catalog"
	"github.com/sambigeara/healthperm/pkg/grantfile"
	"github.com/sambigeara/healthperm/pkg/session"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the catalog's app is allowed to read and write",
		Args:  cobra.NoArgs,
		Run:   runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) {
	env, err := newEnv(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	defer env.close(cmd.ErrOrStderr())

	sess, err := openSession(cmd.Context(), env, catalog.FileSource{Path: env.cfg.Catalog}, nil)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	defer sess.Close()

	sess.Screen().Render(cmd.OutOrStdout())
}

func newGrantCmd(name string, grant bool) *cobra.Command {
	short := "Allow the app to use the named health permissions"
	if !grant {
		short = "Stop the app using the named health permissions"
	}
	cmd := &cobra.Command{
		Use:   name + " [permission...]",
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			all, _ := cmd.Flags().GetBool("all")
			if all == (len(args) > 0) {
				fmt.Fprintln(cmd.ErrOrStderr(), "name one or more permissions, or pass --all")
				return
			}

			env, err := newEnv(cmd)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
			defer env.close(cmd.ErrOrStderr())

			src := catalog.FileSource{Path: env.cfg.Catalog}
			if err := applyGrants(cmd, env, src, args, all, grant); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		},
	}
	cmd.Flags().Bool("all", false, "Apply to every permission the app requests")
	return cmd
}

// applyGrants presses the named switches (or allow all) on a fresh session
// and waits for the result to be committed.
func applyGrants(cmd *cobra.Command, env *env, src catalog.Source, names []string, all, grant bool) error {
	var (
		mu        sync.Mutex
		commitErr error
	)
	report := func(_ string, err error) {
		mu.Lock()
		defer mu.Unlock()
		commitErr = err
	}

	sess, err := openSession(cmd.Context(), env, src, report)
	if err != nil {
		return err
	}
	scr := sess.Screen()

	var pressErr error
	if all {
		if !scr.PressAll(grant) {
			pressErr = fmt.Errorf("%s has not requested any health permissions", sess.App().Title())
		}
	} else {
		for _, n := range names {
			pressErr = errors.Join(pressErr, scr.Press(n, grant))
		}
	}
	sess.Close()

	scr.Render(cmd.OutOrStdout())

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(pressErr, commitErr)
}

// openSession fetches the catalog synchronously and loads it into a new
// session. The calling goroutine acts as the control goroutine.
func openSession(ctx context.Context, env *env, src catalog.Source, report grantfile.Reporter) (*session.Session, error) {
	fetchCtx := ctx
	if env.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, env.cfg.FetchTimeout)
		defer cancel()
	}

	c, err := src.Fetch(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	sess := session.Start(ctx, c.App, env.sessionConfig(report))
	if err := sess.Load(ctx, c); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}
