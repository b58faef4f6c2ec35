package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghiac/ephdash/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch URL",
	Short: "Follow an env page from the terminal",
	Long: `Fetch a dashboard page, print the bottom of its log pane and then each
change of the expiration countdown until the env expires or you press Ctrl-C.

Selector flags pick a different repo, branch or path first, the same way
changing the dropdowns in a browser does.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchFlags struct {
	repo     string
	branch   string
	path     string
	tail     int
	interval time.Duration
	cookies  []string
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.repo, "repo", "", "select this repo before watching")
	watchCmd.Flags().StringVar(&watchFlags.branch, "branch", "", "select this branch before watching")
	watchCmd.Flags().StringVar(&watchFlags.path, "path", "", "select this Tiltfile path before watching")
	watchCmd.Flags().IntVarP(&watchFlags.tail, "tail", "n", watch.DefaultTail, "number of log lines to print")
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", time.Second, "countdown refresh period")
	watchCmd.Flags().StringArrayVar(&watchFlags.cookies, "cookie", nil, "cookie to send as name=value (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cookies, err := parseCookies(watchFlags.cookies)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Options{
		URL:      args[0],
		Repo:     watchFlags.repo,
		Branch:   watchFlags.branch,
		Path:     watchFlags.path,
		Tail:     watchFlags.tail,
		Interval: watchFlags.interval,
		Cookies:  cookies,
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = w.Run(ctx)
	return err
}

func parseCookies(raw []string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	for _, c := range raw {
		name, value, ok := strings.Cut(c, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid cookie %q, want name=value", c)
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies, nil
}
