package main

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/privacygrade/internal/config"
)

func TestNewBrowseCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBrowseCmd()
	flag := cmd.Flags().Lookup("settle")
	if flag == nil {
		t.Fatal("expected settle flag")
	}
	if flag.Shorthand != "s" {
		t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
	}
	if flag.DefValue != config.DefaultSettleDelay.String() {
		t.Errorf("expected default %q, got %q", config.DefaultSettleDelay, flag.DefValue)
	}
	for _, name := range []string{"chrome", "no-sandbox", "persist-profile", "json", "markdown", "output"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "https URL", input: "https://news.example/today"},
		{name: "http URL", input: "http://news.example"},
		{name: "missing scheme", input: "news.example", wantErr: true},
		{name: "unsupported scheme", input: "ftp://news.example", wantErr: true},
		{name: "internal page", input: "chrome://settings", wantErr: true},
		{name: "missing host", input: "https://", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := validateURL(tc.input); (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAllocatorOptions(t *testing.T) {
	t.Parallel()

	base := len(allocatorOptions(browseOptions{}))
	all := len(allocatorOptions(browseOptions{chromePath: "/usr/bin/chromium", noSandbox: true, persistProfile: true}))
	if all != base+3 {
		t.Errorf("expected 3 extra options, got %d", all-base)
	}
}

func TestRunBrowse_RejectsBadInput(t *testing.T) {
	t.Parallel()

	t.Run("no targets", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newOutputCmd()
		err := runBrowse(context.Background(), cmd, config.NewConfig(), browseOptions{}, discardLogger())
		if !errors.Is(err, errNoTargets) {
			t.Errorf("expected errNoTargets, got %v", err)
		}
	})

	t.Run("invalid URL is rejected before Chrome starts", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Targets = []string{"https://news.example", "news.example"}
		cmd, _ := newOutputCmd()
		if err := runBrowse(context.Background(), cmd, cfg, browseOptions{}, discardLogger()); err == nil {
			t.Error("expected an invalid URL error")
		}
	})
}
