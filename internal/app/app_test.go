package app

import (
	"context"
	"strings"
	"testing"

	"bbs/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.MaxMessages = 20
	cfg.Storage.ShardSize = 10
	return cfg
}

func runScript(t *testing.T, cfg *config.Config, fresh bool, script string) string {
	t.Helper()
	var out strings.Builder
	a := New(cfg, fresh, strings.NewReader(script), &out)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestInteractiveSession(t *testing.T) {
	cfg := testConfig(t)
	script := strings.Join([]string{
		"kathi",
		`A "post homework?" "is the handout ready?"`,
		"S",
		"V 1",
		"D 1",
		"S",
		"X",
	}, "\n") + "\n"

	out := runScript(t, cfg, true, script)

	for _, want := range []string{
		"What is your username?",
		"posted message 1",
		"Poster: kathi",
		"Subject: post homework?",
		"Text: is the handout ready?",
		"deleted message 1",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSoftDisconnectHandsOver(t *testing.T) {
	cfg := testConfig(t)
	script := strings.Join([]string{
		"kathi",
		`A "post homework?" "is the handout ready?"`,
		"softX",
		"nick",
		"S homework",
		`A "handout followup" "yep, ready to go"`,
		"X",
	}, "\n") + "\n"

	out := runScript(t, cfg, true, script)

	if !strings.Contains(out, "Poster: kathi") {
		t.Fatalf("summary after handover missing kathi's post:\n%s", out)
	}
	if !strings.Contains(out, "posted message 2") {
		t.Fatalf("nick's post did not take the next id:\n%s", out)
	}
}

func TestInvalidCommandsAreReportedNotFatal(t *testing.T) {
	cfg := testConfig(t)
	script := strings.Join([]string{
		"kathi",
		"Z what",
		"A onlysubject",
		"V notanumber",
		"D 7",
		`A "" "body"`,
		"X",
	}, "\n") + "\n"

	out := runScript(t, cfg, true, script)

	for _, want := range []string{
		"Unknown command: Z",
		"usage: A <subj> <msg>",
		"not a message number: notanumber",
		"delete failed",
		"post failed",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWarmRestartKeepsMessages(t *testing.T) {
	cfg := testConfig(t)
	first := strings.Join([]string{
		"kathi",
		`A "durable" "kept across restarts"`,
		"X",
	}, "\n") + "\n"
	runScript(t, cfg, true, first)

	second := strings.Join([]string{
		"nick",
		"V 1",
		"X",
	}, "\n") + "\n"
	out := runScript(t, cfg, false, second)

	if !strings.Contains(out, "Text: kept across restarts") {
		t.Fatalf("message lost across restart:\n%s", out)
	}
}

func TestEOFDisconnectsCleanly(t *testing.T) {
	cfg := testConfig(t)
	out := runScript(t, cfg, true, "kathi\n")
	if !strings.Contains(out, "Please select an option:") {
		t.Fatalf("expected menu before EOF:\n%s", out)
	}
}
