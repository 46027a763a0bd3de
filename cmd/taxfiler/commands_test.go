package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taxfiler/internal/testsupport"
)

const corporateDownload = "法人税及び地方法人税申告書_20240731テスト会社株式会社_20250720130102.pdf"

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.InboxDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if !fileExists(target) {
		t.Fatalf("expected config file at %s", target)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestClassifyCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "classify", corporateDownload, "random.pdf"}, env.configPath)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var results []classifyOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Classification.Category != "CorporateTax" || results[0].SuggestedName != "0001_法人税及び地方法人税申告書_2407.pdf" {
		t.Fatalf("first = %+v", results[0])
	}
	if results[0].CategoryFolder != "0000番台_法人税" {
		t.Fatalf("folder = %q", results[0].CategoryFolder)
	}
	if results[1].Classification.Category != "Unknown" || results[1].SuggestedName != "" {
		t.Fatalf("second = %+v", results[1])
	}
}

func TestClassifyCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"classify", "残高試算表.pdf"}, env.configPath)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "TrialBalance")
	requireContains(t, out, "keyword:trial_balance")
}

func TestClassifyTextRequiresExtractionEnabled(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"classify", "--text", "a.pdf"}, env.configPath); err == nil {
		t.Fatal("expected an error while text extraction is disabled")
	}
}

func TestSuggestCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "suggest", "--category", "MunicipalTax", "--municipality", "蒲郡市", "--period", "2407"}, env.configPath)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	var results []suggestOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].SuggestedName != "2001_蒲郡市_法人市民税_2407.pdf" {
		t.Fatalf("results = %+v", results)
	}

	out, _, err = runCLI(t, []string{"suggest", "納付情報発行結果.pdf"}, env.configPath)
	if err != nil {
		t.Fatalf("suggest file: %v", err)
	}
	requireContains(t, out, "0004_納付情報_XXXX.pdf")

	if _, _, err := runCLI(t, []string{"suggest", "--category", "Bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown category error")
	}
	if _, _, err := runCLI(t, []string{"suggest"}, env.configPath); err == nil {
		t.Fatal("expected error without arguments")
	}
}

func TestFolderCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"folder", "1011_東京都_法人都道府県民税事業税_2407.pdf", "readme.pdf"}, "")
	if err != nil {
		t.Fatalf("folder: %v", err)
	}
	requireContains(t, out, "1000番台_都道府県税")
	requireContains(t, out, "その他")

	out, _, err = runCLI(t, []string{"folder", "--list"}, "")
	if err != nil {
		t.Fatalf("folder --list: %v", err)
	}
	requireContains(t, out, "7000番台_税区分集計表")
}

func TestOrganizeDryRunThenFile(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, corporateDownload)
	dest := filepath.Join(env.cfg.Paths.TargetDir, "0000番台_法人税", "0001_法人税及び地方法人税申告書_2407.pdf")

	out, _, err := runCLI(t, []string{"organize", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("organize --dry-run: %v", err)
	}
	requireContains(t, out, "0001_法人税及び地方法人税申告書_2407.pdf")
	if !fileExists(src) || fileExists(dest) {
		t.Fatal("dry run must not move files")
	}
	if fileExists(env.cfg.Paths.TargetDir) {
		t.Fatal("dry run must not create the target folder")
	}

	out, _, err = runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "1 filed, 0 failed")
	if fileExists(src) || !fileExists(dest) {
		t.Fatalf("expected %s to be filed at %s", src, dest)
	}

	out, _, err = runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("second organize: %v", err)
	}
	requireContains(t, out, "No documents to organize")

	out, _, err = runCLI(t, []string{"--json", "history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var history []struct {
		Total   int `json:"total"`
		Success int `json:"success"`
	}
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Total != 1 || history[0].Success != 1 {
		t.Fatalf("history = %+v", history)
	}

	out, _, err = runCLI(t, []string{"history", "files"}, env.configPath)
	if err != nil {
		t.Fatalf("history files: %v", err)
	}
	requireContains(t, out, "CorporateTax")
}

func TestOrganizeReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	good := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "決算書.pdf")
	bad := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "random.pdf")

	out, _, err := runCLI(t, []string{"organize", good, bad}, env.configPath)
	if err == nil {
		t.Fatal("expected organize to fail when a file is unclassified")
	}
	requireContains(t, out, "Unable to classify: random.pdf")
	requireContains(t, out, "1 filed, 1 failed")
	if !fileExists(bad) {
		t.Fatal("unclassified file must stay in the inbox")
	}
	if !fileExists(filepath.Join(env.cfg.Paths.TargetDir, "5000番台_決算書類", "5001_決算書_XXXX.pdf")) {
		t.Fatal("classified file should still be filed")
	}
}

func TestScanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "b.pdf")
	testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "a.csv")
	testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "notes.txt")
	testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, ".hidden.pdf")

	out, _, err := runCLI(t, []string{"--json", "scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var infos []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "a.csv" || infos[1].Name != "b.pdf" {
		t.Fatalf("infos = %+v", infos)
	}
}

func TestRenameCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutBackup())
	src := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "scan.pdf")

	out, _, err := runCLI(t, []string{"rename", src, "3001_消費税及び地方消費税申告書_2403.pdf"}, env.configPath)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	dest := filepath.Join(env.cfg.Paths.TargetDir, "3000番台_消費税", "3001_消費税及び地方消費税申告書_2403.pdf")
	requireContains(t, out, dest)
	if !fileExists(dest) || fileExists(src) {
		t.Fatal("expected file to be moved")
	}

	if _, _, err := runCLI(t, []string{"rename", src, "x.pdf"}, env.configPath); err == nil {
		t.Fatal("expected rename of a missing source to fail")
	}
}

func TestBackupListAndRestore(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "決算書.pdf")
	if _, _, err := runCLI(t, []string{"organize"}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "backup", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	var entries []struct {
		Name         string `json:"name"`
		OriginalName string `json:"original_name"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].OriginalName != "決算書.pdf" {
		t.Fatalf("entries = %+v", entries)
	}

	out, _, err = runCLI(t, []string{"backup", "restore", entries[0].Name, src}, env.configPath)
	if err != nil {
		t.Fatalf("backup restore: %v", err)
	}
	requireContains(t, out, "Restored")
	if !fileExists(src) {
		t.Fatal("expected restored file")
	}

	out, _, err = runCLI(t, []string{"backup", "prune"}, env.configPath)
	if err != nil {
		t.Fatalf("backup prune: %v", err)
	}
	requireContains(t, out, "Pruned 0 backups")
}

func TestBackupCommandsFollowRenameTarget(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "scan.pdf")
	other := filepath.Join(env.baseDir, "other-archive")

	if _, _, err := runCLI(t, []string{"rename", "--target", other, src, "5001_決算書_2403.pdf"}, env.configPath); err != nil {
		t.Fatalf("rename --target: %v", err)
	}

	out, _, err := runCLI(t, []string{"backup", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	requireContains(t, out, "No backups in")

	out, _, err = runCLI(t, []string{"--json", "backup", "list", "--target", other}, env.configPath)
	if err != nil {
		t.Fatalf("backup list --target: %v", err)
	}
	var entries []struct {
		Name         string `json:"name"`
		OriginalName string `json:"original_name"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].OriginalName != "scan.pdf" {
		t.Fatalf("entries = %+v", entries)
	}

	restored := filepath.Join(env.baseDir, "restored.pdf")
	if _, _, err := runCLI(t, []string{"backup", "--target", other, "restore", entries[0].Name, restored}, env.configPath); err != nil {
		t.Fatalf("backup restore --target: %v", err)
	}
	if !fileExists(restored) {
		t.Fatal("expected restored file")
	}
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Inbox directory")

	missing := setupCLITestEnv(t)
	if err := os.RemoveAll(missing.cfg.Paths.InboxDir); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"doctor"}, missing.configPath); err == nil {
		t.Fatal("expected doctor to fail without an inbox")
	}
}

func TestWatchFilesArrivals(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, _, err := runCLIContext(t, ctx, []string{"watch"}, env.configPath)
		done <- err
	}()

	dest := filepath.Join(env.cfg.Paths.TargetDir, "0000番台_法人税", "0003_受信通知_XXXX.pdf")
	time.Sleep(100 * time.Millisecond)
	testsupport.WriteInbox(t, env.cfg.Paths.InboxDir, "法人税　受信通知.pdf")
	waitFor(t, 5*time.Second, func() bool { return fileExists(dest) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNotifyTestCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"notify", "test"}, env.configPath); err == nil {
		t.Fatal("expected error without a topic")
	}

	hits := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- r.Header.Get("Title")
	}))
	defer srv.Close()
	env.cfg.Notifications.NtfyTopic = srv.URL
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"notify", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if title := <-hits; title != "taxfiler - Test" {
		t.Fatalf("title = %q", title)
	}
}

func TestLogsCommandFiltersByEvent(t *testing.T) {
	env := setupCLITestEnv(t)
	content := `{"ts":"2025-07-20T04:01:02Z","level":"info","msg":"file filed","event_type":"file_filed","batch_id":"aaaa1111"}` + "\n" +
		`{"ts":"2025-07-20T04:01:03Z","level":"warn","msg":"file not filed","event_type":"filing_failed","batch_id":"aaaa1111"}` + "\n"
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.cfg.LogPath(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "--event", "filing_failed"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "file not filed")
	if strings.Contains(out, "file filed\n") || strings.Contains(out, "INFO") {
		t.Fatalf("unexpected entries in %q", out)
	}
}
