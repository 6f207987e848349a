package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"musicclean/internal/audio"
	"musicclean/internal/config"
	"musicclean/internal/edl"
	"musicclean/internal/fileutil"
	"musicclean/internal/logging"
	"musicclean/internal/notifications"
	"musicclean/internal/pipeline"
	"musicclean/internal/preflight"
	"musicclean/internal/services/demucs"
	"musicclean/internal/services/ffmpeg"
	"musicclean/internal/services/whisperx"
	"musicclean/internal/testsupport"
	"musicclean/internal/words"
)

const testRate = 8000

type stubSeparator struct {
	mu    sync.Mutex
	calls int
}

func (s *stubSeparator) Separate(_ context.Context, input, outputDir string) (demucs.Stems, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := filepath.Join(outputDir, "htdemucs", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return demucs.Stems{}, err
	}
	tone := testsupport.ToneBuffer(testRate, 2)
	silence := audio.Buffer{Data: make([]float32, len(tone.Data)), SampleRate: testRate, Channels: 2, BitDepth: 16}
	stems := demucs.Stems{
		Dir:          dir,
		Vocals:       filepath.Join(dir, demucs.VocalsFile),
		Instrumental: filepath.Join(dir, demucs.InstrumentalFile),
	}
	if err := audio.WriteWAV(stems.Vocals, tone); err != nil {
		return demucs.Stems{}, err
	}
	if err := audio.WriteWAV(stems.Instrumental, silence); err != nil {
		return demucs.Stems{}, err
	}
	return stems, nil
}

type stubTranscriber struct {
	words []words.Token
}

func (s *stubTranscriber) Transcribe(context.Context, string, string, string) (whisperx.Transcript, error) {
	return whisperx.Transcript{Words: s.words, Language: "en"}, nil
}

type copyEncoder struct{}

func (copyEncoder) Encode(_ context.Context, req ffmpeg.Request) error {
	return fileutil.CopyFile(req.Mix, req.Output)
}

type recordingNotifier struct {
	mu      sync.Mutex
	batches []notifications.BatchSummary
	errors  []string
}

func (r *recordingNotifier) NotifyBatchCompleted(_ context.Context, summary notifications.BatchSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, summary)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, err error, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, label+": "+err.Error())
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	musicDir   string
	separator  *stubSeparator
	heard      []words.Token
	notifier   *recordingNotifier
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv(config.ProfanityListEnv, "")
	t.Setenv(config.NtfyTopicEnv, "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	musicDir := filepath.Join(base, "music")
	if err := os.MkdirAll(musicDir, 0o755); err != nil {
		t.Fatalf("mkdir music: %v", err)
	}
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		musicDir:   musicDir,
		separator:  &stubSeparator{},
		notifier:   &recordingNotifier{},
		heard: []words.Token{
			words.NewHypothesis("what", 0.1, 0.3, 0.9),
			words.NewHypothesis("the", 0.3, 0.4, 0.9),
			words.NewHypothesis("hell,", 0.5, 0.6, 0.8),
			words.NewHypothesis("man", 1.2, 1.4, 0.9),
		},
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwork_dir = %q\nlog_dir = %q\nhistory_db = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Paths.HistoryDB,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) song(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(env.musicDir, name)
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write song: %v", err)
	}
	return path
}

func (env *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.tools = func(*config.Config) (pipeline.Separator, pipeline.Transcriber, pipeline.Encoder) {
		return env.separator, &stubTranscriber{words: env.heard}, copyEncoder{}
	}
	ctx.preflight = func(context.Context, *config.Config) []preflight.Result { return nil }
	ctx.notifier = func(*config.Config) notifications.Service { return env.notifier }

	cmd := buildRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCleanWritesMutedCopy(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")

	out, _, err := env.run(t, "", "clean", "--yes", song)
	if err != nil {
		t.Fatalf("clean: %v\n%s", err, out)
	}
	cleaned := filepath.Join(env.musicDir, "Song (clean).mp3")
	if _, err := os.Stat(cleaned); err != nil {
		t.Fatalf("expected cleaned file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.musicDir, "Song (clean).lrc")); err != nil {
		t.Fatalf("expected lrc sidecar: %v", err)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "Song.mp3") {
		t.Fatalf("expected summary row, got:\n%s", out)
	}

	out, _, err = env.run(t, "", "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "clean") || !strings.Contains(out, "Song.mp3") {
		t.Fatalf("expected run in history list, got:\n%s", out)
	}

	out, _, err = env.run(t, "", "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	var runs []runJSON
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history json: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].MatchCount != 1 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, _, err = env.run(t, "", "history", "show", runs[0].ID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, "hell,") || !strings.Contains(out, cleaned) {
		t.Fatalf("expected match and output in show, got:\n%s", out)
	}
}

func TestCleanPreviewWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")

	out, _, err := env.run(t, "", "clean", "-p", "-j", "4", song)
	if err != nil {
		t.Fatalf("clean -p: %v", err)
	}
	if !strings.Contains(out, "== Song.mp3 ==") || !strings.Contains(out, "hell,") {
		t.Fatalf("expected preview table, got:\n%s", out)
	}
	if !strings.Contains(out, "preview") {
		t.Fatalf("expected preview status, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.musicDir, "Song (clean).mp3")); !os.IsNotExist(err) {
		t.Fatalf("preview must not write output, stat err %v", err)
	}
}

func TestCleanDeclinedPrompt(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")

	out, _, err := env.run(t, "n\n", "clean", song)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "Mute these words? [y/N]") || !strings.Contains(out, "cancelled") {
		t.Fatalf("expected prompt and cancelled status, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.musicDir, "Song (clean).mp3")); !os.IsNotExist(err) {
		t.Fatalf("declined run must not write output, stat err %v", err)
	}
}

func TestCleanConfirmedPromptWithOutputDir(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")
	outDir := filepath.Join(testsupport.BaseDir(env.cfg), "clean")

	if _, _, err := env.run(t, "y\n", "clean", "-o", outDir, "--no-lrc", song); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Song (clean).mp3")); err != nil {
		t.Fatalf("expected output in output dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Song (clean).lrc")); !os.IsNotExist(err) {
		t.Fatalf("--no-lrc must skip the sidecar, stat err %v", err)
	}
}

func TestCleanBatchContinuesPastFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	good := env.song(t, "Good.flac")
	missing := filepath.Join(env.musicDir, "Missing.flac")

	out, _, err := env.run(t, "", "clean", "-y", "-j", "2", missing, good)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Fatalf("expected batch failure summary, got %v", err)
	}
	if !strings.Contains(out, "failed") || !strings.Contains(out, "completed") {
		t.Fatalf("expected both rows in summary, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.musicDir, "Good (clean).flac")); err != nil {
		t.Fatalf("expected good file cleaned: %v", err)
	}
	if len(env.notifier.batches) != 1 || env.notifier.batches[0].Failed != 1 || len(env.notifier.errors) != 0 {
		t.Fatalf("expected partial batch notification, got %+v %v", env.notifier.batches, env.notifier.errors)
	}

	if _, _, err := env.run(t, "", "clean", "-y", missing); err == nil {
		t.Fatal("expected missing input to fail")
	}
	if len(env.notifier.errors) != 1 || !strings.HasPrefix(env.notifier.errors[0], "clean: ") {
		t.Fatalf("expected error notification, got %v", env.notifier.errors)
	}
}

func TestCleanRejectsLyricsForBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	a := env.song(t, "A.mp3")
	b := env.song(t, "B.mp3")
	lyricsPath := filepath.Join(env.musicDir, "lyrics.txt")
	if err := os.WriteFile(lyricsPath, []byte("what the hell man"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := env.run(t, "", "clean", "-y", "--lyrics", lyricsPath, a, b)
	if err == nil || !strings.Contains(err.Error(), "single input") {
		t.Fatalf("expected lyrics batch rejection, got %v", err)
	}
}

func TestCleanRejectsInvalidPad(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")
	if _, _, err := env.run(t, "", "clean", "-y", "--pad-ms=-5", song); err == nil {
		t.Fatal("expected validation error for negative padding")
	}
}

func TestPreflightFailureStopsBatch(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")

	ctx := newCommandContext()
	ctx.tools = func(*config.Config) (pipeline.Separator, pipeline.Transcriber, pipeline.Encoder) {
		return env.separator, &stubTranscriber{}, copyEncoder{}
	}
	ctx.preflight = func(context.Context, *config.Config) []preflight.Result {
		return []preflight.Result{{Name: "FFmpeg", Detail: `binary "ffmpeg" not found`}}
	}
	cmd := buildRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", env.configPath, "clean", "-y", song})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "preflight failed: FFmpeg") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if !strings.Contains(stderr.String(), "[ERROR]") {
		t.Fatalf("expected error line on stderr, got %q", stderr.String())
	}
	if env.separator.calls != 0 {
		t.Fatal("separator must not run after failed preflight")
	}
}

func TestDetectJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")

	out, _, err := env.run(t, "", "detect", "--json", "--all", song)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var payload []detectJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(payload) != 1 {
		t.Fatalf("expected one entry, got %d", len(payload))
	}
	got := payload[0]
	if got.Status != "preview" || len(got.Matches) != 1 || got.Matches[0].Word != "hell," {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.Matches[0].Start == nil || *got.Matches[0].Start != 0.5 {
		t.Fatalf("expected match timing, got %+v", got.Matches[0])
	}
	if len(got.Intervals) != 1 || len(got.Words) != 4 {
		t.Fatalf("expected interval and full word list, got %+v", got)
	}
}

func TestDetectWithLyricsTable(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")
	lyricsPath := filepath.Join(env.musicDir, "Song.txt")
	if err := os.WriteFile(lyricsPath, []byte("[Verse]\nWhat the hell, man\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "", "detect", "--lyrics", lyricsPath, song)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !strings.Contains(out, "aligned") {
		t.Fatalf("expected lyrics aligned, got:\n%s", out)
	}
}

func TestEDLGenerateAndApply(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.wav")

	if _, _, err := env.run(t, "", "edl", "generate", song); err != nil {
		t.Fatalf("edl generate: %v", err)
	}
	list, err := edl.Load(edl.DefaultPath(song))
	if err != nil {
		t.Fatalf("load edl: %v", err)
	}
	if len(list.Edits) != 1 || list.StemsDir == "" {
		t.Fatalf("unexpected edl %+v", list)
	}

	out, _, err := env.run(t, "", "edl", "apply", "--overwrite", song)
	if err != nil {
		t.Fatalf("edl apply: %v\n%s", err, out)
	}
	if env.separator.calls != 1 {
		t.Fatalf("expected saved stems reused, separator ran %d times", env.separator.calls)
	}
	buf := testsupport.ReadWAV(t, song)
	if buf.SampleRate != testRate {
		t.Fatalf("expected input overwritten with muted mix, got rate %d", buf.SampleRate)
	}
}

func TestWordsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	listPath := filepath.Join(env.musicDir, "words.txt")
	if err := os.WriteFile(listPath, []byte("# mine\nheck\nDarn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "", "words", "list", "-l", listPath)
	if err != nil {
		t.Fatalf("words list: %v", err)
	}
	if out != "darn\nheck\n" {
		t.Fatalf("unexpected list %q", out)
	}

	out, _, err = env.run(t, "", "words", "check", "-l", listPath, "HECK!", "hello")
	if err != nil {
		t.Fatalf("words check: %v", err)
	}
	lines := strings.Split(out, "\n")
	var heck, hello string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "HECK!"):
			heck = line
		case strings.Contains(line, "hello"):
			hello = line
		}
	}
	if !strings.Contains(heck, "muted") || !strings.Contains(hello, "clean") {
		t.Fatalf("unexpected check output:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := env.run(t, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"== Configuration ==", env.configPath, "built-in list", "== Dependencies ==", "[ERROR]", "Missing dependencies"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}
}

func TestCleanSendsBatchNotification(t *testing.T) {
	env := setupCLITestEnv(t)
	song := env.song(t, "Song.mp3")
	other := env.song(t, "Other.mp3")

	if _, _, err := env.run(t, "", "clean", "--yes", song, other); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if len(env.notifier.batches) != 1 {
		t.Fatalf("expected one notification, got %d", len(env.notifier.batches))
	}
	got := env.notifier.batches[0]
	if got.Command != "clean" || got.Processed != 2 || got.Cleaned != 2 || got.Failed != 0 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.Muted <= 0 {
		t.Fatalf("expected muted duration, got %v", got.Muted)
	}

	if _, _, err := env.run(t, "", "clean", "--preview", song); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(env.notifier.batches) != 1 {
		t.Fatal("preview must not notify")
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "No log entries") {
		t.Fatalf("expected empty notice, got:\n%s", out)
	}

	content := strings.Join([]string{
		"2026-01-02 15:04:05 INFO [pipeline] Song.mp3 · run 0123abcd (transcribe) – transcribed",
		"    - words: 4",
		"2026-01-02 15:04:06 ERROR [pipeline] Other.mp3 · run 9999ffff – encode failed",
		"",
	}, "\n")
	path := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err = env.run(t, "", "logs", "--run", "0123abcd")
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	if !strings.Contains(out, "transcribed") || !strings.Contains(out, "words: 4") || strings.Contains(out, "encode failed") {
		t.Fatalf("unexpected filtered output:\n%s", out)
	}

	out, _, err = env.run(t, "", "logs", "-n", "1")
	if err != nil {
		t.Fatalf("logs -n: %v", err)
	}
	if strings.TrimSpace(out) != "2026-01-02 15:04:06 ERROR [pipeline] Other.mp3 · run 9999ffff – encode failed" {
		t.Fatalf("unexpected tail:\n%s", out)
	}
}

func TestCleanRejectsOutputCollisions(t *testing.T) {
	env := setupCLITestEnv(t)
	var inputs []string
	for _, dir := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(env.musicDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		inputs = append(inputs, env.song(t, filepath.Join(dir, "x.mp3")))
	}
	outDir := filepath.Join(env.musicDir, "out")

	args := append([]string{"clean", "-y", "-j", "2", "-o", outDir}, inputs...)
	_, _, err := env.run(t, "", args...)
	if err == nil || !strings.Contains(err.Error(), "would both be written to") {
		t.Fatalf("expected collision error, got %v", err)
	}
	if env.separator.calls != 0 {
		t.Fatalf("no file should be processed, separator ran %d times", env.separator.calls)
	}
	if _, err := os.Stat(filepath.Join(outDir, "x (clean).mp3")); !os.IsNotExist(err) {
		t.Fatalf("expected no output, got %v", err)
	}

	if _, _, err := env.run(t, "", "clean", "-y", inputs[0], inputs[1]); err != nil {
		t.Fatalf("outputs next to their inputs do not collide: %v", err)
	}
}
