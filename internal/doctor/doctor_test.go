package doctor

import (
	"errors"
	"strings"
	"testing"
)

func ok(s string) VersionFunc {
	return func() (string, error) { return s, nil }
}

func missing(msg string) VersionFunc {
	return func() (string, error) { return "", errors.New(msg) }
}

func TestRun_AllChecksPass(t *testing.T) {
	var out strings.Builder

	res := Run(Config{
		GGWavePath:    ok("/usr/local/bin/ggwave-to-file"),
		FFmpegVersion: ok("ffmpeg version 6.1"),
	}, &out)

	if res.Failed() {
		t.Fatalf("unexpected failures: %v", res.Failures())
	}
	if !strings.Contains(out.String(), PassMark+" ggwave-to-file binary: /usr/local/bin/ggwave-to-file") {
		t.Errorf("missing binary pass line: %s", out.String())
	}
	if !strings.Contains(out.String(), PassMark+" ffmpeg: ffmpeg version 6.1") {
		t.Errorf("missing ffmpeg pass line: %s", out.String())
	}
}

func TestRun_MissingBinaryFails(t *testing.T) {
	var out strings.Builder

	res := Run(Config{
		GGWavePath:    missing("not in search path"),
		FFmpegVersion: ok("ffmpeg version 6.1"),
	}, &out)

	if !res.Failed() {
		t.Fatal("expected failure for missing binary")
	}
	if len(res.Failures()) != 1 {
		t.Errorf("failures = %v", res.Failures())
	}
	if !strings.Contains(out.String(), FailMark+" ggwave-to-file binary") {
		t.Errorf("missing fail line: %s", out.String())
	}
}

func TestRun_SkipGGWave(t *testing.T) {
	var out strings.Builder

	res := Run(Config{
		SkipGGWave:    true,
		FFmpegVersion: ok("ffmpeg version 6.1"),
	}, &out)

	if res.Failed() {
		t.Fatalf("unexpected failures: %v", res.Failures())
	}
	if !strings.Contains(out.String(), "skipped (library strategy)") {
		t.Errorf("missing skip line: %s", out.String())
	}
}

func TestRun_OptionalFFmpegIsNotAFailure(t *testing.T) {
	var out strings.Builder

	res := Run(Config{
		GGWavePath:     ok("/usr/local/bin/ggwave-to-file"),
		FFmpegVersion:  missing("no ffmpeg"),
		FFmpegOptional: true,
	}, &out)

	if res.Failed() {
		t.Fatalf("optional ffmpeg must not fail the checks: %v", res.Failures())
	}
	if !strings.Contains(out.String(), "video output unavailable") {
		t.Errorf("missing downgrade note: %s", out.String())
	}
}

func TestRun_RequiredFFmpegFails(t *testing.T) {
	var out strings.Builder

	res := Run(Config{
		GGWavePath:    ok("/usr/local/bin/ggwave-to-file"),
		FFmpegVersion: missing("no ffmpeg"),
	}, &out)

	if !res.Failed() {
		t.Fatal("expected failure for missing required ffmpeg")
	}
}

func TestResult_AddFailure(t *testing.T) {
	var res Result
	res.AddFailure("external problem")

	if !res.Failed() {
		t.Error("AddFailure should mark the result failed")
	}
	if got := res.Failures(); len(got) != 1 || got[0] != "external problem" {
		t.Errorf("failures = %v", got)
	}
}
