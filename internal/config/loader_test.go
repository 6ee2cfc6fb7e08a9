package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/scorecard/internal/config"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"SCORECARD_CONFIG",
	"SCORECARD_ADDR",
	"SCORECARD_LOG_LEVEL",
	"SCORECARD_LOG_FORMAT",
	"SCORECARD_SNAPSHOT_DIR",
	"SCORECARD_SNAPSHOT_QUEUE_SIZE",
	"SCORECARD_SNAPSHOT_WORKERS",
	"SCORECARD_IDEMPOTENCY_SIZE",
	"SCORECARD_DEFAULT_ORDER_MODE",
	"SCORECARD_WS_SEND_BUFFER",
	"SCORECARD_SHUTDOWN_TIMEOUT",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			convey.So(cfg.SnapshotQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.SnapshotWorkers, convey.ShouldEqual, 2)
			convey.So(cfg.IdempotencySize, convey.ShouldEqual, 10_000)
			convey.So(cfg.OrderMode(), convey.ShouldEqual, round.OrderLastFirst)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCORECARD_ADDR", ":8080")
			_ = os.Setenv("SCORECARD_SNAPSHOT_WORKERS", "4")
			_ = os.Setenv("SCORECARD_DEFAULT_ORDER_MODE", "best-score")
			_ = os.Setenv("SCORECARD_SHUTDOWN_TIMEOUT", "3s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SnapshotWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.OrderMode(), convey.ShouldEqual, round.OrderBestScore)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.SnapshotQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeTempFile(t, "scorecard.yaml", `
addr: ":9090"
log_format: text
snapshot_dir: /var/lib/scorecard
idempotency_size: 500
`)
			_ = os.Setenv("SCORECARD_CONFIG", path)
			_ = os.Setenv("SCORECARD_ADDR", ":8081")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.SnapshotDir, convey.ShouldEqual, "/var/lib/scorecard")
				convey.So(cfg.IdempotencySize, convey.ShouldEqual, 500)
				convey.So(cfg.WSSendBuffer, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When a dotenv file is given", func() {
			path := writeTempFile(t, "test.env", "SCORECARD_ADDR=:7070\nSCORECARD_WS_SEND_BUFFER=32\n")
			_ = os.Setenv("SCORECARD_WS_SEND_BUFFER", "8")

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it fills unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WSSendBuffer, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When a given dotenv file is missing", func() {
			cfg, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.env"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("SCORECARD_CONFIG", writeTempFile(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SCORECARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCORECARD_SNAPSHOT_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		cases := []struct{ key, value string }{
			{"SCORECARD_ADDR", ""},
			{"SCORECARD_LOG_LEVEL", "chatty"},
			{"SCORECARD_LOG_FORMAT", "xml"},
			{"SCORECARD_SNAPSHOT_WORKERS", "0"},
			{"SCORECARD_IDEMPOTENCY_SIZE", "-1"},
			{"SCORECARD_DEFAULT_ORDER_MODE", "random"},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.key+" is "+tc.value, func() {
				_ = os.Setenv(tc.key, tc.value)

				cfg, err := config.Load(ctx)

				convey.Convey("Then it should return a validation error", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}
	})
}
